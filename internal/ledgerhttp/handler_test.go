package ledgerhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/inventra/inventra/internal/ledger"
	"github.com/inventra/inventra/internal/report"
	"github.com/inventra/inventra/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *ledger.Engine) {
	t.Helper()
	engine, err := ledger.New(context.Background(), ledger.Config{Gateway: store.NewMemory()})
	require.NoError(t, err)

	reports := report.NewService(engine, nil, nil)
	handler := NewHandler(nil, engine, reports)

	r := chi.NewRouter()
	r.Route("/api/v1", handler.MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, engine
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func getURL(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func createProductHTTP(t *testing.T, srv *httptest.Server, sku string, reorderPoint int64) ledger.Product {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Widget","sku":%q,"category":"Hardware","uom":"pcs","reorder_point":%d,"actor":"alice"}`, sku, reorderPoint)
	resp := postJSON(t, srv.URL+"/api/v1/products", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var product ledger.Product
	decodeBody(t, resp, &product)
	return product
}

func TestCreateProductEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	product := createProductHTTP(t, srv, "W-1", 10)
	require.NotEmpty(t, product.ID)
	require.Equal(t, "W-1", product.SKU)

	resp := getURL(t, srv.URL+"/api/v1/products")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var products []ledger.Product
	decodeBody(t, resp, &products)
	require.Len(t, products, 1)
}

func TestCreateProductRejectsBadPayloads(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/products", `{"name":"Widget"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/v1/products", `not json`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDuplicateSKUConflicts(t *testing.T) {
	srv, _ := newTestServer(t)
	createProductHTTP(t, srv, "W-1", 0)

	resp := postJSON(t, srv.URL+"/api/v1/products",
		`{"name":"Widget Clone","sku":"w-1","category":"Hardware","uom":"pcs","actor":"alice"}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdateStockEndpoint(t *testing.T) {
	srv, engine := newTestServer(t)
	product := createProductHTTP(t, srv, "W-1", 0)
	loc := engine.Snapshot().Locations[0]

	body := fmt.Sprintf(`{"product_id":%q,"location_id":%q,"delta":5,"actor":"alice"}`, product.ID, loc.ID)
	resp := postJSON(t, srv.URL+"/api/v1/stock/update", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out updateStockResponse
	decodeBody(t, resp, &out)
	require.EqualValues(t, 5, out.OnHand)

	// Driving the quantity negative is a conflict, not a server error.
	body = fmt.Sprintf(`{"product_id":%q,"location_id":%q,"delta":-6,"actor":"alice"}`, product.ID, loc.ID)
	resp = postJSON(t, srv.URL+"/api/v1/stock/update", body)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestOrderEndpointInsufficientStock(t *testing.T) {
	srv, engine := newTestServer(t)
	product := createProductHTTP(t, srv, "W-1", 0)
	loc := engine.Snapshot().Locations[0]

	body := fmt.Sprintf(`{"destination":"ACME","source_id":%q,"lines":[{"product_id":%q,"quantity":3}],"actor":"bob"}`, loc.ID, product.ID)
	resp := postJSON(t, srv.URL+"/api/v1/orders", body)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var out errorResponse
	decodeBody(t, resp, &out)
	require.Contains(t, out.Error, "insufficient stock")
}

func TestAdjustmentEndpointForbidsNonAdminIncrease(t *testing.T) {
	srv, engine := newTestServer(t)
	product := createProductHTTP(t, srv, "W-1", 0)
	loc := engine.Snapshot().Locations[0]

	body := fmt.Sprintf(`{"product_id":%q,"location_id":%q,"delta":5,"reason":"found","actor":"eve","role":"sales_associate"}`, product.ID, loc.ID)
	resp := postJSON(t, srv.URL+"/api/v1/adjustments", body)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	body = fmt.Sprintf(`{"product_id":%q,"location_id":%q,"delta":5,"reason":"found","actor":"frank","role":"admin"}`, product.ID, loc.ID)
	resp = postJSON(t, srv.URL+"/api/v1/adjustments", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var adj ledger.Adjustment
	decodeBody(t, resp, &adj)
	require.Equal(t, "frank", adj.ApprovedBy)

	// Unknown roles never reach the engine.
	body = fmt.Sprintf(`{"product_id":%q,"location_id":%q,"delta":-1,"reason":"shrink","actor":"eve","role":"janitor"}`, product.ID, loc.ID)
	resp = postJSON(t, srv.URL+"/api/v1/adjustments", body)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAlertLifecycleOverHTTP(t *testing.T) {
	srv, engine := newTestServer(t)
	product := createProductHTTP(t, srv, "W-1", 10)
	loc := engine.Snapshot().Locations[0]

	body := fmt.Sprintf(`{"po_number":"PO-7","product_id":%q,"location_id":%q,"quantity":20,"actor":"carol"}`, product.ID, loc.ID)
	resp := postJSON(t, srv.URL+"/api/v1/receipts", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body = fmt.Sprintf(`{"destination":"ACME","source_id":%q,"lines":[{"product_id":%q,"quantity":18}],"actor":"bob"}`, loc.ID, product.ID)
	resp = postJSON(t, srv.URL+"/api/v1/orders", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = getURL(t, srv.URL+"/api/v1/alerts")
	var alerts []ledger.Alert
	decodeBody(t, resp, &alerts)
	require.Len(t, alerts, 1)
	require.EqualValues(t, 2, alerts[0].Quantity)

	resp = postJSON(t, srv.URL+"/api/v1/alerts/"+alerts[0].ID+"/ack", `{"actor":"grace"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var alert ledger.Alert
	decodeBody(t, resp, &alert)
	require.True(t, alert.Acknowledged)
	require.Equal(t, "grace", alert.AcknowledgedBy)

	resp = postJSON(t, srv.URL+"/api/v1/alerts/unknown/ack", `{"actor":"grace"}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTransferEndpoint(t *testing.T) {
	srv, engine := newTestServer(t)
	product := createProductHTTP(t, srv, "W-1", 0)
	snap := engine.Snapshot()
	src, dst := snap.Locations[0], snap.Locations[1]

	body := fmt.Sprintf(`{"po_number":"PO-7","product_id":%q,"location_id":%q,"quantity":9,"actor":"carol"}`, product.ID, src.ID)
	resp := postJSON(t, srv.URL+"/api/v1/receipts", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body = fmt.Sprintf(`{"product_id":%q,"source_id":%q,"dest_id":%q,"quantity":4,"actor":"dave"}`, product.ID, src.ID, dst.ID)
	resp = postJSON(t, srv.URL+"/api/v1/transfers", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body = fmt.Sprintf(`{"product_id":%q,"source_id":%q,"dest_id":%q,"quantity":1,"actor":"dave"}`, product.ID, src.ID, src.ID)
	resp = postJSON(t, srv.URL+"/api/v1/transfers", body)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTurnoverEndpoint(t *testing.T) {
	srv, engine := newTestServer(t)
	product := createProductHTTP(t, srv, "W-1", 0)
	loc := engine.Snapshot().Locations[0]

	body := fmt.Sprintf(`{"po_number":"PO-7","product_id":%q,"location_id":%q,"quantity":20,"actor":"carol"}`, product.ID, loc.ID)
	postJSON(t, srv.URL+"/api/v1/receipts", body)
	body = fmt.Sprintf(`{"destination":"ACME","source_id":%q,"lines":[{"product_id":%q,"quantity":18}],"actor":"bob"}`, loc.ID, product.ID)
	postJSON(t, srv.URL+"/api/v1/orders", body)

	resp := getURL(t, srv.URL+"/api/v1/reports/turnover")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []ledger.TurnoverRow
	decodeBody(t, resp, &rows)
	require.Len(t, rows, 1)
	require.InDelta(t, 18, rows[0].COGS, 1e-9)

	resp = getURL(t, srv.URL+"/api/v1/reports/turnover?from=bogus")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = getURL(t, srv.URL+"/api/v1/reports/turnover?from=2026-03-15&to=2026-03-01")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTurnoverCacheInvalidatedByWrites(t *testing.T) {
	engine, err := ledger.New(context.Background(), ledger.Config{Gateway: store.NewMemory()})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reports := report.NewService(engine, report.NewCache(client, time.Minute), nil)
	handler := NewHandler(nil, engine, reports)
	r := chi.NewRouter()
	r.Route("/api/v1", handler.MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	product := createProductHTTP(t, srv, "W-1", 0)
	loc := engine.Snapshot().Locations[0]

	body := fmt.Sprintf(`{"po_number":"PO-7","product_id":%q,"location_id":%q,"quantity":20,"actor":"carol"}`, product.ID, loc.ID)
	postJSON(t, srv.URL+"/api/v1/receipts", body)
	orderBody := fmt.Sprintf(`{"destination":"ACME","source_id":%q,"lines":[{"product_id":%q,"quantity":5}],"actor":"bob"}`, loc.ID, product.ID)
	postJSON(t, srv.URL+"/api/v1/orders", orderBody)

	resp := getURL(t, srv.URL+"/api/v1/reports/turnover")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []ledger.TurnoverRow
	decodeBody(t, resp, &rows)
	require.Len(t, rows, 1)
	require.InDelta(t, 5, rows[0].COGS, 1e-9)

	// A second order lands inside the cache TTL and must still show up.
	postJSON(t, srv.URL+"/api/v1/orders", orderBody)

	resp = getURL(t, srv.URL+"/api/v1/reports/turnover")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows = rows[:0]
	decodeBody(t, resp, &rows)
	require.Len(t, rows, 1)
	require.InDelta(t, 10, rows[0].COGS, 1e-9)
}

func TestCSVExports(t *testing.T) {
	srv, engine := newTestServer(t)
	product := createProductHTTP(t, srv, "W-1", 0)
	loc := engine.Snapshot().Locations[0]
	body := fmt.Sprintf(`{"po_number":"PO-7","product_id":%q,"location_id":%q,"quantity":5,"actor":"carol"}`, product.ID, loc.ID)
	postJSON(t, srv.URL+"/api/v1/receipts", body)

	for _, name := range []string{"products", "stock", "orders", "receipts", "financials", "turnover"} {
		resp := getURL(t, srv.URL+"/api/v1/export/"+name+".csv")
		require.Equal(t, http.StatusOK, resp.StatusCode, name)
		require.Equal(t, "text/csv", resp.Header.Get("Content-Type"), name)
		require.Contains(t, resp.Header.Get("Content-Disposition"), name+".csv")
	}
}
