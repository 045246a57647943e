package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/inventra/inventra/internal/ledger"
	"github.com/inventra/inventra/internal/ledgerhttp"
	"github.com/inventra/inventra/internal/report"
	"github.com/inventra/inventra/internal/store"
)

func newTestRouter(t *testing.T, cfg *Config) http.Handler {
	t.Helper()
	engine, err := ledger.New(context.Background(), ledger.Config{Gateway: store.NewMemory()})
	require.NoError(t, err)
	reports := report.NewService(engine, nil, nil)
	handler := ledgerhttp.NewHandler(nil, engine, reports)
	return NewRouter(RouterParams{
		Logger:        slog.Default(),
		Config:        cfg,
		LedgerHandler: handler,
	})
}

func TestHealthzOpenWithoutToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	router := newTestRouter(t, &Config{APITokenHash: string(hash)})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestAPIRequiresToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	router := newTestRouter(t, &Config{APITokenHash: string(hash)})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestTokenAuthDisabledWhenUnconfigured(t *testing.T) {
	router := newTestRouter(t, &Config{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestLoadConfigValidatesBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "filesystem")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("STORE_BACKEND", "memory")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.StoreBackend)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresTokenInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_BACKEND", "memory")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("API_TOKEN_HASH", "not-empty")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
}
