// Package ledgerhttp adapts the ledger engine to a JSON HTTP surface. It
// holds no state of its own; every mutation is a single engine intent.
package ledgerhttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/inventra/inventra/internal/ledger"
	"github.com/inventra/inventra/internal/report"
)

// Handler wires HTTP endpoints for the inventory ledger.
type Handler struct {
	logger   *slog.Logger
	engine   *ledger.Engine
	reports  *report.Service
	validate *validator.Validate
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger, engine *ledger.Engine, reports *report.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		engine:   engine,
		reports:  reports,
		validate: validator.New(),
	}
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	product, err := h.engine.CreateProduct(r.Context(), ledger.CreateProductIntent{
		Name:         req.Name,
		SKU:          req.SKU,
		Category:     req.Category,
		UOM:          req.UOM,
		Description:  req.Description,
		ReorderPoint: req.ReorderPoint,
		Actor:        req.Actor,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.invalidateReports(r.Context())
	h.writeJSON(w, http.StatusCreated, product)
}

// invalidateReports drops cached turnover windows after a write. Best effort;
// a stale row self-heals when the cache TTL lapses.
func (h *Handler) invalidateReports(ctx context.Context) {
	if err := h.reports.Invalidate(ctx); err != nil {
		h.logger.Warn("invalidate turnover cache", slog.Any("error", err))
	}
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	h.writeJSON(w, http.StatusOK, snap.Products)
}

func (h *Handler) handleListLocations(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	h.writeJSON(w, http.StatusOK, snap.Locations)
}

func (h *Handler) handleListStock(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	rows := make([]stockRow, 0, len(snap.Inventory))
	for _, rec := range snap.Inventory {
		rows = append(rows, stockRow{ProductID: rec.ProductID, LocationID: rec.LocationID, Quantity: rec.Quantity})
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) handleUpdateStock(w http.ResponseWriter, r *http.Request) {
	var req updateStockRequest
	if !h.decode(w, r, &req) {
		return
	}
	onHand, err := h.engine.UpdateStock(r.Context(), ledger.UpdateStockIntent{
		ProductID:  req.ProductID,
		LocationID: req.LocationID,
		Delta:      req.Delta,
		Actor:      req.Actor,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.invalidateReports(r.Context())
	h.writeJSON(w, http.StatusOK, updateStockResponse{ProductID: req.ProductID, LocationID: req.LocationID, OnHand: onHand})
}

func (h *Handler) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	lines := make([]ledger.OrderLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, ledger.OrderLineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	order, err := h.engine.SubmitOrder(r.Context(), ledger.SubmitOrderIntent{
		Destination: req.Destination,
		SourceID:    req.SourceID,
		Lines:       lines,
		Actor:       req.Actor,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.invalidateReports(r.Context())
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	h.writeJSON(w, http.StatusOK, snap.Orders)
}

func (h *Handler) handleReceiveGoods(w http.ResponseWriter, r *http.Request) {
	var req receiveGoodsRequest
	if !h.decode(w, r, &req) {
		return
	}
	receipt, err := h.engine.ReceiveGoods(r.Context(), ledger.ReceiveGoodsIntent{
		PONumber:   req.PONumber,
		ProductID:  req.ProductID,
		LocationID: req.LocationID,
		Quantity:   req.Quantity,
		Actor:      req.Actor,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.invalidateReports(r.Context())
	h.writeJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	h.writeJSON(w, http.StatusOK, snap.Receipts)
}

func (h *Handler) handleSubmitTransfer(w http.ResponseWriter, r *http.Request) {
	var req submitTransferRequest
	if !h.decode(w, r, &req) {
		return
	}
	transfer, err := h.engine.SubmitTransfer(r.Context(), ledger.SubmitTransferIntent{
		ProductID: req.ProductID,
		SourceID:  req.SourceID,
		DestID:    req.DestID,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		Actor:     req.Actor,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.invalidateReports(r.Context())
	h.writeJSON(w, http.StatusCreated, transfer)
}

func (h *Handler) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	h.writeJSON(w, http.StatusOK, snap.Transfers)
}

func (h *Handler) handleSubmitAdjustment(w http.ResponseWriter, r *http.Request) {
	var req submitAdjustmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	adj, err := h.engine.SubmitAdjustment(r.Context(), ledger.SubmitAdjustmentIntent{
		ProductID:  req.ProductID,
		LocationID: req.LocationID,
		Delta:      req.Delta,
		Reason:     req.Reason,
		Actor:      req.Actor,
		Role:       ledger.Role(req.Role),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.invalidateReports(r.Context())
	h.writeJSON(w, http.StatusCreated, adj)
}

func (h *Handler) handleListAdjustments(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	h.writeJSON(w, http.StatusOK, snap.Adjustments)
}

func (h *Handler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	h.writeJSON(w, http.StatusOK, snap.Alerts)
}

func (h *Handler) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	var req acknowledgeAlertRequest
	if !h.decode(w, r, &req) {
		return
	}
	alert, err := h.engine.AcknowledgeAlert(r.Context(), ledger.AcknowledgeAlertIntent{
		AlertID: chi.URLParam(r, "id"),
		Actor:   req.Actor,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, alert)
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	h.writeJSON(w, http.StatusOK, snap.Audit)
}

func (h *Handler) handleListFinancials(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	h.writeJSON(w, http.StatusOK, snap.Finance)
}

func (h *Handler) handleTurnover(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseWindow(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	rows, err := h.reports.Turnover(r.Context(), from, to)
	if err != nil {
		h.logger.Error("compute turnover", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

// parseWindow reads from/to query dates, defaulting to the trailing 30 days.
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	from := now.AddDate(0, 0, -30)
	to := now
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from date, want YYYY-MM-DD")
		}
		from = t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to date, want YYYY-MM-DD")
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to date precedes from date")
	}
	return from, to, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: verrs[0].Error()})
		} else {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		}
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", slog.Any("error", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("intent failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation), errors.Is(err, ledger.ErrInvalidTransfer):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrProductNotFound),
		errors.Is(err, ledger.ErrLocationNotFound),
		errors.Is(err, ledger.ErrAlertNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateSKU),
		errors.Is(err, ledger.ErrInsufficientStock),
		errors.Is(err, ledger.ErrNegativeStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
