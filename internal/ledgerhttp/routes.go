package ledgerhttp

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches every ledger endpoint to the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/products", h.handleCreateProduct)
	r.Get("/products", h.handleListProducts)
	r.Get("/locations", h.handleListLocations)

	r.Get("/stock", h.handleListStock)
	r.Post("/stock/update", h.handleUpdateStock)

	r.Post("/orders", h.handleSubmitOrder)
	r.Get("/orders", h.handleListOrders)
	r.Post("/receipts", h.handleReceiveGoods)
	r.Get("/receipts", h.handleListReceipts)
	r.Post("/transfers", h.handleSubmitTransfer)
	r.Get("/transfers", h.handleListTransfers)
	r.Post("/adjustments", h.handleSubmitAdjustment)
	r.Get("/adjustments", h.handleListAdjustments)

	r.Get("/alerts", h.handleListAlerts)
	r.Post("/alerts/{id}/ack", h.handleAcknowledgeAlert)

	r.Get("/audit", h.handleListAudit)
	r.Get("/financials", h.handleListFinancials)
	r.Get("/reports/turnover", h.handleTurnover)

	r.Get("/export/products.csv", h.handleExportProducts)
	r.Get("/export/stock.csv", h.handleExportStock)
	r.Get("/export/orders.csv", h.handleExportOrders)
	r.Get("/export/receipts.csv", h.handleExportReceipts)
	r.Get("/export/financials.csv", h.handleExportFinancials)
	r.Get("/export/turnover.csv", h.handleExportTurnover)
}
