package ledgerhttp

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/inventra/inventra/internal/ledger"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.flush()
	}
	return nil
}

func (s *csvStreamer) flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.flush()
}

func csvHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
}

func (h *Handler) streamCSV(w http.ResponseWriter, filename string, header []string, rows [][]string) {
	csvHeaders(w, filename)
	streamer := newCSVStreamer(w)
	if err := streamer.writeRow(header); err != nil {
		h.logger.Error("write csv header", slog.Any("error", err))
		return
	}
	for _, row := range rows {
		if err := streamer.writeRow(row); err != nil {
			h.logger.Error("write csv row", slog.Any("error", err))
			return
		}
	}
	if err := streamer.Close(); err != nil {
		h.logger.Error("flush csv", slog.Any("error", err))
	}
}

func (h *Handler) handleExportProducts(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	rows := make([][]string, 0, len(snap.Products))
	for _, p := range snap.Products {
		rows = append(rows, []string{
			p.ID, p.Name, p.SKU, p.Category, p.UOM,
			strconv.FormatInt(p.ReorderPoint, 10),
			p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	h.streamCSV(w, "products.csv",
		[]string{"ID", "Name", "SKU", "Category", "UOM", "Reorder Point", "Created At"}, rows)
}

func (h *Handler) handleExportStock(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	rows := make([][]string, 0, len(snap.Inventory))
	for _, rec := range snap.Inventory {
		product := ""
		if p, ok := snap.ProductByID(rec.ProductID); ok {
			product = p.Name
		}
		location := ""
		if l, ok := snap.LocationByID(rec.LocationID); ok {
			location = l.Name
		}
		rows = append(rows, []string{
			rec.ProductID, product, rec.LocationID, location,
			strconv.FormatInt(rec.Quantity, 10),
			rec.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	h.streamCSV(w, "stock.csv",
		[]string{"Product ID", "Product", "Location ID", "Location", "Quantity", "Updated At"}, rows)
}

func (h *Handler) handleExportOrders(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	var rows [][]string
	for _, o := range snap.Orders {
		for _, line := range o.Lines {
			product := ""
			if p, ok := snap.ProductByID(line.ProductID); ok {
				product = p.Name
			}
			rows = append(rows, []string{
				o.ID, o.Destination, line.ProductID, product,
				strconv.FormatInt(line.Quantity, 10),
				o.CreatedBy, o.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
	}
	h.streamCSV(w, "orders.csv",
		[]string{"Order ID", "Destination", "Product ID", "Product", "Quantity", "Created By", "Created At"}, rows)
}

func (h *Handler) handleExportReceipts(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	rows := make([][]string, 0, len(snap.Receipts))
	for _, rc := range snap.Receipts {
		product := ""
		if p, ok := snap.ProductByID(rc.ProductID); ok {
			product = p.Name
		}
		location := ""
		if l, ok := snap.LocationByID(rc.LocationID); ok {
			location = l.Name
		}
		rows = append(rows, []string{
			rc.ID, rc.PONumber, rc.ProductID, product,
			strconv.FormatInt(rc.Quantity, 10),
			location, rc.ReceivedAt.UTC().Format(time.RFC3339),
		})
	}
	h.streamCSV(w, "receipts.csv",
		[]string{"Receipt ID", "PO Number", "Product ID", "Product", "Quantity", "Location", "Received At"}, rows)
}

func (h *Handler) handleExportFinancials(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	rows := make([][]string, 0, len(snap.Finance))
	for _, fe := range snap.Finance {
		rows = append(rows, []string{
			fe.ID, string(fe.Kind), fe.ProductID,
			strconv.FormatInt(fe.Quantity, 10),
			strconv.FormatFloat(fe.TotalValue, 'f', 2, 64),
			fe.At.UTC().Format(time.RFC3339),
		})
	}
	h.streamCSV(w, "financials.csv",
		[]string{"Entry ID", "Kind", "Product ID", "Quantity", "Total Value", "At"}, rows)
}

func (h *Handler) handleExportTurnover(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseWindow(r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	report, err := h.reports.Turnover(r.Context(), from, to)
	if err != nil {
		h.logger.Error("compute turnover", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.streamCSV(w, "turnover.csv",
		[]string{"SKU", "Product", "COGS", "Average Inventory", "Turnover"},
		turnoverRows(report))
}

func turnoverRows(report []ledger.TurnoverRow) [][]string {
	out := make([][]string, 0, len(report))
	for _, row := range report {
		out = append(out, []string{
			row.SKU,
			row.Product,
			strconv.FormatFloat(row.COGS, 'f', 2, 64),
			strconv.FormatFloat(row.AvgInventory, 'f', 2, 64),
			strconv.FormatFloat(row.Turnover, 'f', 2, 64),
		})
	}
	return out
}
