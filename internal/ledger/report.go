package ledger

import (
	"math"
	"time"
)

// TurnoverRow is one product's turnover over a reporting window.
type TurnoverRow struct {
	SKU          string  `json:"sku"`
	Product      string  `json:"product"`
	COGS         float64 `json:"cogs"`
	AvgInventory float64 `json:"avg_inventory"`
	Turnover     float64 `json:"turnover"`
}

// ComputeTurnover sums absolute order_cogs value per product over
// [from, to+24h) and divides by the arithmetic mean on-hand quantity across
// the product's inventory records. Turnover is zero, not an error, when the
// average is zero. Read-only; repeated calls over an unchanged store yield
// identical rows.
func (e *Engine) ComputeTurnover(from, to time.Time) []TurnoverRow {
	e.mu.RLock()
	defer e.mu.RUnlock()

	windowEnd := to.Add(24 * time.Hour)
	rows := make([]TurnoverRow, 0, len(e.snap.Products))
	for _, p := range e.snap.Products {
		var cogs float64
		for _, f := range e.snap.Finance {
			if f.ProductID != p.ID || f.Kind != EntryKindOrderCOGS {
				continue
			}
			if f.At.Before(from) || !f.At.Before(windowEnd) {
				continue
			}
			cogs += math.Abs(f.TotalValue)
		}
		var total int64
		var records int
		for _, rec := range e.snap.Inventory {
			if rec.ProductID == p.ID {
				total += rec.Quantity
				records++
			}
		}
		var avg float64
		if records > 0 {
			avg = float64(total) / float64(records)
		}
		var turnover float64
		if avg > 0 {
			turnover = cogs / avg
		}
		rows = append(rows, TurnoverRow{
			SKU:          p.SKU,
			Product:      p.Name,
			COGS:         cogs,
			AvgInventory: round2(avg),
			Turnover:     round2(turnover),
		})
	}
	return rows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
