package ledger

// Costing supplies the unit value used for financial ledger entries. A real
// costing module (moving average, FIFO) can be plugged in here; the engine
// only ever asks for a value per product.
type Costing interface {
	UnitValue(productID string) float64
}

// FixedCosting values every product at a constant amount.
type FixedCosting float64

// UnitValue implements Costing.
func (c FixedCosting) UnitValue(string) float64 { return float64(c) }
