package ledger

import "fmt"

// applyDelta is the primitive movement operation shared by every
// orchestrator. It locates the inventory record for the pair, rejects any
// delta that would drive the quantity negative, stamps the record and appends
// a stock_update audit entry. Callers pre-validate availability where the
// business rule demands a dedicated error (insufficient stock); the check
// here is the final guard for the non-negative invariant.
func (e *Engine) applyDelta(next *Snapshot, productID, locationID string, delta int64, actor string) (int64, error) {
	idx := -1
	for i := range next.Inventory {
		if next.Inventory[i].ProductID == productID && next.Inventory[i].LocationID == locationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		if _, ok := next.ProductByID(productID); !ok {
			return 0, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return 0, fmt.Errorf("%w: %s", ErrLocationNotFound, locationID)
	}
	newQty := next.Inventory[idx].Quantity + delta
	if newQty < 0 {
		return 0, fmt.Errorf("%w: product %s @ %s", ErrNegativeStock, productID, locationID)
	}
	now := e.now()
	next.Inventory[idx].Quantity = newQty
	next.Inventory[idx].UpdatedAt = now
	next.Audit = append(next.Audit, AuditEntry{
		ID:      e.newID(),
		Kind:    AuditKindStockUpdate,
		User:    actor,
		At:      now,
		Details: fmt.Sprintf("delta %+d product %s @ %s", delta, productID, locationID),
	})
	return newQty, nil
}
