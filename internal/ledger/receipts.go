package ledger

import (
	"fmt"
	"strings"
)

func (e *Engine) applyReceiveGoods(next *Snapshot, in ReceiveGoodsIntent) (string, error) {
	switch {
	case strings.TrimSpace(in.PONumber) == "":
		return "", fmt.Errorf("%w: po number required", ErrValidation)
	case strings.TrimSpace(in.Actor) == "":
		return "", fmt.Errorf("%w: actor required", ErrValidation)
	case in.Quantity < 1:
		return "", fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}

	if _, err := e.applyDelta(next, in.ProductID, in.LocationID, in.Quantity, in.Actor); err != nil {
		return "", err
	}

	now := e.now()
	receipt := GoodsReceipt{
		ID:         e.newID(),
		PONumber:   in.PONumber,
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
		LocationID: in.LocationID,
		ReceivedAt: now,
	}
	next.Receipts = append(next.Receipts, receipt)
	unit := e.costing.UnitValue(in.ProductID)
	next.Finance = append(next.Finance, FinancialEntry{
		ID:         e.newID(),
		Kind:       EntryKindReceipt,
		ProductID:  in.ProductID,
		UnitValue:  unit,
		Quantity:   in.Quantity,
		TotalValue: float64(in.Quantity) * unit,
		At:         now,
	})
	next.Audit = append(next.Audit, AuditEntry{
		ID:      e.newID(),
		Kind:    AuditKindReceipt,
		User:    in.Actor,
		At:      now,
		Details: fmt.Sprintf("receipt %s po %s product %s qty %d @ %s", receipt.ID, in.PONumber, in.ProductID, in.Quantity, in.LocationID),
	})
	return receipt.ID, nil
}
