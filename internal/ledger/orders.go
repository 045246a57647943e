package ledger

import (
	"fmt"
	"strings"
)

func (e *Engine) applySubmitOrder(next *Snapshot, in SubmitOrderIntent) (string, error) {
	switch {
	case strings.TrimSpace(in.Destination) == "":
		return "", fmt.Errorf("%w: destination required", ErrValidation)
	case strings.TrimSpace(in.Actor) == "":
		return "", fmt.Errorf("%w: actor required", ErrValidation)
	case len(in.Lines) == 0:
		return "", fmt.Errorf("%w: at least one line required", ErrValidation)
	}
	if _, ok := next.LocationByID(in.SourceID); !ok {
		return "", fmt.Errorf("%w: %s", ErrLocationNotFound, in.SourceID)
	}

	// All-or-nothing: every line must be satisfiable before any deduction.
	for _, line := range in.Lines {
		if line.Quantity < 1 {
			return "", fmt.Errorf("%w: line quantity must be >= 1", ErrValidation)
		}
		if _, ok := next.ProductByID(line.ProductID); !ok {
			return "", fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		if next.OnHand(line.ProductID, in.SourceID) < line.Quantity {
			return "", fmt.Errorf("%w: product %s @ %s", ErrInsufficientStock, line.ProductID, in.SourceID)
		}
	}

	now := e.now()
	for _, line := range in.Lines {
		newQty, err := e.applyDelta(next, line.ProductID, in.SourceID, -line.Quantity, in.Actor)
		if err != nil {
			return "", err
		}
		e.evaluateReorder(next, line.ProductID, in.SourceID, newQty)
		unit := e.costing.UnitValue(line.ProductID)
		next.Finance = append(next.Finance, FinancialEntry{
			ID:         e.newID(),
			Kind:       EntryKindOrderCOGS,
			ProductID:  line.ProductID,
			UnitValue:  unit,
			Quantity:   -line.Quantity,
			TotalValue: float64(-line.Quantity) * unit,
			At:         now,
		})
	}

	order := Order{
		ID:          e.newID(),
		Destination: in.Destination,
		SourceID:    in.SourceID,
		Lines:       make([]OrderLine, 0, len(in.Lines)),
		CreatedBy:   in.Actor,
		CreatedAt:   now,
	}
	for _, line := range in.Lines {
		order.Lines = append(order.Lines, OrderLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	next.Orders = append(next.Orders, order)
	next.Audit = append(next.Audit, AuditEntry{
		ID:      e.newID(),
		Kind:    AuditKindOrder,
		User:    in.Actor,
		At:      now,
		Details: fmt.Sprintf("order %s to %s, %d lines from %s", order.ID, in.Destination, len(order.Lines), in.SourceID),
	})
	return order.ID, nil
}
