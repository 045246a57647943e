package ledger

import (
	"fmt"
	"strings"
)

func (e *Engine) applySubmitAdjustment(next *Snapshot, in SubmitAdjustmentIntent) (string, error) {
	switch {
	case strings.TrimSpace(in.Reason) == "":
		return "", fmt.Errorf("%w: reason required", ErrValidation)
	case strings.TrimSpace(in.Actor) == "":
		return "", fmt.Errorf("%w: actor required", ErrValidation)
	case in.Delta == 0:
		return "", fmt.Errorf("%w: delta must be non-zero", ErrValidation)
	case !in.Role.Valid():
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}
	if in.Delta > 0 && in.Role != RoleAdmin {
		return "", fmt.Errorf("%w: role %s", ErrUnauthorized, in.Role)
	}

	newQty, err := e.applyDelta(next, in.ProductID, in.LocationID, in.Delta, in.Actor)
	if err != nil {
		return "", err
	}
	if in.Delta < 0 {
		e.evaluateReorder(next, in.ProductID, in.LocationID, newQty)
	}

	now := e.now()
	adj := Adjustment{
		ID:         e.newID(),
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Quantity:   in.Delta,
		Reason:     in.Reason,
		CreatedAt:  now,
	}
	if in.Delta > 0 {
		adj.ApprovedBy = in.Actor
	}
	next.Adjustments = append(next.Adjustments, adj)
	unit := e.costing.UnitValue(in.ProductID)
	next.Finance = append(next.Finance, FinancialEntry{
		ID:         e.newID(),
		Kind:       EntryKindAdjustment,
		ProductID:  in.ProductID,
		UnitValue:  unit,
		Quantity:   in.Delta,
		TotalValue: float64(in.Delta) * unit,
		At:         now,
	})
	next.Audit = append(next.Audit, AuditEntry{
		ID:      e.newID(),
		Kind:    AuditKindAdjustment,
		User:    in.Actor,
		At:      now,
		Details: fmt.Sprintf("adjustment %s product %s qty %+d @ %s: %s", adj.ID, in.ProductID, in.Delta, in.LocationID, in.Reason),
	})
	return adj.ID, nil
}
