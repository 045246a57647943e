package ledger

import (
	"fmt"
	"strings"
)

// evaluateReorder runs after every stock-decreasing movement. A new alert is
// created whenever the product's reorder threshold exceeds the new on-hand
// quantity; an already-open alert for the same pair does not suppress it.
func (e *Engine) evaluateReorder(next *Snapshot, productID, locationID string, newQty int64) {
	product, ok := next.ProductByID(productID)
	if !ok || product.ReorderPoint <= 0 {
		return
	}
	if product.ReorderPoint <= newQty {
		return
	}
	next.Alerts = append(next.Alerts, Alert{
		ID:         e.newID(),
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   newQty,
		Threshold:  product.ReorderPoint,
		CreatedAt:  e.now(),
	})
}

func (e *Engine) applyAcknowledgeAlert(next *Snapshot, in AcknowledgeAlertIntent) (string, error) {
	if strings.TrimSpace(in.Actor) == "" {
		return "", fmt.Errorf("%w: actor required", ErrValidation)
	}
	for i := range next.Alerts {
		if next.Alerts[i].ID != in.AlertID {
			continue
		}
		if next.Alerts[i].Acknowledged {
			// Terminal state; repeated acknowledgment is a no-op.
			return in.AlertID, nil
		}
		now := e.now()
		next.Alerts[i].Acknowledged = true
		next.Alerts[i].AcknowledgedBy = in.Actor
		next.Audit = append(next.Audit, AuditEntry{
			ID:      e.newID(),
			Kind:    AuditKindAckAlert,
			User:    in.Actor,
			At:      now,
			Details: fmt.Sprintf("ack alert %s", in.AlertID),
		})
		return in.AlertID, nil
	}
	return "", fmt.Errorf("%w: %s", ErrAlertNotFound, in.AlertID)
}
