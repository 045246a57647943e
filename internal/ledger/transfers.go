package ledger

import (
	"fmt"
	"strings"
)

func (e *Engine) applySubmitTransfer(next *Snapshot, in SubmitTransferIntent) (string, error) {
	switch {
	case strings.TrimSpace(in.Actor) == "":
		return "", fmt.Errorf("%w: actor required", ErrValidation)
	case in.Quantity < 1:
		return "", fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	case in.SourceID == in.DestID:
		return "", ErrInvalidTransfer
	}
	if _, ok := next.ProductByID(in.ProductID); !ok {
		return "", fmt.Errorf("%w: %s", ErrProductNotFound, in.ProductID)
	}
	if _, ok := next.LocationByID(in.SourceID); !ok {
		return "", fmt.Errorf("%w: %s", ErrLocationNotFound, in.SourceID)
	}
	if _, ok := next.LocationByID(in.DestID); !ok {
		return "", fmt.Errorf("%w: %s", ErrLocationNotFound, in.DestID)
	}
	if next.OnHand(in.ProductID, in.SourceID) < in.Quantity {
		return "", fmt.Errorf("%w: product %s @ %s", ErrInsufficientStock, in.ProductID, in.SourceID)
	}

	// Both legs mutate the same clone, so either both publish or neither does.
	outQty, err := e.applyDelta(next, in.ProductID, in.SourceID, -in.Quantity, in.Actor)
	if err != nil {
		return "", err
	}
	e.evaluateReorder(next, in.ProductID, in.SourceID, outQty)
	if _, err := e.applyDelta(next, in.ProductID, in.DestID, in.Quantity, in.Actor); err != nil {
		return "", err
	}

	now := e.now()
	transfer := Transfer{
		ID:        e.newID(),
		SourceID:  in.SourceID,
		DestID:    in.DestID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		CreatedAt: now,
	}
	next.Transfers = append(next.Transfers, transfer)
	// Transfers are value-neutral; the entry exists for ledger completeness.
	next.Finance = append(next.Finance, FinancialEntry{
		ID:        e.newID(),
		Kind:      EntryKindTransfer,
		ProductID: in.ProductID,
		At:        now,
	})
	next.Audit = append(next.Audit, AuditEntry{
		ID:      e.newID(),
		Kind:    AuditKindTransfer,
		User:    in.Actor,
		At:      now,
		Details: fmt.Sprintf("transfer %s product %s qty %d %s -> %s", transfer.ID, in.ProductID, in.Quantity, in.SourceID, in.DestID),
	})
	return transfer.ID, nil
}
