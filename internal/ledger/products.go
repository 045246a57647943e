package ledger

import (
	"fmt"
	"strings"
)

func (e *Engine) applyCreateProduct(next *Snapshot, in CreateProductIntent) (string, error) {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return "", fmt.Errorf("%w: name required", ErrValidation)
	case strings.TrimSpace(in.SKU) == "":
		return "", fmt.Errorf("%w: sku required", ErrValidation)
	case strings.TrimSpace(in.Category) == "":
		return "", fmt.Errorf("%w: category required", ErrValidation)
	case strings.TrimSpace(in.UOM) == "":
		return "", fmt.Errorf("%w: unit of measure required", ErrValidation)
	case strings.TrimSpace(in.Actor) == "":
		return "", fmt.Errorf("%w: actor required", ErrValidation)
	case in.ReorderPoint < 0:
		return "", fmt.Errorf("%w: reorder point must be >= 0", ErrValidation)
	}
	for _, p := range next.Products {
		if strings.EqualFold(p.SKU, in.SKU) {
			return "", fmt.Errorf("%w: %s", ErrDuplicateSKU, in.SKU)
		}
	}

	now := e.now()
	product := Product{
		ID:           e.newID(),
		Name:         in.Name,
		SKU:          in.SKU,
		Category:     in.Category,
		UOM:          in.UOM,
		Description:  in.Description,
		ReorderPoint: in.ReorderPoint,
		CreatedAt:    now,
	}
	next.Products = append(next.Products, product)
	// One zero-quantity record per existing location; the pair set never
	// grows any other way.
	for _, loc := range next.Locations {
		next.Inventory = append(next.Inventory, InventoryRecord{
			ID:         e.newID(),
			ProductID:  product.ID,
			LocationID: loc.ID,
			Quantity:   0,
			UpdatedAt:  now,
		})
	}
	return product.ID, nil
}

func (e *Engine) applyUpdateStock(next *Snapshot, in UpdateStockIntent) (string, error) {
	if strings.TrimSpace(in.Actor) == "" {
		return "", fmt.Errorf("%w: actor required", ErrValidation)
	}
	if in.Delta == 0 {
		return "", fmt.Errorf("%w: delta must be non-zero", ErrValidation)
	}
	newQty, err := e.applyDelta(next, in.ProductID, in.LocationID, in.Delta, in.Actor)
	if err != nil {
		return "", err
	}
	if in.Delta < 0 {
		e.evaluateReorder(next, in.ProductID, in.LocationID, newQty)
	}
	return in.ProductID, nil
}
