package ledgerhttp

// Request DTOs. Validation tags mirror the engine's own checks so malformed
// requests are rejected before an intent is built.

type createProductRequest struct {
	Name         string `json:"name" validate:"required"`
	SKU          string `json:"sku" validate:"required"`
	Category     string `json:"category" validate:"required"`
	UOM          string `json:"uom" validate:"required"`
	Description  string `json:"description"`
	ReorderPoint int64  `json:"reorder_point" validate:"gte=0"`
	Actor        string `json:"actor" validate:"required"`
}

type updateStockRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	LocationID string `json:"location_id" validate:"required"`
	Delta      int64  `json:"delta" validate:"required"`
	Actor      string `json:"actor" validate:"required"`
}

type orderLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"gte=1"`
}

type submitOrderRequest struct {
	Destination string             `json:"destination" validate:"required"`
	SourceID    string             `json:"source_id" validate:"required"`
	Lines       []orderLineRequest `json:"lines" validate:"required,min=1,dive"`
	Actor       string             `json:"actor" validate:"required"`
}

type receiveGoodsRequest struct {
	PONumber   string `json:"po_number" validate:"required"`
	ProductID  string `json:"product_id" validate:"required"`
	LocationID string `json:"location_id" validate:"required"`
	Quantity   int64  `json:"quantity" validate:"gte=1"`
	Actor      string `json:"actor" validate:"required"`
}

type submitTransferRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	SourceID  string `json:"source_id" validate:"required"`
	DestID    string `json:"dest_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"gte=1"`
	Reason    string `json:"reason"`
	Actor     string `json:"actor" validate:"required"`
}

type submitAdjustmentRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	LocationID string `json:"location_id" validate:"required"`
	Delta      int64  `json:"delta" validate:"required"`
	Reason     string `json:"reason" validate:"required"`
	Actor      string `json:"actor" validate:"required"`
	Role       string `json:"role" validate:"required,oneof=owner warehouse_manager inventory_clerk sales_associate purchasing_officer finance_manager admin"`
}

type acknowledgeAlertRequest struct {
	Actor string `json:"actor" validate:"required"`
}

type stockRow struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	Quantity   int64  `json:"quantity"`
}

type updateStockResponse struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	OnHand     int64  `json:"on_hand"`
}

type errorResponse struct {
	Error string `json:"error"`
}
