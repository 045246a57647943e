package ledger

// Intent is one recognized state-changing request. Every mutation of the
// snapshot flows through Engine.Dispatch with exactly one intent.
type Intent interface {
	Kind() string
}

// CreateProductIntent adds a catalog item and initialises one zero-quantity
// inventory record per existing location.
type CreateProductIntent struct {
	Name         string
	SKU          string
	Category     string
	UOM          string
	Description  string
	ReorderPoint int64
	Actor        string
}

func (CreateProductIntent) Kind() string { return "create_product" }

// UpdateStockIntent applies a direct signed quantity delta.
type UpdateStockIntent struct {
	ProductID  string
	LocationID string
	Delta      int64
	Actor      string
}

func (UpdateStockIntent) Kind() string { return "update_stock" }

// OrderLineInput is one requested line of a sales order.
type OrderLineInput struct {
	ProductID string
	Quantity  int64
}

// SubmitOrderIntent fulfils a multi-line sales order from one source location.
type SubmitOrderIntent struct {
	Destination string
	SourceID    string
	Lines       []OrderLineInput
	Actor       string
}

func (SubmitOrderIntent) Kind() string { return "submit_order" }

// ReceiveGoodsIntent books inbound stock against a purchase order reference.
type ReceiveGoodsIntent struct {
	PONumber   string
	ProductID  string
	LocationID string
	Quantity   int64
	Actor      string
}

func (ReceiveGoodsIntent) Kind() string { return "receive_goods" }

// SubmitTransferIntent moves stock between two distinct locations.
type SubmitTransferIntent struct {
	ProductID string
	SourceID  string
	DestID    string
	Quantity  int64
	Reason    string
	Actor     string
}

func (SubmitTransferIntent) Kind() string { return "submit_transfer" }

// SubmitAdjustmentIntent applies a manual signed correction. Positive deltas
// require the admin role.
type SubmitAdjustmentIntent struct {
	ProductID  string
	LocationID string
	Delta      int64
	Reason     string
	Actor      string
	Role       Role
}

func (SubmitAdjustmentIntent) Kind() string { return "submit_adjustment" }

// AcknowledgeAlertIntent marks an alert acknowledged. Terminal; acknowledging
// an already-acknowledged alert is a no-op.
type AcknowledgeAlertIntent struct {
	AlertID string
	Actor   string
}

func (AcknowledgeAlertIntent) Kind() string { return "ack_alert" }
