package ledger

import (
	"errors"
	"time"
)

// Role enumerates the fixed role set carried by authorization-sensitive intents.
type Role string

const (
	RoleOwner             Role = "owner"
	RoleWarehouseManager  Role = "warehouse_manager"
	RoleInventoryClerk    Role = "inventory_clerk"
	RoleSalesAssociate    Role = "sales_associate"
	RolePurchasingOfficer Role = "purchasing_officer"
	RoleFinanceManager    Role = "finance_manager"
	RoleAdmin             Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleWarehouseManager, RoleInventoryClerk, RoleSalesAssociate,
		RolePurchasingOfficer, RoleFinanceManager, RoleAdmin:
		return true
	}
	return false
}

// EntryKind classifies financial ledger entries by movement type.
type EntryKind string

const (
	EntryKindOrderCOGS  EntryKind = "order_cogs"
	EntryKindReceipt    EntryKind = "receipt"
	EntryKindTransfer   EntryKind = "transfer"
	EntryKindAdjustment EntryKind = "adjustment"
)

// AuditKind classifies audit trail entries.
type AuditKind string

const (
	AuditKindStockUpdate AuditKind = "stock_update"
	AuditKindOrder       AuditKind = "order"
	AuditKindReceipt     AuditKind = "receipt"
	AuditKindTransfer    AuditKind = "transfer"
	AuditKindAdjustment  AuditKind = "adjustment"
	AuditKindAckAlert    AuditKind = "ack_alert"
)

// Product is a catalog item. Immutable once created.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Category     string    `json:"category"`
	UOM          string    `json:"uom"`
	Description  string    `json:"description,omitempty"`
	ReorderPoint int64     `json:"reorder_point,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Location is a warehouse or store. The set is fixed at bootstrap.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InventoryRecord holds the on-hand quantity for one (product, location) pair.
type InventoryRecord struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	LocationID string    `json:"location_id"`
	Quantity   int64     `json:"quantity"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AuditEntry is an append-only record of a quantity-affecting action.
type AuditEntry struct {
	ID      string    `json:"id"`
	Kind    AuditKind `json:"kind"`
	User    string    `json:"user"`
	At      time.Time `json:"at"`
	Details string    `json:"details"`
}

// OrderLine is one requested product/quantity pair within an Order.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// Order records a fulfilled sales order.
type Order struct {
	ID          string      `json:"id"`
	Destination string      `json:"destination"`
	SourceID    string      `json:"source_id"`
	Lines       []OrderLine `json:"lines"`
	CreatedBy   string      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
}

// GoodsReceipt records inbound stock against a purchase order reference.
type GoodsReceipt struct {
	ID         string    `json:"id"`
	PONumber   string    `json:"po_number"`
	ProductID  string    `json:"product_id"`
	Quantity   int64     `json:"quantity"`
	LocationID string    `json:"location_id"`
	ReceivedAt time.Time `json:"received_at"`
}

// Transfer records a stock move between two locations.
type Transfer struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"source_id"`
	DestID    string    `json:"dest_id"`
	ProductID string    `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Adjustment records a manual quantity correction. ApprovedBy is set only
// when the delta is an increase.
type Adjustment struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	LocationID string    `json:"location_id"`
	Quantity   int64     `json:"quantity"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
	ApprovedBy string    `json:"approved_by,omitempty"`
}

// Alert is a low-stock notification. Acknowledgment is terminal.
type Alert struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	LocationID     string    `json:"location_id"`
	Quantity       int64     `json:"quantity"`
	Threshold      int64     `json:"threshold"`
	CreatedAt      time.Time `json:"created_at"`
	Acknowledged   bool      `json:"acknowledged"`
	AcknowledgedBy string    `json:"acknowledged_by,omitempty"`
}

// FinancialEntry is an append-only value-impact record. TotalValue is always
// UnitValue * Quantity, signed with the movement direction.
type FinancialEntry struct {
	ID         string    `json:"id"`
	Kind       EntryKind `json:"kind"`
	ProductID  string    `json:"product_id"`
	UnitValue  float64   `json:"unit_value"`
	Quantity   int64     `json:"quantity"`
	TotalValue float64   `json:"total_value"`
	At         time.Time `json:"at"`
}

// Snapshot is the complete entity store. The engine is its only writer.
type Snapshot struct {
	Products    []Product         `json:"products"`
	Locations   []Location        `json:"locations"`
	Inventory   []InventoryRecord `json:"inventory"`
	Orders      []Order           `json:"orders"`
	Receipts    []GoodsReceipt    `json:"receipts"`
	Transfers   []Transfer        `json:"transfers"`
	Adjustments []Adjustment      `json:"adjustments"`
	Alerts      []Alert           `json:"alerts"`
	Audit       []AuditEntry      `json:"audit"`
	Finance     []FinancialEntry  `json:"finance"`
}

// Clone returns an independent deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Products:    append([]Product(nil), s.Products...),
		Locations:   append([]Location(nil), s.Locations...),
		Inventory:   append([]InventoryRecord(nil), s.Inventory...),
		Orders:      append([]Order(nil), s.Orders...),
		Receipts:    append([]GoodsReceipt(nil), s.Receipts...),
		Transfers:   append([]Transfer(nil), s.Transfers...),
		Adjustments: append([]Adjustment(nil), s.Adjustments...),
		Alerts:      append([]Alert(nil), s.Alerts...),
		Audit:       append([]AuditEntry(nil), s.Audit...),
		Finance:     append([]FinancialEntry(nil), s.Finance...),
	}
	for i := range out.Orders {
		out.Orders[i].Lines = append([]OrderLine(nil), out.Orders[i].Lines...)
	}
	return out
}

// OnHand returns the current quantity for the pair, zero when no record exists.
func (s Snapshot) OnHand(productID, locationID string) int64 {
	for _, rec := range s.Inventory {
		if rec.ProductID == productID && rec.LocationID == locationID {
			return rec.Quantity
		}
	}
	return 0
}

// ProductByID looks up a product in the snapshot.
func (s Snapshot) ProductByID(id string) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// LocationByID looks up a location in the snapshot.
func (s Snapshot) LocationByID(id string) (Location, bool) {
	for _, l := range s.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}

// ErrValidation indicates a required field is missing or malformed.
var ErrValidation = errors.New("ledger: validation failed")

// ErrDuplicateSKU indicates a case-insensitive SKU collision.
var ErrDuplicateSKU = errors.New("ledger: sku already exists")

// ErrInsufficientStock indicates a deduction exceeds on-hand quantity.
var ErrInsufficientStock = errors.New("ledger: insufficient stock")

// ErrNegativeStock indicates a delta would drive quantity below zero.
var ErrNegativeStock = errors.New("ledger: negative stock not allowed")

// ErrInvalidTransfer indicates source and destination are the same location.
var ErrInvalidTransfer = errors.New("ledger: source and destination must differ")

// ErrUnauthorized indicates a positive adjustment by a non-admin role.
var ErrUnauthorized = errors.New("ledger: positive adjustments require admin")

// ErrProductNotFound indicates an unknown product reference.
var ErrProductNotFound = errors.New("ledger: product not found")

// ErrLocationNotFound indicates an unknown location reference.
var ErrLocationNotFound = errors.New("ledger: location not found")

// ErrAlertNotFound indicates an unknown alert reference.
var ErrAlertNotFound = errors.New("ledger: alert not found")
