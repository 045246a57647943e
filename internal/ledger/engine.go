package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Gateway persists the whole snapshot as an opaque blob. The engine
// overwrites the blob wholesale after every transition; there are no partial
// writes.
type Gateway interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, bool, error)
}

// Recorder receives engine-level metric events. All methods must be safe for
// concurrent use.
type Recorder interface {
	IntentApplied(kind string)
	IntentRejected(kind string)
	AlertRaised()
}

// DefaultSnapshotKey is the blob key used when Config.Key is empty.
const DefaultSnapshotKey = "inventra:snapshot"

// Config groups the engine dependencies.
type Config struct {
	Gateway Gateway
	Key     string
	Costing Costing
	Logger  *slog.Logger
	Metrics Recorder
	// SeedLocations is the fixed location set created when no persisted
	// snapshot exists. Defaults to the standard two-site layout.
	SeedLocations []string
	Now           func() time.Time
	NewID         func() string
}

// Engine owns the authoritative snapshot. Every mutation flows through
// Dispatch, which serializes writers, applies the intent to a clone and only
// publishes the clone after the durability write succeeds. An error at any
// point leaves the published snapshot untouched, so multi-step operations
// (order lines, transfer legs) are all-or-nothing.
type Engine struct {
	mu      sync.RWMutex
	snap    Snapshot
	gateway Gateway
	key     string
	costing Costing
	logger  *slog.Logger
	metrics Recorder
	now     func() time.Time
	newID   func() string
}

// New loads the persisted snapshot through the gateway, seeding the fixed
// location set on first boot.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("ledger: gateway required")
	}
	e := &Engine{
		gateway: cfg.Gateway,
		key:     cfg.Key,
		costing: cfg.Costing,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		now:     cfg.Now,
		newID:   cfg.NewID,
	}
	if e.key == "" {
		e.key = DefaultSnapshotKey
	}
	if e.costing == nil {
		e.costing = FixedCosting(1)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}

	data, ok, err := e.gateway.Load(ctx, e.key)
	if err != nil {
		return nil, fmt.Errorf("ledger: load snapshot: %w", err)
	}
	if !ok {
		seeds := cfg.SeedLocations
		if len(seeds) == 0 {
			seeds = []string{"Main Warehouse", "City Store"}
		}
		for _, name := range seeds {
			e.snap.Locations = append(e.snap.Locations, Location{ID: e.newID(), Name: name})
		}
		if err := e.persist(ctx, e.snap); err != nil {
			return nil, fmt.Errorf("ledger: seed snapshot: %w", err)
		}
		e.logger.Info("seeded empty snapshot", slog.Int("locations", len(seeds)))
		return e, nil
	}
	if err := json.Unmarshal(data, &e.snap); err != nil {
		return nil, fmt.Errorf("ledger: decode snapshot: %w", err)
	}
	e.logger.Info("loaded snapshot",
		slog.Int("products", len(e.snap.Products)),
		slog.Int("inventory_records", len(e.snap.Inventory)))
	return e, nil
}

// Dispatch applies one intent and returns the resulting snapshot. Recognized
// intents either fully apply (and are durable on return) or fail without any
// visible state change. Unrecognized intents return the snapshot unchanged.
func (e *Engine) Dispatch(ctx context.Context, intent Intent) (Snapshot, error) {
	snap, _, err := e.exec(ctx, intent)
	return snap, err
}

func (e *Engine) exec(ctx context.Context, intent Intent) (Snapshot, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.snap.Clone()
	id, recognized, err := e.apply(&next, intent)
	if err != nil {
		if e.metrics != nil {
			e.metrics.IntentRejected(intent.Kind())
		}
		e.logger.Warn("intent rejected", slog.String("kind", intent.Kind()), slog.Any("error", err))
		return e.snap.Clone(), "", err
	}
	if !recognized {
		e.logger.Warn("unrecognized intent", slog.String("kind", intent.Kind()))
		return e.snap.Clone(), "", nil
	}
	if err := e.persist(ctx, next); err != nil {
		if e.metrics != nil {
			e.metrics.IntentRejected(intent.Kind())
		}
		return e.snap.Clone(), "", fmt.Errorf("ledger: persist snapshot: %w", err)
	}
	raised := len(next.Alerts) - len(e.snap.Alerts)
	e.snap = next
	if e.metrics != nil {
		e.metrics.IntentApplied(intent.Kind())
		for i := 0; i < raised; i++ {
			e.metrics.AlertRaised()
		}
	}
	e.logger.Info("intent applied", slog.String("kind", intent.Kind()))
	return next.Clone(), id, nil
}

// apply mutates next in place. It must not touch e.snap.
func (e *Engine) apply(next *Snapshot, intent Intent) (string, bool, error) {
	switch in := intent.(type) {
	case CreateProductIntent:
		id, err := e.applyCreateProduct(next, in)
		return id, true, err
	case UpdateStockIntent:
		id, err := e.applyUpdateStock(next, in)
		return id, true, err
	case SubmitOrderIntent:
		id, err := e.applySubmitOrder(next, in)
		return id, true, err
	case ReceiveGoodsIntent:
		id, err := e.applyReceiveGoods(next, in)
		return id, true, err
	case SubmitTransferIntent:
		id, err := e.applySubmitTransfer(next, in)
		return id, true, err
	case SubmitAdjustmentIntent:
		id, err := e.applySubmitAdjustment(next, in)
		return id, true, err
	case AcknowledgeAlertIntent:
		id, err := e.applyAcknowledgeAlert(next, in)
		return id, true, err
	default:
		return "", false, nil
	}
}

func (e *Engine) persist(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("ledger: encode snapshot: %w", err)
	}
	return e.gateway.Save(ctx, e.key, data)
}

// Reload replaces the in-memory snapshot with the persisted blob. Read-only
// consumers such as the report worker call it to pick up writes made by the
// serving process. A missing blob leaves the current snapshot in place.
func (e *Engine) Reload(ctx context.Context) error {
	data, ok, err := e.gateway.Load(ctx, e.key)
	if err != nil {
		return fmt.Errorf("ledger: reload snapshot: %w", err)
	}
	if !ok {
		return nil
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("ledger: decode snapshot: %w", err)
	}
	e.mu.Lock()
	e.snap = snap
	e.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the last published state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap.Clone()
}

// CreateProduct dispatches a CreateProductIntent and returns the new product.
func (e *Engine) CreateProduct(ctx context.Context, in CreateProductIntent) (Product, error) {
	snap, id, err := e.exec(ctx, in)
	if err != nil {
		return Product{}, err
	}
	p, _ := snap.ProductByID(id)
	return p, nil
}

// UpdateStock dispatches an UpdateStockIntent and returns the new on-hand
// quantity.
func (e *Engine) UpdateStock(ctx context.Context, in UpdateStockIntent) (int64, error) {
	snap, _, err := e.exec(ctx, in)
	if err != nil {
		return 0, err
	}
	return snap.OnHand(in.ProductID, in.LocationID), nil
}

// SubmitOrder dispatches a SubmitOrderIntent and returns the recorded order.
func (e *Engine) SubmitOrder(ctx context.Context, in SubmitOrderIntent) (Order, error) {
	snap, id, err := e.exec(ctx, in)
	if err != nil {
		return Order{}, err
	}
	for _, o := range snap.Orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, fmt.Errorf("ledger: order %s missing after dispatch", id)
}

// ReceiveGoods dispatches a ReceiveGoodsIntent and returns the receipt.
func (e *Engine) ReceiveGoods(ctx context.Context, in ReceiveGoodsIntent) (GoodsReceipt, error) {
	snap, id, err := e.exec(ctx, in)
	if err != nil {
		return GoodsReceipt{}, err
	}
	for _, r := range snap.Receipts {
		if r.ID == id {
			return r, nil
		}
	}
	return GoodsReceipt{}, fmt.Errorf("ledger: receipt %s missing after dispatch", id)
}

// SubmitTransfer dispatches a SubmitTransferIntent and returns the transfer.
func (e *Engine) SubmitTransfer(ctx context.Context, in SubmitTransferIntent) (Transfer, error) {
	snap, id, err := e.exec(ctx, in)
	if err != nil {
		return Transfer{}, err
	}
	for _, t := range snap.Transfers {
		if t.ID == id {
			return t, nil
		}
	}
	return Transfer{}, fmt.Errorf("ledger: transfer %s missing after dispatch", id)
}

// SubmitAdjustment dispatches a SubmitAdjustmentIntent and returns the
// adjustment record.
func (e *Engine) SubmitAdjustment(ctx context.Context, in SubmitAdjustmentIntent) (Adjustment, error) {
	snap, id, err := e.exec(ctx, in)
	if err != nil {
		return Adjustment{}, err
	}
	for _, a := range snap.Adjustments {
		if a.ID == id {
			return a, nil
		}
	}
	return Adjustment{}, fmt.Errorf("ledger: adjustment %s missing after dispatch", id)
}

// AcknowledgeAlert dispatches an AcknowledgeAlertIntent and returns the alert
// in its final state.
func (e *Engine) AcknowledgeAlert(ctx context.Context, in AcknowledgeAlertIntent) (Alert, error) {
	snap, id, err := e.exec(ctx, in)
	if err != nil {
		return Alert{}, err
	}
	for _, a := range snap.Alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return Alert{}, fmt.Errorf("ledger: alert %s missing after dispatch", id)
}
