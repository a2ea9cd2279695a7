package services

import (
	"context"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/identity"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
)

// ProductLookup reads the product catalog. GetByID returns (nil, nil) when the
// product does not exist.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
}

// CartStore is the server-side cart table, keyed by (owner, product).
type CartStore interface {
	// FetchByOwner returns every line of the owner joined with current product data.
	FetchByOwner(ctx context.Context, ownerID string) ([]models.CartLine, error)
	// Upsert writes the line, replacing the quantity of an existing one.
	Upsert(ctx context.Context, ownerID, productID string, quantity int) error
	// Increment writes the line, adding to the quantity of an existing one.
	Increment(ctx context.Context, ownerID, productID string, quantity int) error
	UpdateQuantity(ctx context.Context, ownerID, productID string, quantity int) error
	DeleteLine(ctx context.Context, ownerID, productID string) error
	DeleteAllByOwner(ctx context.Context, ownerID string) error
}

// LocalDurableStore is key-value storage scoped to a single shopper device.
type LocalDurableStore interface {
	// Get reports ok=false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// IdentitySource reports the signed-in user of a device and streams changes.
type IdentitySource interface {
	CurrentSession(ctx context.Context) (userID string, ok bool)
	Subscribe(fn identity.Listener) (unsubscribe func())
}

// Notifier receives user-visible confirmations and failures.
type Notifier interface {
	Notify(level models.NoticeLevel, message string)
}

// CartEvents publishes cart lifecycle events to other services.
type CartEvents interface {
	CartMerged(ctx context.Context, event models.CartMergedEvent)
	CartCleared(ctx context.Context, event models.CartClearedEvent)
}

// CheckoutPublisher hands a checkout over to the order pipeline.
type CheckoutPublisher interface {
	CheckoutRequested(ctx context.Context, event models.CheckoutEvent) error
}
