package services_test

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
)

var propertyCatalog = []*models.Product{
	newProduct("p0", "Case", 80, nil),
	newProduct("p1", "PSU", 120, price(99.99)),
	newProduct("p2", "SSD", 75.5, nil),
	newProduct("p3", "RAM", 64, nil),
	newProduct("p4", "Cooler", 35, price(29.95)),
}

// cartOp is one mutation packed into an int: kind, product and quantity.
type cartOp struct {
	kind    int // 0 add, 1 update, 2 remove
	product *models.Product
	qty     int
}

func decodeOp(v int) cartOp {
	return cartOp{
		kind:    v / 40,
		product: propertyCatalog[(v%40)/8],
		qty:     v%8 - 2,
	}
}

func applyOps(ctx context.Context, h *harness, ops []int) {
	for _, v := range ops {
		op := decodeOp(v)
		switch op.kind {
		case 0:
			_ = h.svc.AddItem(ctx, op.product, op.qty)
		case 1:
			_ = h.svc.UpdateQuantity(ctx, op.product.ID, op.qty)
		default:
			_ = h.svc.RemoveItem(ctx, op.product.ID)
		}
	}
}

// linesWellFormed checks one line per product, every quantity within
// [1, models.MaxLineQuantity] and the item count equal to the quantity sum.
func linesWellFormed(h *harness) bool {
	seen := make(map[string]bool)
	sum := 0
	for _, l := range h.svc.Items() {
		if seen[l.ProductID] || l.Quantity < 1 || l.Quantity > models.MaxLineQuantity {
			return false
		}
		seen[l.ProductID] = true
		sum += l.Quantity
	}
	return sum == h.svc.TotalItemCount()
}

// TestCartInvariants_Guest runs random mutation sequences against a guest cart.
func TestCartInvariants_Guest(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("guest cart lines stay unique and positive", prop.ForAll(
		func(ops []int) bool {
			ctx := context.Background()
			h := newHarness("", propertyCatalog...)
			if err := h.svc.Initialize(ctx); err != nil {
				return false
			}
			applyOps(ctx, h, ops)
			if !linesWellFormed(h) {
				return false
			}

			// The persisted cart reloads to the same quantities.
			reloaded := newHarness("", propertyCatalog...)
			reloaded.device = h.device
			reloaded.svc = newServiceFor(reloaded)
			if err := reloaded.svc.Initialize(ctx); err != nil {
				return false
			}
			return equalQuantities(quantities(h.svc.Items()), quantities(reloaded.svc.Items()))
		},
		gen.SliceOf(gen.IntRange(0, 119)),
	))

	properties.TestingRun(t)
}

// TestCartInvariants_Merge checks that sign-in leaves the user cart holding
// every priced guest line at its guest quantity.
func TestCartInvariants_Merge(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("merge overwrites user quantities with guest quantities", prop.ForAll(
		func(guestOps []int, userQty []int) bool {
			ctx := context.Background()
			h := newHarness("", propertyCatalog...)
			for i, q := range userQty {
				if i >= len(propertyCatalog) {
					break
				}
				if q > 0 {
					h.store.seed("user-1", propertyCatalog[i].ID, q)
				}
			}
			if err := h.svc.Initialize(ctx); err != nil {
				return false
			}
			applyOps(ctx, h, guestOps)
			guest := quantities(h.svc.Items())
			before := h.store.quantities("user-1")

			if err := h.source.SignIn(ctx, "user-1"); err != nil {
				return false
			}
			if h.device.has("guest_cart") || !linesWellFormed(h) {
				return false
			}

			want := before
			for id, q := range guest {
				want[id] = q
			}
			return equalQuantities(want, quantities(h.svc.Items()))
		},
		gen.SliceOf(gen.IntRange(0, 119)),
		gen.SliceOf(gen.IntRange(0, 4)),
	))

	properties.TestingRun(t)
}

func equalQuantities(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
