package services_test

import (
	"context"
	"testing"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var validAddress = models.ShippingAddress{
	FullName: "Nimal Perera",
	Address:  "12 Galle Road",
	City:     "Colombo",
	State:    "Western",
	ZipCode:  "00300",
	Country:  "LK",
}

func TestCheckoutService(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - publishes and clears the cart", func(t *testing.T) {
		h := newHarness("user-1", cpu, gpu)
		h.store.seed("user-1", "a", 1)
		h.store.seed("user-1", "b", 2)
		require.NoError(t, h.svc.Initialize(ctx))

		publisher := new(MockCheckoutPublisher)
		publisher.On("CheckoutRequested", mock.Anything, mock.MatchedBy(func(ev models.CheckoutEvent) bool {
			return ev.UserID == "user-1" && len(ev.Items) == 2 && ev.Status == "pending"
		})).Return(nil).Once()
		svc := services.NewCheckoutService(publisher, nil)

		ev, err := svc.Checkout(ctx, h.svc, services.CheckoutRequest{ShippingAddress: validAddress, Notes: "  ring twice "})

		require.NoError(t, err)
		assert.NotEmpty(t, ev.CheckoutID)
		assert.Equal(t, "checkout.requested", ev.Event)
		assert.InDelta(t, 210.0, ev.TotalAmount, 1e-9)
		assert.Equal(t, "ring twice", ev.Notes)
		assert.Equal(t, 55.0, ev.Items[1].PriceAtTime)
		assert.Empty(t, h.svc.Items())
		assert.Empty(t, h.store.quantities("user-1"))
		publisher.AssertExpectations(t)
	})

	t.Run("Guest cart requires sign-in", func(t *testing.T) {
		h := newHarness("", cpu)
		require.NoError(t, h.svc.Initialize(ctx))
		require.NoError(t, h.svc.AddItem(ctx, cpu, 1))
		publisher := new(MockCheckoutPublisher)

		_, err := services.NewCheckoutService(publisher, nil).Checkout(ctx, h.svc, services.CheckoutRequest{ShippingAddress: validAddress})

		assert.ErrorIs(t, err, services.ErrNotAuthenticated)
		publisher.AssertNotCalled(t, "CheckoutRequested", mock.Anything, mock.Anything)
	})

	t.Run("Empty cart", func(t *testing.T) {
		h := newHarness("user-1", cpu)
		require.NoError(t, h.svc.Initialize(ctx))

		_, err := services.NewCheckoutService(new(MockCheckoutPublisher), nil).Checkout(ctx, h.svc, services.CheckoutRequest{ShippingAddress: validAddress})
		assert.ErrorIs(t, err, services.ErrEmptyCart)
	})

	t.Run("Incomplete address", func(t *testing.T) {
		h := newHarness("user-1", cpu)
		h.store.seed("user-1", "a", 1)
		require.NoError(t, h.svc.Initialize(ctx))
		addr := validAddress
		addr.City = "   "

		_, err := services.NewCheckoutService(new(MockCheckoutPublisher), nil).Checkout(ctx, h.svc, services.CheckoutRequest{ShippingAddress: addr})
		assert.ErrorIs(t, err, services.ErrInvalidAddress)
	})

	t.Run("Publish failure keeps the cart", func(t *testing.T) {
		h := newHarness("user-1", cpu)
		h.store.seed("user-1", "a", 1)
		require.NoError(t, h.svc.Initialize(ctx))
		publisher := new(MockCheckoutPublisher)
		publisher.On("CheckoutRequested", mock.Anything, mock.Anything).Return(services.ErrCheckoutUnavailable).Once()

		_, err := services.NewCheckoutService(publisher, nil).Checkout(ctx, h.svc, services.CheckoutRequest{ShippingAddress: validAddress})

		assert.ErrorIs(t, err, services.ErrCheckoutUnavailable)
		assert.Len(t, h.svc.Items(), 1)
		assert.Equal(t, 0, h.store.count("DeleteLine"))
	})

	t.Run("Clear failure after publish still succeeds", func(t *testing.T) {
		h := newHarness("user-1", cpu)
		h.store.seed("user-1", "a", 1)
		require.NoError(t, h.svc.Initialize(ctx))
		h.store.failOn["DeleteLine"] = errStoreDown
		publisher := new(MockCheckoutPublisher)
		publisher.On("CheckoutRequested", mock.Anything, mock.Anything).Return(nil).Once()

		ev, err := services.NewCheckoutService(publisher, nil).Checkout(ctx, h.svc, services.CheckoutRequest{ShippingAddress: validAddress})

		require.NoError(t, err)
		assert.NotNil(t, ev)
	})

	t.Run("Lines added during checkout stay in the cart", func(t *testing.T) {
		h := newHarness("user-1", cpu, fans)
		h.store.seed("user-1", "a", 1)
		require.NoError(t, h.svc.Initialize(ctx))
		publisher := new(MockCheckoutPublisher)
		publisher.On("CheckoutRequested", mock.Anything, mock.MatchedBy(func(ev models.CheckoutEvent) bool {
			return len(ev.Items) == 1 && ev.Items[0].ProductID == "a"
		})).Run(func(mock.Arguments) {
			require.NoError(t, h.svc.AddItem(ctx, fans, 3))
		}).Return(nil).Once()

		_, err := services.NewCheckoutService(publisher, nil).Checkout(ctx, h.svc, services.CheckoutRequest{ShippingAddress: validAddress})

		require.NoError(t, err)
		assert.Equal(t, map[string]int{"c": 3}, h.store.quantities("user-1"))
		assert.Equal(t, map[string]int{"c": 3}, quantities(h.svc.Items()))
		assert.Equal(t, 0, h.store.count("DeleteAllByOwner"))
		publisher.AssertExpectations(t)
	})

	t.Run("A line grown during checkout keeps the extra quantity", func(t *testing.T) {
		h := newHarness("user-1", cpu)
		h.store.seed("user-1", "a", 1)
		require.NoError(t, h.svc.Initialize(ctx))
		publisher := new(MockCheckoutPublisher)
		publisher.On("CheckoutRequested", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			require.NoError(t, h.svc.AddItem(ctx, cpu, 2))
		}).Return(nil).Once()

		_, err := services.NewCheckoutService(publisher, nil).Checkout(ctx, h.svc, services.CheckoutRequest{ShippingAddress: validAddress})

		require.NoError(t, err)
		assert.Equal(t, map[string]int{"a": 2}, h.store.quantities("user-1"))
		assert.Equal(t, map[string]int{"a": 2}, quantities(h.svc.Items()))
	})
}
