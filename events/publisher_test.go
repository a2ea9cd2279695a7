package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	cartTopic     = "arn:aws:sns:us-east-1:000000000000:cart-events"
	checkoutTopic = "arn:aws:sns:us-east-1:000000000000:checkout-events"
)

// --- Mock SNS ---
type MockSNS struct {
	mock.Mock
}

func (m *MockSNS) Publish(ctx context.Context, topicArn string, message []byte, attrs map[string]string) error {
	args := m.Called(ctx, topicArn, message, attrs)
	return args.Error(0)
}

func TestPublisher_CheckoutRequested(t *testing.T) {
	ctx := context.Background()
	ev := models.CheckoutEvent{
		Event:       "checkout.requested",
		CheckoutID:  "chk-1",
		UserID:      "user-1",
		Items:       []models.CheckoutItem{{ProductID: "p1", Quantity: 2, PriceAtTime: 10}},
		TotalAmount: 20,
		Status:      "pending",
		Timestamp:   time.Now().UTC(),
	}

	t.Run("Publishes to the checkout topic", func(t *testing.T) {
		sns := new(MockSNS)
		sns.On("Publish", mock.Anything, checkoutTopic, mock.MatchedBy(func(body []byte) bool {
			var got models.CheckoutEvent
			return json.Unmarshal(body, &got) == nil && got.CheckoutID == "chk-1" && got.TotalAmount == 20
		}), map[string]string{"event_type": "checkout.requested"}).Return(nil).Once()
		p := NewPublisher(sns, cartTopic, checkoutTopic, nil, nil)

		require.NoError(t, p.CheckoutRequested(ctx, ev))
		sns.AssertExpectations(t)
	})

	t.Run("Publish failure is returned", func(t *testing.T) {
		sns := new(MockSNS)
		snsErr := errors.New("throttled")
		sns.On("Publish", mock.Anything, checkoutTopic, mock.Anything, mock.Anything).Return(snsErr).Once()
		p := NewPublisher(sns, cartTopic, checkoutTopic, nil, nil)

		assert.ErrorIs(t, p.CheckoutRequested(ctx, ev), snsErr)
	})

	t.Run("Unconfigured topic", func(t *testing.T) {
		p := NewPublisher(nil, "", "", nil, nil)
		assert.ErrorIs(t, p.CheckoutRequested(ctx, ev), services.ErrCheckoutUnavailable)
	})
}

func TestPublisher_CartEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("Merged and cleared go to the cart topic", func(t *testing.T) {
		sns := new(MockSNS)
		sns.On("Publish", mock.Anything, cartTopic, mock.Anything, map[string]string{"event_type": "cart.merged"}).Return(nil).Once()
		sns.On("Publish", mock.Anything, cartTopic, mock.Anything, map[string]string{"event_type": "cart.cleared"}).Return(nil).Once()
		p := NewPublisher(sns, cartTopic, checkoutTopic, nil, nil)

		p.CartMerged(ctx, models.CartMergedEvent{EventType: "cart.merged", UserID: "user-1", GuestLines: 2, MergedLines: 1, FailedLines: 1})
		p.CartCleared(ctx, models.CartClearedEvent{EventType: "cart.cleared", UserID: "user-1"})

		sns.AssertExpectations(t)
	})

	t.Run("Failures are swallowed", func(t *testing.T) {
		sns := new(MockSNS)
		sns.On("Publish", mock.Anything, cartTopic, mock.Anything, mock.Anything).Return(errors.New("down")).Once()
		p := NewPublisher(sns, cartTopic, checkoutTopic, nil, nil)

		assert.NotPanics(t, func() {
			p.CartCleared(ctx, models.CartClearedEvent{EventType: "cart.cleared", UserID: "user-1"})
		})
		sns.AssertExpectations(t)
	})

	t.Run("No topic skips publishing", func(t *testing.T) {
		sns := new(MockSNS)
		p := NewPublisher(sns, "", checkoutTopic, nil, nil)

		p.CartMerged(ctx, models.CartMergedEvent{EventType: "cart.merged", UserID: "user-1"})
		sns.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
