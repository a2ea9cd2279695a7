package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CheckoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	Notes           string                 `json:"notes"`
}

type CheckoutService struct {
	publisher CheckoutPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewCheckoutService(publisher CheckoutPublisher, logger *zap.Logger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{publisher: publisher, logger: logger, now: time.Now}
}

// Checkout hands the signed-in cart to the order pipeline and takes the
// checked-out lines off it. The cart is left untouched when publishing fails.
func (s *CheckoutService) Checkout(ctx context.Context, cart *CartService, req CheckoutRequest) (*models.CheckoutEvent, error) {
	if cart.Mode() != ModeAuthenticated {
		return nil, ErrNotAuthenticated
	}
	lines := cart.Items()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if !addressComplete(req.ShippingAddress) {
		return nil, ErrInvalidAddress
	}

	total := decimal.Zero
	items := make([]models.CheckoutItem, 0, len(lines))
	for _, l := range lines {
		price := lineAmount(l.Product, 1)
		items = append(items, models.CheckoutItem{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			PriceAtTime: price.InexactFloat64(),
		})
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	event := models.CheckoutEvent{
		Event:           "checkout.requested",
		CheckoutID:      uuid.NewString(),
		UserID:          cart.OwnerID(),
		Items:           items,
		TotalAmount:     total.Round(2).InexactFloat64(),
		ShippingAddress: req.ShippingAddress,
		Notes:           strings.TrimSpace(req.Notes),
		Status:          "pending",
		Timestamp:       s.now().UTC(),
	}

	if err := s.publisher.CheckoutRequested(ctx, event); err != nil {
		s.logger.Error("Failed to publish checkout",
			zap.String("user_id", event.UserID),
			zap.String("checkout_id", event.CheckoutID),
			zap.Error(err),
		)
		return nil, err
	}
	s.logger.Info("Checkout requested",
		zap.String("user_id", event.UserID),
		zap.String("checkout_id", event.CheckoutID),
		zap.Int("items", len(items)),
		zap.Float64("total", event.TotalAmount),
	)

	if err := cart.RemoveCheckedOut(ctx, lines); err != nil {
		// The order is already on its way; a stale cart is the lesser problem.
		s.logger.Warn("Cart not cleared after checkout", zap.String("user_id", event.UserID), zap.Error(err))
	}
	return &event, nil
}

func addressComplete(a models.ShippingAddress) bool {
	for _, v := range []string{a.FullName, a.Address, a.City, a.State, a.ZipCode, a.Country} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
