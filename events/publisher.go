package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	awspkg "github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/pkg/aws"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/services"
	"go.uber.org/zap"
)

// Publisher sends cart and checkout events to SNS. Cart events are best
// effort; a checkout that cannot be published is an error.
type Publisher struct {
	sns           awspkg.SNSPublisher
	cartTopic     string
	checkoutTopic string
	metrics       *awspkg.MetricsClient
	logger        *zap.Logger
}

func NewPublisher(sns awspkg.SNSPublisher, cartTopic, checkoutTopic string, metrics *awspkg.MetricsClient, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		sns:           sns,
		cartTopic:     cartTopic,
		checkoutTopic: checkoutTopic,
		metrics:       metrics,
		logger:        logger,
	}
}

func (p *Publisher) CartMerged(ctx context.Context, ev models.CartMergedEvent) {
	_ = p.metrics.RecordCount(ctx, awspkg.MetricCartMerges, nil)
	if ev.FailedLines > 0 {
		_ = p.metrics.PutMetric(ctx, awspkg.MetricCartMergeFailed, float64(ev.FailedLines), "Count", nil)
	}
	p.publishBestEffort(ctx, ev.EventType, ev.UserID, ev)
}

func (p *Publisher) CartCleared(ctx context.Context, ev models.CartClearedEvent) {
	p.publishBestEffort(ctx, ev.EventType, ev.UserID, ev)
}

func (p *Publisher) publishBestEffort(ctx context.Context, eventType, userID string, payload any) {
	if p.sns == nil || p.cartTopic == "" {
		p.logger.Debug("Cart events topic not configured, skipping", zap.String("event", eventType))
		return
	}
	if err := p.publish(ctx, p.cartTopic, eventType, payload); err != nil {
		p.logger.Warn("Failed to publish cart event",
			zap.String("event", eventType),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

func (p *Publisher) CheckoutRequested(ctx context.Context, ev models.CheckoutEvent) error {
	if p.sns == nil || p.checkoutTopic == "" {
		return services.ErrCheckoutUnavailable
	}
	if err := p.publish(ctx, p.checkoutTopic, ev.Event, ev); err != nil {
		return fmt.Errorf("publish checkout: %w", err)
	}
	_ = p.metrics.RecordCount(ctx, awspkg.MetricCartCheckouts, nil)
	return nil
}

func (p *Publisher) publish(ctx context.Context, topic, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}
	return p.sns.Publish(ctx, topic, body, map[string]string{"event_type": eventType})
}
