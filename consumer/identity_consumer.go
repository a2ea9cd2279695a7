package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	awspkg "github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/pkg/aws"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/services"
	"go.uber.org/zap"
)

const (
	EventSignedIn  = "user.signed_in"
	EventSignedOut = "user.signed_out"
)

// SessionDirectory is the part of services.SessionRegistry the consumer drives.
type SessionDirectory interface {
	Lookup(deviceID string) (*services.Session, bool)
	SignIn(ctx context.Context, deviceID, userID string) (*services.Session, error)
	SignOut(ctx context.Context, deviceID string) error
	SignOutUser(ctx context.Context, userID string) error
}

// IdentityConsumer applies auth-service sign-in and sign-out events to the
// cart sessions of this instance. Devices without a live session are skipped;
// they pick up the identity on their next login call.
type IdentityConsumer struct {
	sessions SessionDirectory
	metrics  *awspkg.MetricsClient
	logger   *zap.Logger
}

func NewIdentityConsumer(sessions SessionDirectory, metrics *awspkg.MetricsClient, logger *zap.Logger) *IdentityConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityConsumer{sessions: sessions, metrics: metrics, logger: logger}
}

// Run polls source until ctx is cancelled.
func (c *IdentityConsumer) Run(ctx context.Context, source *awspkg.SQSConsumer) error {
	return source.StartPolling(ctx, c.Handle)
}

// snsEnvelope unwraps the SNS -> SQS message wrapper
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// Handle processes one SQS body. Unparseable messages return nil so they are
// deleted; dispatch failures are returned so SQS redelivers them.
func (c *IdentityConsumer) Handle(ctx context.Context, body string) error {
	payload, err := decode(body)
	if err != nil {
		c.logger.Error("Dropping unparseable identity message", zap.Error(err))
		return nil
	}

	if err := c.dispatch(ctx, payload); err != nil {
		c.logger.Error("Failed to apply identity event",
			zap.String("event_type", payload.EventType),
			zap.String("user_id", payload.UserID),
			zap.String("device_id", payload.DeviceID),
			zap.Error(err),
		)
		return err
	}
	_ = c.metrics.RecordCount(ctx, awspkg.MetricIdentityMessages, map[string]string{"EventType": payload.EventType})
	return nil
}

func (c *IdentityConsumer) dispatch(ctx context.Context, ev *models.IdentityEvent) error {
	switch ev.EventType {
	case EventSignedIn:
		if ev.UserID == "" || ev.DeviceID == "" {
			c.logger.Warn("Sign-in event without user or device", zap.String("user_id", ev.UserID), zap.String("device_id", ev.DeviceID))
			return nil
		}
		if _, ok := c.sessions.Lookup(ev.DeviceID); !ok {
			c.logger.Debug("No live session for device", zap.String("device_id", ev.DeviceID))
			return nil
		}
		_, err := c.sessions.SignIn(ctx, ev.DeviceID, ev.UserID)
		return err
	case EventSignedOut:
		if ev.DeviceID != "" {
			return c.sessions.SignOut(ctx, ev.DeviceID)
		}
		if ev.UserID != "" {
			return c.sessions.SignOutUser(ctx, ev.UserID)
		}
		return nil
	default:
		c.logger.Debug("Ignoring identity event", zap.String("event_type", ev.EventType))
		return nil
	}
}

// decode accepts both SNS-wrapped and raw payloads.
func decode(body string) (*models.IdentityEvent, error) {
	var envelope snsEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}
	raw := body
	if envelope.Type == "Notification" && envelope.Message != "" {
		raw = envelope.Message
	}

	var payload models.IdentityEvent
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal identity event: %w", err)
	}
	if payload.EventType == "" {
		return nil, fmt.Errorf("identity event has no event_type")
	}
	return &payload, nil
}
