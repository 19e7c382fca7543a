package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/redis"
)

const (
	fanoutConsumerScope = "donation-fanout"
	processedTTL        = 24 * time.Hour
)

// Consumer receives donation-created events and runs the fan-out.
type Consumer struct {
	service      Service
	subscription *pubsub.Subscriber
	idempotency  redis.IdempotencyStore
	logg         *logger.Logger
}

// NewConsumer builds the fan-out consumer.
func NewConsumer(service Service, subscription *pubsub.Subscriber, idempotency redis.IdempotencyStore, logg *logger.Logger) (*Consumer, error) {
	if service == nil {
		return nil, fmt.Errorf("notify service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("donations subscription required")
	}
	if idempotency == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		service:      service,
		subscription: subscription,
		idempotency:  idempotency,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) bool {
	logCtx := c.logg.WithFields(ctx, map[string]any{"message_id": msg.ID})

	var event donations.CreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.logg.Error(logCtx, "failed to decode donation event", err)
		return true
	}
	logCtx = c.logg.WithDonationID(logCtx, event.DonationID.String())

	key := c.idempotency.IdempotencyKey(fanoutConsumerScope, event.DonationID.String())
	fresh, err := c.idempotency.SetNX(ctx, key, "1", processedTTL)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	if !fresh {
		c.logg.Info(logCtx, "donation already fanned out")
		return true
	}

	if err := c.service.Fanout(ctx, event); err != nil {
		// Partial failures are logged by the service; the event is still
		// acked so intact recipients are not double-notified.
		c.logg.Warn(logCtx, "fan-out finished with failures")
	}
	return true
}
