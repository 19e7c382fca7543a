package donations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

const defaultPublishTimeout = 10 * time.Second

// PubSubPublisher pushes donation-created events to the worker topic.
type PubSubPublisher struct {
	publisher *gcppubsub.Publisher
}

func NewPubSubPublisher(publisher *gcppubsub.Publisher) (*PubSubPublisher, error) {
	if publisher == nil {
		return nil, fmt.Errorf("pubsub publisher required")
	}
	return &PubSubPublisher{publisher: publisher}, nil
}

func (p *PubSubPublisher) PublishDonationCreated(ctx context.Context, event CreatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode donation event: %w", err)
	}

	msg := &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type":  "donation.created",
			"donation_id": event.DonationID.String(),
			"created_at":  event.CreatedAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := p.publisher.Publish(publishCtx, msg)
	if _, err := result.Get(publishCtx); err != nil {
		return fmt.Errorf("publish donation event: %w", err)
	}
	return nil
}
