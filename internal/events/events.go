// Package events fans review lifecycle events out to Redis pub/sub and NATS.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sai-review-api/internal/models"
)

// Type names a lifecycle event.
type Type string

const (
	TypeSubmissionCreated  Type = "submission.created"
	TypeSubmissionClaimed  Type = "submission.claimed"
	TypeSubmissionReviewed Type = "submission.reviewed"
)

// Event is the payload published for each accepted workflow step.
type Event struct {
	Type         Type                    `json:"type"`
	SubmissionID string                  `json:"submission_id"`
	UserID       string                  `json:"user_id"`
	Status       models.SubmissionStatus `json:"status"`
	Actor        string                  `json:"actor,omitempty"`
	OccurredAt   time.Time               `json:"occurred_at"`
	Source       string                  `json:"source"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Bus publishes to a Redis channel and a NATS subject. Either transport may be nil.
type Bus struct {
	redis       *redis.Client
	channel     string
	nats        *nats.Conn
	natsSubject string
	nodeID      string
	logger      zerolog.Logger
}

// NewBus builds a bus on channel, e.g. "sai:reviews". The NATS subject is the
// channel with colons replaced by dots.
func NewBus(redisClient *redis.Client, natsConn *nats.Conn, channel string, logger zerolog.Logger) *Bus {
	return &Bus{
		redis:       redisClient,
		channel:     channel,
		nats:        natsConn,
		natsSubject: strings.ReplaceAll(channel, ":", "."),
		nodeID:      uuid.NewString(),
		logger:      logger.With().Str("component", "event_bus").Logger(),
	}
}

// NodeID identifies this process as the source of its events.
func (b *Bus) NodeID() string {
	return b.nodeID
}

// Publish sends event to every configured transport. All transports are
// attempted and their errors joined.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if b.channel == "" {
		return nil
	}
	if event.Source == "" {
		event.Source = b.nodeID
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if b.redis != nil {
		if err := b.redis.Publish(ctx, b.channel, payload).Err(); err != nil {
			errs = append(errs, err)
		}
	}
	if b.nats != nil {
		if err := b.nats.Publish(b.natsSubject, payload); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		b.logger.Warn().Err(err).Str("event", string(event.Type)).Str("submission_id", event.SubmissionID).Msg("failed to publish event")
		return err
	}
	return nil
}

// Subscribe delivers events from the Redis channel published by other nodes
// until ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, handle func(Event)) error {
	if b.redis == nil || b.channel == "" {
		return nil
	}

	pubsub := b.redis.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	go func() {
		defer func() { _ = pubsub.Close() }()
		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					b.logger.Error().Err(err).Msg("event subscription closed")
				}
				return
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn().Err(err).Msg("invalid event payload")
				continue
			}
			if event.Source == b.nodeID {
				continue
			}
			handle(event)
		}
	}()

	return nil
}

// Noop discards every event.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, Event) error { return nil }
