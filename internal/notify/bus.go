package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Topic is the bus topic every envelope is published on.
const Topic = "watcher.notifications"

const (
	metadataKind = "kind"
	outputBuffer = 64
)

// Bus fans envelopes out to any number of in-process subscribers.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus builds an in-memory bus. Messages published while nobody listens are dropped.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: outputBuffer},
			watermill.NewSlogLogger(logger),
		),
	}
}

// Notify publishes env on Topic.
func (b *Bus) Notify(env Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	msg := message.NewMessage(env.ID, raw)
	msg.Metadata.Set(metadataKind, env.Kind)
	return b.pubsub.Publish(Topic, msg)
}

// Subscribe returns a channel of decoded envelopes that is closed when ctx ends
// or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Envelope, error) {
	messages, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", Topic, err)
	}
	out := make(chan Envelope, outputBuffer)
	go func() {
		defer close(out)
		for msg := range messages {
			msg.Ack()
			var env Envelope
			if err := json.Unmarshal(msg.Payload, &env); err != nil {
				continue
			}
			select {
			case out <- env:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close stops every subscription.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
