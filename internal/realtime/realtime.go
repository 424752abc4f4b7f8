package realtime

import (
	"context"
	"encoding/json"
	"time"

	"sales_arena/internal/domain"
	"sales_arena/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// Channel is the redis pub/sub channel every instance listens on.
const Channel = "sales_arena:events"

// Publisher pushes events to connected clients.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// Sink receives events on this instance, usually the websocket hub.
type Sink interface {
	Deliver(ev domain.Event)
}

// LocalBroker hands events straight to the local sink.
type LocalBroker struct {
	sink Sink
}

func NewLocalBroker(sink Sink) *LocalBroker {
	return &LocalBroker{sink: sink}
}

func (b *LocalBroker) Publish(_ context.Context, ev domain.Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	b.sink.Deliver(ev)
	return nil
}

// RedisBroker fans events out through redis so every instance delivers to its own clients.
type RedisBroker struct {
	rdb  *redis.Client
	sink Sink
}

func NewRedisBroker(rdb *redis.Client, sink Sink) *RedisBroker {
	return &RedisBroker{rdb: rdb, sink: sink}
}

func (b *RedisBroker) Publish(ctx context.Context, ev domain.Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, Channel, data).Err()
}

// Run subscribes to Channel and delivers until ctx is cancelled.
func (b *RedisBroker) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	logger.Info("realtime subscriber started", "channel", Channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn("dropping malformed event", "error", err)
				continue
			}
			b.sink.Deliver(ev)
		}
	}
}

// Nop discards events. Used where no clients can be connected, such as CLI tools.
type Nop struct{}

func (Nop) Publish(context.Context, domain.Event) error { return nil }
