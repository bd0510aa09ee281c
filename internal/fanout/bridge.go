package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/oggyb/spark-core/internal/cache"
)

// envelope tags events with the instance that published them so the
// publisher does not deliver its own events twice.
type envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// RedisBridge relays hub events between service instances over a Redis
// pub/sub channel.
type RedisBridge struct {
	hub     *Hub
	cache   *cache.RedisCache
	channel string
	origin  string
	log     *slog.Logger
	ready   chan struct{}
}

// NewRedisBridge creates a bridge and attaches it to hub as its remote publisher.
func NewRedisBridge(hub *Hub, rc *cache.RedisCache, channel string, log *slog.Logger) *RedisBridge {
	b := &RedisBridge{
		hub:     hub,
		cache:   rc,
		channel: channel,
		origin:  uuid.NewString(),
		log:     log.With("component", "fanout_bridge", "channel", channel),
		ready:   make(chan struct{}),
	}
	hub.SetRemote(b)
	return b
}

// Ready is closed once Run holds a confirmed subscription.
func (b *RedisBridge) Ready() <-chan struct{} { return b.ready }

// Publish implements Publisher.
func (b *RedisBridge) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(envelope{Origin: b.origin, Event: ev})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return b.cache.Publish(ctx, b.channel, payload)
}

// Run delivers remote events to local subscribers until ctx is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	ps, err := b.cache.Subscribe(ctx, b.channel)
	if err != nil {
		return err
	}
	defer ps.Close()

	close(b.ready)
	b.log.Info("fan-out bridge subscribed", "origin", b.origin)

	msgs := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("redis subscription on %s closed", b.channel)
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warn("dropping malformed event", "err", err)
				continue
			}
			if env.Origin == b.origin {
				continue
			}
			b.hub.Deliver(env.Event)
		}
	}
}
