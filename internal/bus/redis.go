package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/codecollab/codecollab-server/internal/core"
)

// Message is the envelope carried on the redis channel. Origin lets an
// instance skip its own publications.
type Message struct {
	Origin string          `json:"origin"`
	RoomID string          `json:"roomId"`
	Event  json.RawMessage `json:"event"`
}

// Redis fans room events out across server instances over redis
// pub/sub. It implements core.Bus.
type Redis struct {
	rdb    *redis.Client
	origin string
	log    zerolog.Logger
}

// NewRedis connects to redis and verifies connectivity.
func NewRedis(ctx context.Context, addr string, db int, logger *zerolog.Logger) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}

	return &Redis{
		rdb:    rdb,
		origin: uuid.NewString(),
		log:    log,
	}, nil
}

// Publish sends a room event to the other instances.
func (b *Redis) Publish(ctx context.Context, roomID string, ev *core.Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg, err := json.Marshal(Message{
		Origin: b.origin,
		RoomID: roomID,
		Event:  raw,
	})
	if err != nil {
		return fmt.Errorf("marshal bus message: %w", err)
	}
	return b.rdb.Publish(ctx, channel(roomID), msg).Err()
}

// Subscribe listens to all room channels and invokes fn for every
// message originating from another instance. Blocks until the context
// is cancelled.
func (b *Redis) Subscribe(ctx context.Context, fn func(roomID string, ev *core.Event)) {
	pubsub := b.rdb.PSubscribe(ctx, channel("*"))
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			_ = pubsub.Close()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var m Message
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				b.log.Warn().Err(err).Msg("malformed bus message")
				continue
			}
			if m.Origin == b.origin || m.RoomID == "" {
				continue
			}
			var ev core.Event
			if err := json.Unmarshal(m.Event, &ev); err != nil {
				b.log.Warn().Err(err).Str("room", m.RoomID).Msg("malformed bus event")
				continue
			}
			fn(m.RoomID, &ev)
		}
	}
}

// Close shuts down the redis connection.
func (b *Redis) Close() {
	_ = b.rdb.Close()
}

// channel namespacing for room pub/sub.
func channel(roomID string) string { return "room:" + roomID }
