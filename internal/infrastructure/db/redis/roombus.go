package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const roomChannelPrefix = "room:"

// RoomMessage is one event delivered to a room's subscribers.
type RoomMessage struct {
	Room    string
	Payload []byte
}

// RoomBus fans room events out through Redis pub/sub so every API instance
// sees every publish, wherever the websocket client happens to be connected.
// Delivery is best effort: Redis pub/sub keeps no backlog.
type RoomBus struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRoomBus(client *redis.Client, log zerolog.Logger) *RoomBus {
	return &RoomBus{client: client, log: log}
}

// Publish sends payload to every subscriber of room, across all instances.
func (b *RoomBus) Publish(ctx context.Context, room string, payload []byte) error {
	if err := b.client.Publish(ctx, roomChannelPrefix+room, payload).Err(); err != nil {
		return fmt.Errorf("publish to room %s: %w", room, err)
	}
	return nil
}

// Subscribe returns a channel of all room messages. The channel closes when
// ctx is cancelled.
func (b *RoomBus) Subscribe(ctx context.Context) <-chan RoomMessage {
	sub := b.client.PSubscribe(ctx, roomChannelPrefix+"*")
	out := make(chan RoomMessage, 64)

	go func() {
		defer close(out)
		defer func() {
			if err := sub.Close(); err != nil {
				b.log.Warn().Err(err).Msg("closing room subscription")
			}
		}()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				out <- RoomMessage{
					Room:    strings.TrimPrefix(msg.Channel, roomChannelPrefix),
					Payload: []byte(msg.Payload),
				}
			}
		}
	}()

	return out
}
