// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis pub/sub channel action records are published on.
const DefaultChannel = "klondike:actions"

// ActionRecord is one entry of a game's action history as sent to the
// historian.
type ActionRecord struct {
	GameID        uuid.UUID              `json:"gameId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"` // Unix milliseconds.
}

// Connect opens a Redis client for addr and verifies it with a PING.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// Publisher publishes action records to a Redis channel.
type Publisher struct {
	rdb     *redis.Client
	channel string
}

// NewPublisher wraps rdb. An empty channel selects DefaultChannel.
func NewPublisher(rdb *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{rdb: rdb, channel: channel}
}

// Channel returns the channel records are published on.
func (p *Publisher) Channel() string { return p.channel }

// PublishAction encodes rec as JSON and publishes it.
func (p *Publisher) PublishAction(ctx context.Context, rec ActionRecord) error {
	data, err := EncodeAction(rec)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish action %d of game %s: %w", rec.ActionIndex, rec.GameID, err)
	}
	return nil
}

// Subscribe streams decoded records from the channel until ctx is done. Messages
// that fail to decode are passed to onErr (if set) and skipped.
func (p *Publisher) Subscribe(ctx context.Context, onErr func(error)) <-chan ActionRecord {
	out := make(chan ActionRecord)
	sub := p.rdb.Subscribe(ctx, p.channel)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				rec, err := DecodeAction([]byte(msg.Payload))
				if err != nil {
					if onErr != nil {
						onErr(err)
					}
					continue
				}
				select {
				case out <- rec:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Close closes the underlying client.
func (p *Publisher) Close() error { return p.rdb.Close() }

// EncodeAction marshals rec, filling a nil payload with an empty object.
func EncodeAction(rec ActionRecord) ([]byte, error) {
	if rec.ActionPayload == nil {
		rec.ActionPayload = map[string]interface{}{}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode action record: %w", err)
	}
	return data, nil
}

// DecodeAction parses a published record.
func DecodeAction(data []byte) (ActionRecord, error) {
	var rec ActionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return ActionRecord{}, fmt.Errorf("decode action record: %w", err)
	}
	if rec.GameID == uuid.Nil || rec.ActionType == "" {
		return ActionRecord{}, fmt.Errorf("decode action record: missing gameId or actionType")
	}
	return rec, nil
}
