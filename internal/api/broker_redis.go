package api

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type EventBroker interface {
	Subscribe(topic string) chan SSEEvent
	Unsubscribe(topic string, ch chan SSEEvent)
	Publish(topic string, evt SSEEvent)
}

// RedisBroker implements EventBroker over Redis Pub/Sub so that SSE and
// WebSocket clients see events regardless of which replica served them.
//
// Each subscriber channel owns one *redis.PubSub. The reader goroutine is
// the only closer of the channel; Unsubscribe closes the PubSub, which ends
// the reader and releases the connection.
type RedisBroker struct {
	rdb *redis.Client

	mu      sync.Mutex
	pubsubs map[chan SSEEvent]*redis.PubSub
}

func NewRedisBroker() (*RedisBroker, error) {
	opt, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		return nil, err
	}
	return &RedisBroker{
		rdb:     redis.NewClient(opt),
		pubsubs: map[chan SSEEvent]*redis.PubSub{},
	}, nil
}

func (b *RedisBroker) Subscribe(topic string) chan SSEEvent {
	ch := make(chan SSEEvent, 16)
	ctx := context.Background()
	ps := b.rdb.Subscribe(ctx, b.chanName(topic))
	// initial consume to ensure subscription
	_, _ = ps.Receive(ctx)

	b.mu.Lock()
	b.pubsubs[ch] = ps
	b.mu.Unlock()

	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			var evt SSEEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
				select {
				case ch <- evt:
				default:
				}
			}
		}
	}()
	return ch
}

func (b *RedisBroker) Unsubscribe(topic string, ch chan SSEEvent) {
	b.mu.Lock()
	ps := b.pubsubs[ch]
	delete(b.pubsubs, ch)
	b.mu.Unlock()
	if ps != nil {
		// Closing the PubSub ends ps.Channel(); the reader goroutine then
		// closes ch. Nothing else may close it.
		_ = ps.Close()
	}
}

func (b *RedisBroker) Publish(topic string, evt SSEEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, _ := json.Marshal(evt)
	_ = b.rdb.Publish(ctx, b.chanName(topic), data).Err()
}

func (b *RedisBroker) chanName(topic string) string { return "fleetops:" + topic }
