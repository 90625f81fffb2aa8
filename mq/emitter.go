package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ijake-16/homebar-menu/rdx"

	"github.com/redis/go-redis/v9"
)

// Channel carrying menu change notifications.
const menuEvents = "menu-events"

const publishTimeout = 5 * time.Second

// Index describes one menu change for downstream consumers (search indexing,
// cache warmers).
type Index struct {
	EntityType string `json:"entity_type"`
	Method     string `json:"method"`
	EntityId   string `json:"entity_id"`
}

// publisher is the slice of the Redis client Emit needs.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Emit publishes a menu event to Redis pub/sub. Delivery is best-effort; a
// publish failure is logged, never surfaced to the request.
func Emit(ctx context.Context, eventName string, content Index) {
	if rdx.Conn == nil {
		return
	}
	emit(rdx.Conn, eventName, content)
}

func emit(p publisher, eventName string, content Index) {
	data, err := json.Marshal(content)
	if err != nil {
		log.Printf("[Emit] marshal %s: %v", eventName, err)
		return
	}

	// handlers emit from goroutines that outlive the request, so the
	// publish must not ride the request context
	pubCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.Publish(pubCtx, menuEvents, data).Err(); err != nil {
		log.Printf("[Emit] publish %s: %v", eventName, err)
	}
}

// StartMenuWorker consumes menu events and logs them. Placeholder consumer
// until a search index exists.
func StartMenuWorker() {
	if rdx.Conn == nil {
		return
	}
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, menuEvents)
	ch := sub.Channel()

	log.Println("[MenuWorker] listening for menu events")
	for msg := range ch {
		var event Index
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[MenuWorker] bad event payload: %v", err)
			continue
		}
		log.Printf("[MenuWorker] %s %s %s", event.Method, event.EntityType, event.EntityId)
	}
}
