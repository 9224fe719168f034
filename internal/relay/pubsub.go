package relay

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"chatrelay/backend/internal/models"
)

// RunPubSubBridge consumes the shared broker subscription and delivers
// each message to this instance's local subscribers. Together with a
// router whose Publisher points at the same broker, it lets several relay
// instances serve one room: every instance receives every published
// message, in broker order, and delivers it locally with the usual
// no-echo rule.
//
// Blocks until ctx is cancelled or the subscription channel closes; run
// it in its own goroutine.
func RunPubSubBridge(ctx context.Context, pubsub *redis.PubSub, router *Router) {
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var chatMsg models.Message
			if err := json.Unmarshal([]byte(msg.Payload), &chatMsg); err != nil {
				log.Printf("Error unmarshalling broker message: %v", err)
				continue
			}
			router.Deliver(chatMsg)
		}
	}
}
