package relay

import (
	"log"

	"chatrelay/backend/internal/models"
)

// Recorder persists relayed messages. Implemented by the storage service;
// nil disables persistence.
type Recorder interface {
	SaveMessage(msg *models.Message) error
}

// Publisher pushes a message onto a shared broker channel so that other
// relay instances can deliver it to their local subscribers. Implemented
// by the storage service's Redis pub/sub; nil keeps delivery local.
type Publisher interface {
	PublishMessage(roomID string, msg models.Message) error
}

// Router fans messages out to the subscribers of their room. Delivery is
// best-effort: a subscriber whose sink is full or closed is skipped and
// the rest of the fan-out proceeds.
type Router struct {
	registry  *Registry
	recorder  Recorder
	publisher Publisher
}

// NewRouter creates a router over the given registry. recorder and
// publisher are optional; pass nil to run without persistence or without
// cross-instance fan-out.
func NewRouter(registry *Registry, recorder Recorder, publisher Publisher) *Router {
	return &Router{
		registry:  registry,
		recorder:  recorder,
		publisher: publisher,
	}
}

// Broadcast records the message and hands it off for delivery. When a
// publisher is configured, local delivery happens in the pub/sub bridge
// once the broker echoes the message back, so that every instance,
// including this one, delivers it exactly once and in broker order.
func (rt *Router) Broadcast(msg models.Message) {
	if rt.recorder != nil {
		if err := rt.recorder.SaveMessage(&msg); err != nil {
			log.Printf("ERROR: Failed to save message for room %s: %v", msg.RoomID, err)
		}
	}

	if rt.publisher != nil {
		if err := rt.publisher.PublishMessage(msg.RoomID, msg); err != nil {
			log.Printf("ERROR: Failed to publish message for room %s, delivering locally: %v", msg.RoomID, err)
			rt.Deliver(msg)
		}
		return
	}

	rt.Deliver(msg)
}

// Deliver pushes the message onto the sink of every subscriber in its
// room except the sender. Calls for one sender arrive in the order the
// sender produced them, and each fan-out walks the room sequentially, so
// per-sender order is preserved at every receiving sink.
func (rt *Router) Deliver(msg models.Message) {
	for _, sub := range rt.registry.SubscribersOf(msg.RoomID) {
		if sub.GetUserID() == msg.SenderID {
			continue
		}
		if !sub.TrySend(msg) {
			log.Printf("WARN: Dropping message for slow subscriber %s in room %s", sub.GetUserID(), msg.RoomID)
		}
	}
}
