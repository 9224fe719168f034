package relay

import (
	"fmt"
	"log"
	"sync"
	"time"

	"chatrelay/backend/internal/models"
)

// ConnState is the lifecycle state of one client connection.
type ConnState int

const (
	// StateConnecting means the connection is up but the client has not
	// named a room yet.
	StateConnecting ConnState = iota
	// StateJoined means the subscriber is registered in a room and
	// messages flow both ways.
	StateJoined
	// StateClosing means teardown has started: the subscriber is being
	// deregistered and its sink drained.
	StateClosing
	// StateClosed is terminal. No further messages are accepted or
	// emitted.
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Presence mirrors live room membership into external storage. Implemented
// by the storage service; nil disables mirroring.
type Presence interface {
	AddRoomMember(roomID, userID string) error
	RemoveRoomMember(roomID, userID string) error
}

// ConnHandler drives one client connection through its lifecycle. The
// transport feeds it inbound messages one at a time via HandleInbound and
// calls Shutdown when the inbound stream ends; the handler registers and
// deregisters the subscriber with the registry and forwards room traffic
// to the router.
type ConnHandler struct {
	sub      Subscriber
	registry *Registry
	router   *Router
	presence Presence

	mu    sync.Mutex
	state ConnState
}

// NewConnHandler creates a handler for the given subscriber.
func NewConnHandler(sub Subscriber, registry *Registry, router *Router) *ConnHandler {
	return &ConnHandler{
		sub:      sub,
		registry: registry,
		router:   router,
		state:    StateConnecting,
	}
}

// SetPresence attaches an optional presence mirror.
func (h *ConnHandler) SetPresence(p Presence) {
	h.presence = p
}

// State returns the connection's current lifecycle state.
func (h *ConnHandler) State() ConnState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// HandleInbound processes one message read from the client. The transport
// calls it serially; it never blocks on other connections.
func (h *ConnHandler) HandleInbound(msg models.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case StateConnecting:
		h.handleJoin(msg)
	case StateJoined:
		h.forward(msg)
	default:
		// Closing or Closed: the connection no longer accepts traffic.
	}
}

// handleJoin performs the Connecting -> Joined transition. The first
// inbound message must carry the room key; without one it is rejected and
// the state does not change.
func (h *ConnHandler) handleJoin(msg models.Message) {
	if msg.RoomID == "" {
		log.Printf("WARN: Client %s sent a message before joining a room", h.sub.GetUserID())
		h.sub.TrySend(models.Message{
			SenderID: "system",
			Content:  "join a room before sending messages",
			Kind:     models.KindError,
			SentAt:   time.Now(),
		})
		return
	}

	userID := h.sub.GetUserID()
	h.sub.SetRoomID(msg.RoomID)
	h.registry.Join(msg.RoomID, h.sub)
	h.state = StateJoined

	if h.presence != nil {
		if err := h.presence.AddRoomMember(msg.RoomID, userID); err != nil {
			log.Printf("ERROR: Failed to record presence for %s in room %s: %v", userID, msg.RoomID, err)
		}
	}

	log.Printf("Client %s joined room %s", userID, msg.RoomID)

	h.router.Broadcast(models.Message{
		SenderID: userID,
		RoomID:   msg.RoomID,
		Content:  fmt.Sprintf("%s has joined the room", userID),
		Kind:     models.KindJoin,
		SentAt:   time.Now(),
	})

	// A first message may carry chat content alongside the room key;
	// relay it so the client does not have to send it twice.
	if msg.Content != "" {
		h.forward(msg)
	}
}

// forward stamps an inbound message and hands it to the router. The
// sender and room are taken from the subscriber, never trusted from the
// wire, so a joined client cannot inject into another room.
func (h *ConnHandler) forward(msg models.Message) {
	out := models.Message{
		SenderID: h.sub.GetUserID(),
		RoomID:   h.sub.GetRoomID(),
		Content:  msg.Content,
		Kind:     msg.Kind,
		SentAt:   time.Now(),
	}
	if out.Kind == "" {
		out.Kind = models.KindText
	}
	h.router.Broadcast(out)
}

// Shutdown drives the connection to Closed: it deregisters the subscriber
// from its room, announces the departure, and closes the sink. Called on
// inbound stream end, sink failure, or cancellation; safe to call more
// than once.
func (h *ConnHandler) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == StateClosing || h.state == StateClosed {
		return
	}
	wasJoined := h.state == StateJoined
	h.state = StateClosing

	userID := h.sub.GetUserID()
	roomID := h.sub.GetRoomID()

	if wasJoined && roomID != "" {
		h.registry.Leave(roomID, h.sub)

		if h.presence != nil {
			if err := h.presence.RemoveRoomMember(roomID, userID); err != nil {
				log.Printf("ERROR: Failed to clear presence for %s in room %s: %v", userID, roomID, err)
			}
		}

		h.router.Broadcast(models.Message{
			SenderID: userID,
			RoomID:   roomID,
			Content:  fmt.Sprintf("%s has left the room", userID),
			Kind:     models.KindLeave,
			SentAt:   time.Now(),
		})

		log.Printf("Client %s left room %s", userID, roomID)
	}

	h.sub.Close()
	h.state = StateClosed
}
