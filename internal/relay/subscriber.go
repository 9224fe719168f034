package relay

import "chatrelay/backend/internal/models"

// Subscriber is the interface for any type of connection (e.g., WebSocket,
// Telegram). It abstracts the underlying communication mechanism, allowing
// the registry and router to treat every client type uniformly. A
// Subscriber is owned by the connection handler that created it; the
// registry only holds a reference for routing.
type Subscriber interface {
	// GetUserID returns the unique identifier for the user associated
	// with the connection.
	GetUserID() string
	// GetRoomID returns the identifier of the room the subscriber is
	// currently in, or "" before it has joined one.
	GetRoomID() string
	// SetRoomID assigns the subscriber to a room. Called by the
	// connection handler when the join succeeds.
	SetRoomID(string)

	// TrySend pushes a message onto the subscriber's outbound sink
	// without blocking. It returns false when the sink is full or the
	// subscriber is already shutting down; the caller skips the message
	// for this subscriber only.
	TrySend(models.Message) bool

	// Run starts the subscriber's transport pumps, which handle incoming
	// and outgoing messages.
	Run()
	// Close signals the subscriber's transport to shut down. Safe to
	// call more than once and concurrently with TrySend.
	Close()
}
