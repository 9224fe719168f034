package models

import "time"

// MessageKind discriminates what a relayed message represents.
type MessageKind string

const (
	// KindText is a regular chat message typed by a user.
	KindText MessageKind = "text"
	// KindJoin announces that a user entered the room.
	KindJoin MessageKind = "join"
	// KindLeave announces that a user left the room.
	KindLeave MessageKind = "leave"
	// KindError is sent back to a client on its own sink only,
	// e.g. when it tries to chat before joining a room.
	KindError MessageKind = "error"
)

// Message is one unit of room traffic. It is constructed once by the
// connection handler and never mutated afterwards; it flows from the
// handler through the router into the other subscribers' sinks.
type Message struct {
	// ID is the persisted history row ID, filled in by storage after
	// the message is saved. Zero when persistence is disabled.
	ID       uint        `json:"id,omitempty"`
	SenderID string      `json:"sender_id"`
	RoomID   string      `json:"room_id"`
	Content  string      `json:"content"`
	Kind     MessageKind `json:"kind"`
	SentAt   time.Time   `json:"sent_at"`
}
