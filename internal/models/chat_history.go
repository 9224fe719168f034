package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatHistory represents a saved relay message in the PostgreSQL database.
// The embedded gorm.Model provides ID, CreatedAt, UpdatedAt, and DeletedAt
// fields, which serve as the message ID and bookkeeping timestamps.
type ChatHistory struct {
	gorm.Model

	// RoomID is the identifier of the room where the message was sent.
	RoomID string `gorm:"type:uuid;not null;index:idx_room_msg"`
	// SenderID is the anonymous ID of the user who sent the message.
	SenderID string `gorm:"type:text;not null;index:idx_room_msg"`
	// Content is the textual content of the message.
	Content string `gorm:"type:text;not null"`
	// Kind indicates what the message represents ("text", "join", "leave").
	Kind string `gorm:"type:text;not null"`
	// SentAt is the timestamp stamped by the connection handler, as
	// opposed to CreatedAt which records when the row was written.
	SentAt time.Time `gorm:"not null"`
}
