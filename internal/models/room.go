package models

import (
	"time"

	"github.com/lib/pq"
)

// RoomRecord is the persisted state of a chat room. The live subscriber
// set is owned by the relay registry; this row mirrors it for recovery
// and for the admin tooling.
type RoomRecord struct {
	// RoomID is the unique identifier for the room (UUID).
	RoomID string `gorm:"primaryKey"`
	// Members holds the user IDs currently joined to the room.
	Members pq.StringArray `gorm:"type:text[]"`
	// IsActive is false once the last member has left.
	IsActive bool
	// StartedAt is the timestamp of the first join.
	StartedAt time.Time
	// EndedAt is the timestamp of the last leave.
	EndedAt time.Time
}

// HasMember reports whether userID is in the persisted member list.
func (r *RoomRecord) HasMember(userID string) bool {
	for _, m := range r.Members {
		if m == userID {
			return true
		}
	}
	return false
}
