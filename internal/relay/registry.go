package relay

import "sync"

// Registry tracks, per room, the set of active subscribers. Each room has
// its own lock so that traffic in one room never contends with traffic in
// another; the outer lock only guards the room index itself.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*roomSet
}

type roomSet struct {
	mu   sync.RWMutex
	subs map[string]Subscriber
	// pruned marks a set that has been removed from the index. A Join
	// that raced with the prune retries against a fresh set instead of
	// inserting into this orphan.
	pruned bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*roomSet),
	}
}

// Join adds the subscriber to the room's set, creating the room entry if
// absent. Joining a room the subscriber is already in is a no-op.
func (r *Registry) Join(roomKey string, sub Subscriber) {
	for {
		r.mu.Lock()
		set, ok := r.rooms[roomKey]
		if !ok {
			set = &roomSet{subs: make(map[string]Subscriber)}
			r.rooms[roomKey] = set
		}
		r.mu.Unlock()

		set.mu.Lock()
		if set.pruned {
			set.mu.Unlock()
			continue
		}
		set.subs[sub.GetUserID()] = sub
		set.mu.Unlock()
		return
	}
}

// Leave removes the subscriber from the room's set. If another subscriber
// instance has since been registered under the same user ID (a reconnect),
// the newer registration is left in place. The room entry is pruned once
// its set becomes empty.
func (r *Registry) Leave(roomKey string, sub Subscriber) {
	r.mu.RLock()
	set := r.rooms[roomKey]
	r.mu.RUnlock()
	if set == nil {
		return
	}

	userID := sub.GetUserID()

	set.mu.Lock()
	if cur, ok := set.subs[userID]; ok && cur == sub {
		delete(set.subs, userID)
	}
	empty := len(set.subs) == 0
	set.mu.Unlock()

	if !empty {
		return
	}

	r.mu.Lock()
	if r.rooms[roomKey] == set {
		set.mu.Lock()
		if len(set.subs) == 0 {
			set.pruned = true
			delete(r.rooms, roomKey)
		}
		set.mu.Unlock()
	}
	r.mu.Unlock()
}

// SubscribersOf returns a snapshot of the room's subscribers for routing.
// Unknown rooms yield an empty slice. The snapshot is detached: later
// joins and leaves do not affect it.
func (r *Registry) SubscribersOf(roomKey string) []Subscriber {
	r.mu.RLock()
	set := r.rooms[roomKey]
	r.mu.RUnlock()
	if set == nil {
		return nil
	}

	set.mu.RLock()
	snapshot := make([]Subscriber, 0, len(set.subs))
	for _, sub := range set.subs {
		snapshot = append(snapshot, sub)
	}
	set.mu.RUnlock()
	return snapshot
}

// RoomCount returns the number of rooms that currently have subscribers.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
