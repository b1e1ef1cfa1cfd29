package core

// PresenceTracker maps room ids to the ordered identities currently
// connected. It is owned by a single hub and mutated only from the hub
// goroutine; snapshots are copies so broadcasts never race on the
// underlying slices.
type PresenceTracker struct {
	rooms map[string][]Identity
}

// NewPresenceTracker constructs an empty tracker.
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{rooms: make(map[string][]Identity)}
}

// Add inserts the identity into the room's presence list unless an
// entry with the same email already exists. Returns true if inserted.
func (p *PresenceTracker) Add(roomID string, id Identity) bool {
	entries := p.rooms[roomID]
	for _, e := range entries {
		if e.Email == id.Email {
			return false
		}
	}
	p.rooms[roomID] = append(entries, id)
	return true
}

// Remove deletes every entry with the given email from the room.
// Returns true if anything was removed.
func (p *PresenceTracker) Remove(roomID, email string) bool {
	entries, ok := p.rooms[roomID]
	if !ok {
		return false
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.Email != email {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return false
	}

	if len(kept) == 0 {
		delete(p.rooms, roomID)
	} else {
		p.rooms[roomID] = kept
	}
	return true
}

// Snapshot returns a stable ordered copy of the room's presence list.
// The copy never aliases tracker state, so later mutations cannot leak
// into an in-flight broadcast.
func (p *PresenceTracker) Snapshot(roomID string) []Identity {
	entries := p.rooms[roomID]
	out := make([]Identity, len(entries))
	copy(out, entries)
	return out
}
