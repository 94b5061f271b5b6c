package store

import "github.com/code-deck/collab-service/internal/domain"

// Registry is the in-memory table of live participants. It carries no locking
// of its own: all access is serialized by the owning service.
type Registry struct {
	participants []*domain.Participant // insertion order
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a participant. The caller guarantees no entry with the same
// socket id already exists.
func (r *Registry) Add(p *domain.Participant) {
	r.participants = append(r.participants, p)
}

// Remove drops every entry for the socket id; calling it for an unknown id
// is a no-op.
func (r *Registry) Remove(socketID string) {
	kept := r.participants[:0]
	for _, p := range r.participants {
		if p.SocketID != socketID {
			kept = append(kept, p)
		}
	}
	r.participants = kept
}

// ListByRoom returns copies of the room's participants in join order.
func (r *Registry) ListByRoom(roomID string) []domain.Participant {
	out := make([]domain.Participant, 0)
	for _, p := range r.participants {
		if p.RoomID == roomID {
			out = append(out, *p)
		}
	}
	return out
}

// CountByRoom reports the room's occupancy.
func (r *Registry) CountByRoom(roomID string) int {
	n := 0
	for _, p := range r.participants {
		if p.RoomID == roomID {
			n++
		}
	}
	return n
}

// Find returns a copy of the participant for a socket id.
func (r *Registry) Find(socketID string) (domain.Participant, bool) {
	if p := r.lookup(socketID); p != nil {
		return *p, true
	}
	return domain.Participant{}, false
}

// RoomOf resolves the room a connection belongs to. Absence means the
// participant is already gone (disconnect race) and the caller should abort
// silently.
func (r *Registry) RoomOf(socketID string) (string, bool) {
	if p := r.lookup(socketID); p != nil {
		return p.RoomID, true
	}
	return "", false
}

// Update applies a partial mutation to a participant and returns the updated
// snapshot. No-op when the participant is gone.
func (r *Registry) Update(socketID string, fn func(*domain.Participant)) (domain.Participant, bool) {
	p := r.lookup(socketID)
	if p == nil {
		return domain.Participant{}, false
	}
	fn(p)
	return *p, true
}

// Admin returns the room's admin, if one is connected.
func (r *Registry) Admin(roomID string) (domain.Participant, bool) {
	for _, p := range r.participants {
		if p.RoomID == roomID && p.IsAdmin {
			return *p, true
		}
	}
	return domain.Participant{}, false
}

// UsernameTaken reports whether a username is already used in the room.
func (r *Registry) UsernameTaken(roomID, username string) bool {
	for _, p := range r.participants {
		if p.RoomID == roomID && p.Username == username {
			return true
		}
	}
	return false
}

// Len is the total number of live participants across all rooms.
func (r *Registry) Len() int {
	return len(r.participants)
}

func (r *Registry) lookup(socketID string) *domain.Participant {
	for _, p := range r.participants {
		if p.SocketID == socketID {
			return p
		}
	}
	return nil
}
