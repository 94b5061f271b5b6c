package store

import "github.com/code-deck/collab-service/internal/domain"

// PolicyStore keeps per-room configuration for the lifetime of the room's
// occupancy generation. A missing policy reads as "collaborative, no tasks"
// so a room without a stored policy still behaves safely.
type PolicyStore struct {
	policies map[string]domain.RoomPolicy
}

func NewPolicyStore() *PolicyStore {
	return &PolicyStore{policies: make(map[string]domain.RoomPolicy)}
}

// Create stores the room's policy. Only ever called for the first participant
// of a room; overwriting an existing policy is a design error upstream.
func (s *PolicyStore) Create(roomID string, collaborative bool, tasks []domain.Task) {
	s.policies[roomID] = domain.RoomPolicy{
		RoomID:          roomID,
		IsCollaborative: collaborative,
		Tasks:           tasks,
	}
}

func (s *PolicyStore) Get(roomID string) (domain.RoomPolicy, bool) {
	p, ok := s.policies[roomID]
	return p, ok
}

// Collaborative reports the room's collaboration mode, defaulting to true
// when no policy is stored.
func (s *PolicyStore) Collaborative(roomID string) bool {
	if p, ok := s.policies[roomID]; ok {
		return p.IsCollaborative
	}
	return true
}

func (s *PolicyStore) Tasks(roomID string) []domain.Task {
	return s.policies[roomID].Tasks
}

// DeleteIfEmpty drops the policy once the room's occupancy, measured after a
// removal, has reached zero.
func (s *PolicyStore) DeleteIfEmpty(roomID string, occupancy int) {
	if occupancy == 0 {
		delete(s.policies, roomID)
	}
}

// Len is the number of rooms with a stored policy.
func (s *PolicyStore) Len() int {
	return len(s.policies)
}
