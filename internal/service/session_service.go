package service

import (
	"sync"

	"github.com/code-deck/collab-service/internal/domain"
	"github.com/code-deck/collab-service/internal/store"
	"github.com/code-deck/collab-service/pkg/metrics"
)

// SessionService owns the room coordination state: who is connected, which
// room they are in, which join requests are pending and what each room's
// policy is. Handlers run on websocket read goroutines, so every entry point
// takes the one mutex; the stores themselves stay lock-free.
type SessionService struct {
	mu       sync.Mutex
	registry *store.Registry
	policies *store.PolicyStore
	pending  *store.PendingQueue
}

func NewSessionService(registry *store.Registry, policies *store.PolicyStore, pending *store.PendingQueue) *SessionService {
	return &SessionService{
		registry: registry,
		policies: policies,
		pending:  pending,
	}
}

type JoinStatus int

const (
	JoinAccepted JoinStatus = iota
	JoinWaiting
	JoinUsernameExists
	JoinAlreadyMember
)

// JoinResult tells the transport what to emit and to whom after a join
// request has been processed.
type JoinResult struct {
	Status  JoinStatus
	User    domain.Participant
	Users   []domain.Participant
	Tasks   []domain.Task
	AdminID string // socket to notify with the admission request, empty if no admin is connected
}

// Join runs the admission flow for one join request. The first participant of
// a room is admitted immediately as admin and fixes the room's policy; later
// requesters are queued until the admin decides.
func (s *SessionService) Join(socketID, roomID, username string, collaborative *bool, tasks []domain.Task) JoinResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Повторный join-request с уже принятого сокета: иначе в реестре
	// появился бы дубль, который Disconnect не вычистит.
	if _, ok := s.registry.Find(socketID); ok {
		return JoinResult{Status: JoinAlreadyMember}
	}

	if s.registry.UsernameTaken(roomID, username) {
		return JoinResult{Status: JoinUsernameExists}
	}

	if s.registry.CountByRoom(roomID) == 0 {
		collab := true
		if collaborative != nil {
			collab = *collaborative
		}
		s.policies.Create(roomID, collab, tasks)

		user := domain.Participant{
			Username:        username,
			RoomID:          roomID,
			Status:          domain.StatusOnline,
			SocketID:        socketID,
			IsAdmin:         true,
			IsCollaborative: collab,
		}
		s.registry.Add(&user)
		s.refreshMetrics()

		return JoinResult{
			Status: JoinAccepted,
			User:   user,
			Users:  s.registry.ListByRoom(roomID),
			Tasks:  s.policies.Tasks(roomID),
		}
	}

	s.pending.Add(domain.PendingJoin{SocketID: socketID, Username: username, RoomID: roomID})
	s.refreshMetrics()

	res := JoinResult{Status: JoinWaiting}
	if admin, ok := s.registry.Admin(roomID); ok {
		res.AdminID = admin.SocketID
	}
	// Без подключенного админа запрос остается в очереди до дисконнекта.
	return res
}

// AdmissionResult describes the outcome of an admin decision. Applied is
// false when the decision was a no-op: no such pending request (already
// resolved, or never existed) or the decider is not the room's admin.
type AdmissionResult struct {
	Applied  bool
	Accepted bool
	TargetID string
	RoomID   string
	User     domain.Participant
	Users    []domain.Participant
	Tasks    []domain.Task
}

// Decide resolves a pending join request. Only the current admin of the
// pending request's room may decide; anyone else is silently ignored and the
// request stays pending.
func (s *SessionService) Decide(deciderID, targetID string, accepted bool) AdmissionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	pend, ok := s.pending.Get(targetID)
	if !ok {
		return AdmissionResult{}
	}

	decider, ok := s.registry.Find(deciderID)
	if !ok || !decider.IsAdmin || decider.RoomID != pend.RoomID {
		return AdmissionResult{}
	}

	s.pending.Remove(targetID)

	if !accepted {
		s.refreshMetrics()
		return AdmissionResult{Applied: true, TargetID: targetID, RoomID: pend.RoomID}
	}

	user := domain.Participant{
		Username:        pend.Username,
		RoomID:          pend.RoomID,
		Status:          domain.StatusOnline,
		SocketID:        pend.SocketID,
		IsCollaborative: s.policies.Collaborative(pend.RoomID),
	}
	s.registry.Add(&user)
	s.refreshMetrics()

	return AdmissionResult{
		Applied:  true,
		Accepted: true,
		TargetID: targetID,
		RoomID:   pend.RoomID,
		User:     user,
		Users:    s.registry.ListByRoom(pend.RoomID),
		Tasks:    s.policies.Tasks(pend.RoomID),
	}
}

// DisconnectResult reports what the closed connection was: a pending
// requester (nothing to broadcast), an admitted participant (room must hear
// user-disconnected), or unknown.
type DisconnectResult struct {
	WasPending bool
	Found      bool
	User       domain.Participant
	RoomID     string
}

// Disconnect cleans up after a closed connection. Idempotent: a second call
// for the same socket finds nothing and reports Found=false.
func (s *SessionService) Disconnect(socketID string) DisconnectResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending.Remove(socketID) {
		s.refreshMetrics()
		return DisconnectResult{WasPending: true}
	}

	user, ok := s.registry.Find(socketID)
	if !ok {
		return DisconnectResult{}
	}

	s.registry.Remove(socketID)
	s.policies.DeleteIfEmpty(user.RoomID, s.registry.CountByRoom(user.RoomID))
	s.refreshMetrics()

	return DisconnectResult{Found: true, User: user, RoomID: user.RoomID}
}

// SetStatus updates a participant's presence and resolves their room. The
// target may differ from the sending connection for relayed presence.
func (s *SessionService) SetStatus(socketID string, status domain.ConnectionStatus) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.registry.Update(socketID, func(p *domain.Participant) {
		p.Status = status
	})
	if !ok {
		return "", false
	}
	return p.RoomID, true
}

// TypingStart marks the participant as typing at the given caret offset and
// returns the updated snapshot for broadcast.
func (s *SessionService) TypingStart(socketID string, cursor int) (domain.Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.registry.Update(socketID, func(p *domain.Participant) {
		p.Typing = true
		p.CursorPosition = cursor
	})
}

// TypingPause clears the typing flag, leaving the caret offset as is.
func (s *SessionService) TypingPause(socketID string) (domain.Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.registry.Update(socketID, func(p *domain.Participant) {
		p.Typing = false
	})
}

// RoomOf resolves the sender's room; absence signals a disconnect race and
// the caller drops the event.
func (s *SessionService) RoomOf(socketID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.registry.RoomOf(socketID)
}

// Find returns the participant snapshot for a socket id.
func (s *SessionService) Find(socketID string) (domain.Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.registry.Find(socketID)
}

// Collaborative reports whether file/directory mutations in the room are
// broadcast to peers.
func (s *SessionService) Collaborative(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.policies.Collaborative(roomID)
}

// ListByRoom returns the room's participants in join order.
func (s *SessionService) ListByRoom(roomID string) []domain.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.registry.ListByRoom(roomID)
}

// caller must hold s.mu
func (s *SessionService) refreshMetrics() {
	metrics.ActiveRooms.Set(float64(s.policies.Len()))
	metrics.Participants.Set(float64(s.registry.Len()))
	metrics.PendingAdmissions.Set(float64(s.pending.Len()))
}
