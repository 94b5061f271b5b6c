package store

import "github.com/code-deck/collab-service/internal/domain"

// PendingQueue holds join requests awaiting an admin decision, keyed by the
// requester's socket id. Entries leave the queue exactly once: on approval,
// rejection or requester disconnect.
type PendingQueue struct {
	bySocket map[string]domain.PendingJoin
}

func NewPendingQueue() *PendingQueue {
	return &PendingQueue{bySocket: make(map[string]domain.PendingJoin)}
}

func (q *PendingQueue) Add(p domain.PendingJoin) {
	q.bySocket[p.SocketID] = p
}

func (q *PendingQueue) Get(socketID string) (domain.PendingJoin, bool) {
	p, ok := q.bySocket[socketID]
	return p, ok
}

// Remove is idempotent; a second removal for the same id is a no-op.
func (q *PendingQueue) Remove(socketID string) bool {
	if _, ok := q.bySocket[socketID]; !ok {
		return false
	}
	delete(q.bySocket, socketID)
	return true
}

func (q *PendingQueue) Len() int {
	return len(q.bySocket)
}
