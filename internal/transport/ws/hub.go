package ws

import (
	"sync"

	"github.com/code-deck/collab-service/pkg/metrics"
)

type Conn interface {
	ID() string
	Send(msg Message) error
	Close() error
}

// Hub tracks live connections and the room broadcast groups. A connection is
// registered on upgrade but only joins a room group once admitted; unicast to
// an id that already closed is a silent no-op.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]Conn            // connID -> conn
	rooms  map[string]map[string]Conn // roomID -> connID -> conn
	member map[string]string          // connID -> roomID
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[string]Conn),
		rooms:  make(map[string]map[string]Conn),
		member: make(map[string]string),
	}
}

func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[c.ID()] = c
}

func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, connID)
	h.leaveLocked(connID)
}

func (h *Hub) JoinRoom(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[connID]
	if !ok {
		return
	}
	rs, ok := h.rooms[roomID]
	if !ok {
		rs = make(map[string]Conn)
		h.rooms[roomID] = rs
	}
	rs[connID] = c
	h.member[connID] = roomID
}

func (h *Hub) LeaveRoom(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(connID)
}

// SendTo unicasts to one connection; false when the target is gone.
func (h *Hub) SendTo(connID string, msg Message) bool {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()

	if !ok {
		return false
	}
	_ = c.Send(msg) // best-effort
	return true
}

// Broadcast sends to every connection in the room's group.
func (h *Hub) Broadcast(roomID string, msg Message) {
	h.broadcast(roomID, "", msg)
}

// BroadcastExcept sends to the room's group minus one connection, typically
// the sender.
func (h *Hub) BroadcastExcept(roomID, exceptID string, msg Message) {
	h.broadcast(roomID, exceptID, msg)
}

func (h *Hub) broadcast(roomID, exceptID string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.rooms[roomID] {
		if id == exceptID {
			continue
		}
		_ = c.Send(msg)
		metrics.BroadcastsTotal.Inc()
	}
}

// caller must hold h.mu
func (h *Hub) leaveLocked(connID string) {
	roomID, ok := h.member[connID]
	if !ok {
		return
	}
	delete(h.member, connID)
	if rs, ok := h.rooms[roomID]; ok {
		delete(rs, connID)
		if len(rs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}
