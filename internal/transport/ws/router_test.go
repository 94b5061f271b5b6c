package ws

import (
	"encoding/json"
	"testing"

	"github.com/code-deck/collab-service/internal/service"
	"github.com/code-deck/collab-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	session := service.NewSessionService(store.NewRegistry(), store.NewPolicyStore(), store.NewPendingQueue())
	return NewServer(NewHub(), session, Options{})
}

func (s *Server) connect(id string) *fakeConn {
	c := &fakeConn{id: id}
	s.hub.Register(c)
	return c
}

func joinPayload(roomID, username string, collaborative *bool) map[string]any {
	p := map[string]any{"roomId": roomID, "username": username}
	if collaborative != nil {
		p["isCollaborative"] = *collaborative
	}
	return p
}

// admit walks a requester through the full admission flow.
func admit(t *testing.T, s *Server, admin, c *fakeConn, roomID, username string) {
	t.Helper()
	s.route(c, Message{Event: EventJoinRequest, Payload: joinPayload(roomID, username, nil)})
	s.route(admin, Message{Event: EventAdmissionResponse, Payload: map[string]any{
		"socketId": c.ID(),
		"username": username,
		"accepted": true,
	}})
	require.Contains(t, c.events(), EventJoinAccepted, "admission flow for %s", username)
}

func collabFalse() *bool { v := false; return &v }

func TestRoute_AdmissionFlow(t *testing.T) {
	s := newTestServer()
	a := s.connect("A")
	b := s.connect("B")

	// alice creates the room
	s.route(a, Message{Event: EventJoinRequest, Payload: joinPayload("R", "alice", nil)})
	require.Equal(t, []string{EventJoinAccepted}, a.events())

	accepted, ok := a.messages()[0].Payload.(JoinAcceptedPayload)
	require.True(t, ok)
	assert.True(t, accepted.User.IsAdmin)
	require.Len(t, accepted.Users, 1)
	assert.Equal(t, "alice", accepted.Users[0].Username)
	a.reset()

	// bob asks to join
	s.route(b, Message{Event: EventJoinRequest, Payload: joinPayload("R", "bob", nil)})
	assert.Equal(t, []string{EventWaitingForAdmission}, b.events())

	require.Equal(t, []string{EventAdmissionRequest}, a.events())
	req := a.messages()[0].Payload.(AdmissionRequestPayload)
	assert.Equal(t, "bob", req.Username)
	assert.Equal(t, "B", req.SocketID)
	a.reset()
	b.reset()

	// alice approves
	s.route(a, Message{Event: EventAdmissionResponse, Payload: map[string]any{
		"socketId": "B", "username": "bob", "accepted": true,
	}})

	assert.Equal(t, []string{EventUserJoined}, a.events())
	require.Equal(t, []string{EventJoinAccepted, EventUserJoined}, b.events())

	joined := b.messages()[0].Payload.(JoinAcceptedPayload)
	require.Len(t, joined.Users, 2)
	assert.Equal(t, "alice", joined.Users[0].Username)
	assert.Equal(t, "bob", joined.Users[1].Username)
	assert.False(t, joined.User.IsAdmin)
}

func TestRoute_RepeatJoinRequestIsSilent(t *testing.T) {
	s := newTestServer()
	a := s.connect("A")

	s.route(a, Message{Event: EventJoinRequest, Payload: joinPayload("R", "alice", nil)})
	a.reset()

	s.route(a, Message{Event: EventJoinRequest, Payload: joinPayload("R2", "alice", nil)})

	assert.Empty(t, a.events())
	assert.Len(t, s.session.ListByRoom("R"), 1)
	assert.Empty(t, s.session.ListByRoom("R2"))
}

func TestRoute_Rejection(t *testing.T) {
	s := newTestServer()
	a := s.connect("A")
	b := s.connect("B")

	s.route(a, Message{Event: EventJoinRequest, Payload: joinPayload("R", "alice", nil)})
	s.route(b, Message{Event: EventJoinRequest, Payload: joinPayload("R", "bob", nil)})
	a.reset()
	b.reset()

	s.route(a, Message{Event: EventAdmissionResponse, Payload: map[string]any{
		"socketId": "B", "username": "bob", "accepted": false,
	}})

	assert.Equal(t, []string{EventUserRejected}, b.events())
	assert.Empty(t, a.events())
	assert.Len(t, s.session.ListByRoom("R"), 1)
}

func TestRoute_UsernameExists(t *testing.T) {
	s := newTestServer()
	a := s.connect("A")
	b := s.connect("B")

	s.route(a, Message{Event: EventJoinRequest, Payload: joinPayload("R", "alice", nil)})
	a.reset()

	s.route(b, Message{Event: EventJoinRequest, Payload: joinPayload("R", "alice", nil)})

	assert.Equal(t, []string{EventUsernameExists}, b.events())
	assert.Empty(t, a.events(), "no admission request for a colliding username")
	assert.Len(t, s.session.ListByRoom("R"), 1)
}

func TestRoute_CollaborationGate(t *testing.T) {
	s := newTestServer()
	a := s.connect("A")
	b := s.connect("B")

	s.route(a, Message{Event: EventJoinRequest, Payload: joinPayload("R", "alice", collabFalse())})
	admit(t, s, a, b, "R", "bob")
	a.reset()
	b.reset()

	// file mutations are suppressed in a non-collaborative room
	s.route(a, Message{Event: EventFileUpdated, Payload: map[string]any{
		"fileId": "f1", "newContent": "package main",
	}})
	assert.Empty(t, b.events())

	// chat is not gated
	s.route(a, Message{Event: EventSendMessage, Payload: map[string]any{"message": "hi"}})
	require.Equal(t, []string{EventReceiveMessage}, b.events())
	assert.Empty(t, a.events(), "sender does not hear their own message")
}

func TestRoute_FileMutationsBroadcastInCollaborativeRoom(t *testing.T) {
	s := newTestServer()
	a := s.connect("A")
	b := s.connect("B")

	s.route(a, Message{Event: EventJoinRequest, Payload: joinPayload("R", "alice", nil)})
	admit(t, s, a, b, "R", "bob")
	a.reset()
	b.reset()

	for _, event := range []string{
		EventDirectoryCreated, EventDirectoryUpdated, EventDirectoryRenamed, EventDirectoryDeleted,
		EventFileCreated, EventFileUpdated, EventFileRenamed, EventFileDeleted,
	} {
		s.route(a, Message{Event: event, Payload: map[string]any{"id": "x"}})
	}

	assert.Equal(t, []string{
		EventDirectoryCreated, EventDirectoryUpdated, EventDirectoryRenamed, EventDirectoryDeleted,
		EventFileCreated, EventFileUpdated, EventFileRenamed, EventFileDeleted,
	}, b.events())
	assert.Empty(t, a.events())
}

func TestRoute_EventFromUnknownSenderIsDropped(t *testing.T) {
	s := newTestServer()
	ghost := s.connect("ghost")

	// not admitted anywhere: every room-scoped event must be a silent no-op
	s.route(ghost, Message{Event: EventFileUpdated, Payload: map[string]any{"fileId": "f1"}})
	s.route(ghost, Message{Event: EventSendMessage, Payload: map[string]any{"message": "hi"}})
	s.route(ghost, Message{Event: EventTypingStart, Payload: map[string]any{"cursorPosition": 3}})
	s.route(ghost, Message{Event: EventRequestDrawing})
	s.route(ghost, Message{Event: EventMediaJoin})

	assert.Empty(t, ghost.events())
}

func TestRoute_TypingCarriesSnapshot(t *testing.T) {
	s := newTestServer()
	a := s.connect("A")
	b := s.connect("B")

	s.route(a, Message{Event: EventJoinRequest, Payload: joinPayload("R", "alice", nil)})
	admit(t, s, a, b, "R", "bob")
	a.reset()
	b.reset()

	s.route(a, Message{Event: EventTypingStart, Payload: map[string]any{"cursorPosition": 11}})

	require.Equal(t, []string{EventTypingStart}, b.events())
	user := b.messages()[0].Payload.(UserPayload).User
	assert.True(t, user.Typing)
	assert.Equal(t, 11, user.CursorPosition)
	b.reset()

	s.route(a, Message{Event: EventTypingPause})
	require.Equal(t, []string{EventTypingPause}, b.events())
	assert.False(t, b.messages()[0].Payload.(UserPayload).User.Typing)
}

func TestRoute_PresenceTargetsRoomOfTarget(t *testing.T) {
	s := newTestServer()
	a := s.connect("A")
	b := s.connect("B")

	s.route(a, Message{Event: EventJoinRequest, Payload: joinPayload("R", "alice", nil)})
	admit(t, s, a, b, "R", "bob")
	a.reset()
	b.reset()

	s.route(a, Message{Event: EventUserOffline, Payload: map[string]any{"socketId": "A"}})

	require.Equal(t, []string{EventUserOffline}, b.events())
	assert.Equal(t, "A", b.messages()[0].Payload.(SocketIDPayload).SocketID)

	user, ok := s.session.Find("A")
	require.True(t, ok)
	assert.Equal(t, "offline", string(user.Status))
}

func TestRoute_DrawingEvents(t *testing.T) {
	s := newTestServer()
	a := s.connect("A")
	b := s.connect("B")

	s.route(a, Message{Event: EventJoinRequest, Payload: joinPayload("R", "alice", nil)})
	admit(t, s, a, b, "R", "bob")
	a.reset()
	b.reset()

	s.route(b, Message{Event: EventRequestDrawing})
	require.Equal(t, []string{EventRequestDrawing}, a.events())
	assert.Equal(t, "B", a.messages()[0].Payload.(SocketIDPayload).SocketID)
	a.reset()

	// a answers with a unicast snapshot for b only
	s.route(a, Message{Event: EventSyncDrawing, Payload: map[string]any{
		"drawingData": []any{map[string]any{"type": "path"}},
		"socketId":    "B",
	}})
	require.Equal(t, []string{EventSyncDrawing}, b.events())
	assert.Empty(t, a.events())
	b.reset()

	s.route(a, Message{Event: EventDrawingUpdate, Payload: map[string]any{"snapshot": "blob"}})
	assert.Equal(t, []string{EventDrawingUpdate}, b.events())
}

func TestRoute_SyncFileStructureUnicast(t *testing.T) {
	s := newTestServer()
	a := s.connect("A")
	b := s.connect("B")

	s.route(a, Message{Event: EventJoinRequest, Payload: joinPayload("R", "alice", nil)})
	admit(t, s, a, b, "R", "bob")
	a.reset()
	b.reset()

	s.route(a, Message{Event: EventSyncFileStructure, Payload: map[string]any{
		"fileStructure": map[string]any{"id": "root"},
		"openFiles":     []any{"f1"},
		"activeFile":    "f1",
		"socketId":      "B",
	}})

	require.Equal(t, []string{EventSyncFileStructure}, b.events())
	assert.Empty(t, a.events())

	p := b.messages()[0].Payload.(FileStructurePayload)
	assert.Equal(t, json.RawMessage(`{"id":"root"}`), p.FileStructure)
}

func TestRoute_DisconnectCleansUp(t *testing.T) {
	s := newTestServer()
	a := s.connect("A")
	b := s.connect("B")

	s.route(a, Message{Event: EventJoinRequest, Payload: joinPayload("R", "alice", nil)})
	admit(t, s, a, b, "R", "bob")
	a.reset()
	b.reset()

	s.handleDisconnect(b)
	s.hub.Unregister("B")

	require.Equal(t, []string{EventUserDisconnected}, a.events())
	assert.Equal(t, "bob", a.messages()[0].Payload.(UserPayload).User.Username)

	users := s.session.ListByRoom("R")
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestRoute_PendingDisconnectIsSilent(t *testing.T) {
	s := newTestServer()
	a := s.connect("A")
	b := s.connect("B")

	s.route(a, Message{Event: EventJoinRequest, Payload: joinPayload("R", "alice", nil)})
	s.route(b, Message{Event: EventJoinRequest, Payload: joinPayload("R", "bob", nil)})
	a.reset()

	s.handleDisconnect(b)
	s.hub.Unregister("B")

	assert.Empty(t, a.events())

	// a late decision for the vanished requester is a no-op
	s.route(a, Message{Event: EventAdmissionResponse, Payload: map[string]any{
		"socketId": "B", "username": "bob", "accepted": true,
	}})
	assert.Len(t, s.session.ListByRoom("R"), 1)
}

func TestRoute_MalformedPayloadIsIgnored(t *testing.T) {
	s := newTestServer()
	a := s.connect("A")

	s.route(a, Message{Event: EventJoinRequest, Payload: "not-an-object"})
	s.route(a, Message{Event: EventAdmissionResponse, Payload: 42})
	s.route(a, Message{Event: "no-such-event"})

	assert.Empty(t, a.events())
}
