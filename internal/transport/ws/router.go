package ws

import (
	"log/slog"

	"github.com/code-deck/collab-service/internal/domain"
	"github.com/code-deck/collab-service/internal/service"
)

// route dispatches one inbound event. Every handler resolves the sender
// through the session service first and drops the event silently when the
// sender is already gone (disconnect race); nothing here may panic the
// connection.
func (s *Server) route(c Conn, msg Message) {
	switch msg.Event {
	case EventJoinRequest:
		s.handleJoinRequest(c, msg)
	case EventAdmissionResponse:
		s.handleAdmissionResponse(c, msg)

	case EventSyncFileStructure:
		s.handleSyncFileStructure(c, msg)
	case EventDirectoryCreated, EventDirectoryUpdated, EventDirectoryRenamed, EventDirectoryDeleted,
		EventFileCreated, EventFileUpdated, EventFileRenamed, EventFileDeleted:
		s.handleFileMutation(c, msg)

	case EventUserOffline:
		s.handlePresence(c, msg, domain.StatusOffline)
	case EventUserOnline:
		s.handlePresence(c, msg, domain.StatusOnline)

	case EventSendMessage:
		s.handleChat(c, msg)
	case EventTypingStart:
		s.handleTypingStart(c, msg)
	case EventTypingPause:
		s.handleTypingPause(c)

	case EventRequestDrawing:
		s.handleRequestDrawing(c)
	case EventSyncDrawing:
		s.handleSyncDrawing(c, msg)
	case EventDrawingUpdate:
		s.handleDrawingUpdate(c, msg)

	case EventMediaJoin:
		s.handleMediaJoin(c)
	case EventMediaOffer, EventMediaAnswer, EventMediaICE:
		s.handleMediaSignal(c, msg)
	case EventMediaLeave:
		s.handleMediaLeave(c)
	case EventToggleScreenShare, EventToggleMic, EventToggleCamera:
		s.handleMediaToggle(c, msg)

	default:
		// неизвестные события игнорируем
	}
}

func (s *Server) handleJoinRequest(c Conn, msg Message) {
	var p JoinRequestPayload
	if decode(msg.Payload, &p) != nil {
		return
	}

	res := s.session.Join(c.ID(), p.RoomID, p.Username, p.IsCollaborative, p.Tasks)
	switch res.Status {
	case service.JoinUsernameExists:
		_ = c.Send(Message{Event: EventUsernameExists})

	case service.JoinAccepted:
		s.hub.JoinRoom(p.RoomID, c.ID())
		_ = c.Send(Message{Event: EventJoinAccepted, Payload: JoinAcceptedPayload{
			User:  res.User,
			Users: res.Users,
			Tasks: res.Tasks,
		}})
		slog.Info("room created",
			"room", p.RoomID, "admin", p.Username,
			"collaborative", res.User.IsCollaborative, "tasks", len(res.Tasks))

	case service.JoinWaiting:
		_ = c.Send(Message{Event: EventWaitingForAdmission})
		if res.AdminID != "" {
			s.hub.SendTo(res.AdminID, Message{Event: EventAdmissionRequest, Payload: AdmissionRequestPayload{
				Username: p.Username,
				SocketID: c.ID(),
			}})
		}
		slog.Debug("join pending", "room", p.RoomID, "username", p.Username, "conn", c.ID())
	}
}

func (s *Server) handleAdmissionResponse(c Conn, msg Message) {
	var p AdmissionResponsePayload
	if decode(msg.Payload, &p) != nil {
		return
	}

	res := s.session.Decide(c.ID(), p.SocketID, p.Accepted)
	if !res.Applied {
		// stale, duplicate or unauthorized decision
		return
	}

	if !res.Accepted {
		s.hub.SendTo(res.TargetID, Message{Event: EventUserRejected})
		slog.Info("join rejected", "room", res.RoomID, "conn", res.TargetID)
		return
	}

	s.hub.JoinRoom(res.RoomID, res.TargetID)
	s.hub.BroadcastExcept(res.RoomID, res.TargetID, Message{Event: EventUserJoined, Payload: UserPayload{User: res.User}})

	accepted := Message{Event: EventJoinAccepted, Payload: JoinAcceptedPayload{
		User:  res.User,
		Users: res.Users,
		Tasks: res.Tasks,
	}}
	s.hub.SendTo(res.TargetID, accepted)
	// клиент ждет user-joined и о себе тоже
	s.hub.SendTo(res.TargetID, Message{Event: EventUserJoined, Payload: UserPayload{User: res.User}})

	slog.Info("user admitted", "room", res.RoomID, "username", res.User.Username)
}

func (s *Server) handleDisconnect(c Conn) {
	res := s.session.Disconnect(c.ID())
	if res.WasPending || !res.Found {
		return
	}

	s.hub.BroadcastExcept(res.RoomID, c.ID(), Message{Event: EventUserDisconnected, Payload: UserPayload{User: res.User}})
	slog.Info("user left", "room", res.RoomID, "username", res.User.Username)
}

// handleFileMutation is the single chokepoint of the collaboration-mode
// gate: in non-collaborative rooms mutations stay local to their author.
func (s *Server) handleFileMutation(c Conn, msg Message) {
	roomID, ok := s.session.RoomOf(c.ID())
	if !ok {
		return
	}
	if !s.session.Collaborative(roomID) {
		return
	}

	s.hub.BroadcastExcept(roomID, c.ID(), Message{Event: msg.Event, Payload: msg.Payload})
}

func (s *Server) handleSyncFileStructure(c Conn, msg Message) {
	var p SyncFileStructurePayload
	if decode(msg.Payload, &p) != nil || p.SocketID == "" {
		return
	}

	s.hub.SendTo(p.SocketID, Message{Event: EventSyncFileStructure, Payload: FileStructurePayload{
		FileStructure: p.FileStructure,
		OpenFiles:     p.OpenFiles,
		ActiveFile:    p.ActiveFile,
	}})
}

func (s *Server) handlePresence(c Conn, msg Message, status domain.ConnectionStatus) {
	var p SocketIDPayload
	if decode(msg.Payload, &p) != nil {
		return
	}

	roomID, ok := s.session.SetStatus(p.SocketID, status)
	if !ok {
		return
	}

	s.hub.BroadcastExcept(roomID, c.ID(), Message{Event: msg.Event, Payload: SocketIDPayload{SocketID: p.SocketID}})
}

func (s *Server) handleChat(c Conn, msg Message) {
	roomID, ok := s.session.RoomOf(c.ID())
	if !ok {
		return
	}

	s.hub.BroadcastExcept(roomID, c.ID(), Message{Event: EventReceiveMessage, Payload: msg.Payload})
}

func (s *Server) handleTypingStart(c Conn, msg Message) {
	var p CursorPayload
	if decode(msg.Payload, &p) != nil {
		return
	}

	user, ok := s.session.TypingStart(c.ID(), p.CursorPosition)
	if !ok {
		return
	}

	s.hub.BroadcastExcept(user.RoomID, c.ID(), Message{Event: EventTypingStart, Payload: UserPayload{User: user}})
}

func (s *Server) handleTypingPause(c Conn) {
	user, ok := s.session.TypingPause(c.ID())
	if !ok {
		return
	}

	s.hub.BroadcastExcept(user.RoomID, c.ID(), Message{Event: EventTypingPause, Payload: UserPayload{User: user}})
}

func (s *Server) handleRequestDrawing(c Conn) {
	roomID, ok := s.session.RoomOf(c.ID())
	if !ok {
		return
	}

	s.hub.BroadcastExcept(roomID, c.ID(), Message{Event: EventRequestDrawing, Payload: SocketIDPayload{SocketID: c.ID()}})
}

func (s *Server) handleSyncDrawing(c Conn, msg Message) {
	var p SyncDrawingPayload
	if decode(msg.Payload, &p) != nil || p.SocketID == "" {
		return
	}

	s.hub.SendTo(p.SocketID, Message{Event: EventSyncDrawing, Payload: DrawingDataPayload{DrawingData: p.DrawingData}})
}

func (s *Server) handleDrawingUpdate(c Conn, msg Message) {
	roomID, ok := s.session.RoomOf(c.ID())
	if !ok {
		return
	}

	s.hub.BroadcastExcept(roomID, c.ID(), Message{Event: EventDrawingUpdate, Payload: msg.Payload})
}
