package ws

// Peer connection signaling. The relay keeps no state and never inspects the
// negotiation payloads: offers, answers and candidates are forwarded to one
// explicit target, stamped with the sender's socket id.

func (s *Server) handleMediaJoin(c Conn) {
	roomID, ok := s.session.RoomOf(c.ID())
	if !ok {
		return
	}
	user, _ := s.session.Find(c.ID())

	s.hub.BroadcastExcept(roomID, c.ID(), Message{Event: EventMediaJoin, Payload: MediaPeerPayload{
		SocketID: c.ID(),
		Username: user.Username,
	}})
}

func (s *Server) handleMediaSignal(c Conn, msg Message) {
	var p MediaSignalPayload
	if decode(msg.Payload, &p) != nil || p.TargetSocketID == "" {
		return
	}

	// unicast; закрытый target просто молча теряет сообщение
	s.hub.SendTo(p.TargetSocketID, Message{Event: msg.Event, Payload: MediaFromPayload{
		From:      c.ID(),
		Offer:     p.Offer,
		Answer:    p.Answer,
		Candidate: p.Candidate,
	}})
}

func (s *Server) handleMediaLeave(c Conn) {
	roomID, ok := s.session.RoomOf(c.ID())
	if !ok {
		return
	}

	s.hub.BroadcastExcept(roomID, c.ID(), Message{Event: EventMediaLeave, Payload: SocketIDPayload{SocketID: c.ID()}})
}

func (s *Server) handleMediaToggle(c Conn, msg Message) {
	var p EnabledPayload
	if decode(msg.Payload, &p) != nil {
		return
	}

	roomID, ok := s.session.RoomOf(c.ID())
	if !ok {
		return
	}

	s.hub.BroadcastExcept(roomID, c.ID(), Message{Event: msg.Event, Payload: TogglePayload{
		SocketID: c.ID(),
		Enabled:  p.Enabled,
	}})
}
