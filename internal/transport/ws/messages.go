package ws

import (
	"encoding/json"

	"github.com/code-deck/collab-service/internal/domain"
)

// Имена событий — контракт с браузерным клиентом.
const (
	EventJoinRequest         = "join-request"
	EventJoinAccepted        = "join-accepted"
	EventUsernameExists      = "username-exists"
	EventWaitingForAdmission = "waiting-for-admission"
	EventAdmissionRequest    = "admission-request"
	EventAdmissionResponse   = "admission-response"
	EventUserJoined          = "user-joined"
	EventUserRejected        = "user-rejected"
	EventUserDisconnected    = "user-disconnected"

	EventUserOffline = "offline"
	EventUserOnline  = "online"

	EventSyncFileStructure = "sync-file-structure"
	EventDirectoryCreated  = "directory-created"
	EventDirectoryUpdated  = "directory-updated"
	EventDirectoryRenamed  = "directory-renamed"
	EventDirectoryDeleted  = "directory-deleted"
	EventFileCreated       = "file-created"
	EventFileUpdated       = "file-updated"
	EventFileRenamed       = "file-renamed"
	EventFileDeleted       = "file-deleted"

	EventSendMessage    = "send-message"
	EventReceiveMessage = "receive-message"

	EventTypingStart = "typing-start"
	EventTypingPause = "typing-pause"

	EventRequestDrawing = "request-drawing"
	EventSyncDrawing    = "sync-drawing"
	EventDrawingUpdate  = "drawing-update"

	EventMediaJoin         = "media-join"
	EventMediaOffer        = "media-offer"
	EventMediaAnswer       = "media-answer"
	EventMediaICE          = "media-ice"
	EventMediaLeave        = "media-leave"
	EventToggleScreenShare = "toggle-screen-share"
	EventToggleMic         = "toggle-mic"
	EventToggleCamera      = "toggle-camera"
)

// inboundEvents перечисляет все события, которые сервер принимает.
// Всё остальное — мусор с клиента, в метрики оно не попадает.
var inboundEvents = map[string]struct{}{
	EventJoinRequest:       {},
	EventAdmissionResponse: {},

	EventUserOffline: {},
	EventUserOnline:  {},

	EventSyncFileStructure: {},
	EventDirectoryCreated:  {},
	EventDirectoryUpdated:  {},
	EventDirectoryRenamed:  {},
	EventDirectoryDeleted:  {},
	EventFileCreated:       {},
	EventFileUpdated:       {},
	EventFileRenamed:       {},
	EventFileDeleted:       {},

	EventSendMessage: {},
	EventTypingStart: {},
	EventTypingPause: {},

	EventRequestDrawing: {},
	EventSyncDrawing:    {},
	EventDrawingUpdate:  {},

	EventMediaJoin:         {},
	EventMediaOffer:        {},
	EventMediaAnswer:       {},
	EventMediaICE:          {},
	EventMediaLeave:        {},
	EventToggleScreenShare: {},
	EventToggleMic:         {},
	EventToggleCamera:      {},
}

func knownEvent(event string) bool {
	_, ok := inboundEvents[event]
	return ok
}

// Message is the wire envelope in both directions.
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// --- inbound payloads ---

type JoinRequestPayload struct {
	RoomID          string        `json:"roomId"`
	Username        string        `json:"username"`
	IsCollaborative *bool         `json:"isCollaborative"`
	Tasks           []domain.Task `json:"tasks"`
}

type AdmissionResponsePayload struct {
	SocketID string `json:"socketId"`
	Username string `json:"username"`
	Accepted bool   `json:"accepted"`
}

type SocketIDPayload struct {
	SocketID string `json:"socketId"`
}

type CursorPayload struct {
	CursorPosition int `json:"cursorPosition"`
}

type EnabledPayload struct {
	Enabled bool `json:"enabled"`
}

type SyncFileStructurePayload struct {
	FileStructure json.RawMessage `json:"fileStructure,omitempty"`
	OpenFiles     json.RawMessage `json:"openFiles,omitempty"`
	ActiveFile    json.RawMessage `json:"activeFile,omitempty"`
	SocketID      string          `json:"socketId"`
}

type SyncDrawingPayload struct {
	DrawingData json.RawMessage `json:"drawingData"`
	SocketID    string          `json:"socketId"`
}

type MediaSignalPayload struct {
	TargetSocketID string          `json:"targetSocketId"`
	Offer          json.RawMessage `json:"offer,omitempty"`
	Answer         json.RawMessage `json:"answer,omitempty"`
	Candidate      json.RawMessage `json:"candidate,omitempty"`
}

// --- outbound payloads ---

type JoinAcceptedPayload struct {
	User  domain.Participant   `json:"user"`
	Users []domain.Participant `json:"users"`
	Tasks []domain.Task        `json:"tasks,omitempty"`
}

type UserPayload struct {
	User domain.Participant `json:"user"`
}

type AdmissionRequestPayload struct {
	Username string `json:"username"`
	SocketID string `json:"socketId"`
}

type FileStructurePayload struct {
	FileStructure json.RawMessage `json:"fileStructure,omitempty"`
	OpenFiles     json.RawMessage `json:"openFiles,omitempty"`
	ActiveFile    json.RawMessage `json:"activeFile,omitempty"`
}

type DrawingDataPayload struct {
	DrawingData json.RawMessage `json:"drawingData"`
}

type MediaFromPayload struct {
	From      string          `json:"from"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type MediaPeerPayload struct {
	SocketID string `json:"socketId"`
	Username string `json:"username,omitempty"`
}

type TogglePayload struct {
	SocketID string `json:"socketId"`
	Enabled  bool   `json:"enabled"`
}
