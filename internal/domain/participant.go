package domain

// ConnectionStatus is the coarse presence state a client reports for itself.
type ConnectionStatus string

const (
	StatusOnline  ConnectionStatus = "online"
	StatusOffline ConnectionStatus = "offline"
)

// Participant is one connected, named actor inside one room. JSON field names
// follow the wire contract the browser client expects.
type Participant struct {
	Username        string           `json:"username"`
	RoomID          string           `json:"roomId"`
	Status          ConnectionStatus `json:"status"`
	CursorPosition  int              `json:"cursorPosition"`
	Typing          bool             `json:"typing"`
	CurrentFile     *string          `json:"currentFile"`
	SocketID        string           `json:"socketId"`
	IsAdmin         bool             `json:"isAdmin"`
	IsCollaborative bool             `json:"isCollaborative"`
}
