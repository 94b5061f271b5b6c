package domain

// TestCase is a single input/expected-output pair of a coding task.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// Task is a coding exercise attached to a room at creation time.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TestCases   []TestCase `json:"testCases"`
}

// RoomPolicy is the per-room configuration fixed by whoever creates the room.
// IsCollaborative == false means file/directory mutations are not broadcast,
// every participant keeps an independent file view.
type RoomPolicy struct {
	RoomID          string
	IsCollaborative bool
	Tasks           []Task
}

// PendingJoin is a join attempt waiting for the room admin's decision.
type PendingJoin struct {
	SocketID string
	Username string
	RoomID   string
}
