package progress

import "time"

// Event statuses. A stage run produces start/end, or start/error when the
// stage reported a failure. Events are immutable once written.
const (
	StatusStart = "start"
	StatusEnd   = "end"
	StatusError = "error"
)

// Event is one lifecycle record of a stage execution
type Event struct {
	Timestamp string `json:"timestamp"`
	Stage     string `json:"stage"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

func newEvent(stage, status, message string) Event {
	return Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Stage:     stage,
		Status:    status,
		Message:   message,
	}
}
