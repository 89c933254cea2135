package events

import "time"

// Event types emitted by the answer pipeline
const (
	TypeAnswerCompleted = "ANSWER_COMPLETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ANSWER_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewAnswerCompleted builds the event published after a pipeline run
// finishes, whether fully or in degraded form.
func NewAnswerCompleted(sessionID, query string, citations int, degraded bool) BaseEvent {
	return BaseEvent{
		Type: TypeAnswerCompleted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"query":      query,
			"citations":  citations,
			"degraded":   degraded,
		},
		OccurredAt: time.Now(),
	}
}
