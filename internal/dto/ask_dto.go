package dto

import "ai-answer-be/pkg/agent/state"

type AskRequest struct {
	Query     string `json:"query" validate:"required,min=1,max=1000"`
	SessionID string `json:"session_id,omitempty"`
}

type AskResponse struct {
	SessionID string         `json:"session_id"`
	Answer    *state.Payload `json:"answer"`

	// Set when the answer was produced but its checkpoint could not be
	// saved, so the next request in this session may lose context.
	PersistenceWarning string `json:"persistence_warning,omitempty"`
}

type ProgressResponse struct {
	SessionID string          `json:"session_id"`
	Events    []ProgressEvent `json:"events"`
}

type ProgressEvent struct {
	Timestamp string `json:"timestamp"`
	Stage     string `json:"stage"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

type RelatedQuestionsResponse struct {
	Query     string   `json:"query"`
	Questions []string `json:"questions"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
