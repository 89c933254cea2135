package stage

import (
	"context"
	"strings"
	"time"

	"ai-answer-be/internal/pkg/logger"
	"ai-answer-be/pkg/agent/state"
)

// fallbackOverview is returned when no stage produced an answer, so the
// payload always carries every field the API promises.
const fallbackOverview = "I could not find a reliable answer to this question right now. Please try rephrasing it or asking again later."

// FormatOutputStage assembles the final API payload from whatever the
// earlier stages managed to produce, and records the assistant's answer
// in the conversation history. It never fails: a run that degraded all
// the way down still yields a complete payload.
type FormatOutputStage struct {
	logger logger.ILogger
}

func NewFormatOutputStage(log logger.ILogger) *FormatOutputStage {
	return &FormatOutputStage{logger: log}
}

func (st *FormatOutputStage) Name() string {
	return NameFormatOutput
}

func (st *FormatOutputStage) Run(ctx context.Context, s *state.SessionState) (*state.SessionState, error) {
	overview := s.Overview
	if overview != "" {
		s.AddTurn(state.RoleAssistant, historyContent(overview, s.Topics))
	} else {
		overview = fallbackOverview
	}

	topics := s.Topics
	if topics == nil {
		topics = []state.Topic{}
	}
	sources := s.Citations
	if sources == nil {
		sources = []state.Citation{}
	}

	s.FinalPayload = &state.Payload{
		Question:      s.Query,
		Overview:      overview,
		OverviewImage: s.OverviewImage,
		Topics:        topics,
		Sources:       sources,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
	}

	return s, nil
}

// historyContent renders the answer plus topic expansions as one history
// entry so follow-up questions see the full previous response.
func historyContent(overview string, topics []state.Topic) string {
	if len(topics) == 0 {
		return overview
	}
	var b strings.Builder
	b.WriteString(overview)
	for _, t := range topics {
		b.WriteString("\n\n")
		b.WriteString(t.Title)
		b.WriteString(": ")
		b.WriteString(t.Content)
	}
	return b.String()
}
