package service

import (
	"context"
	"encoding/json"
	"strings"

	"ai-answer-be/internal/dto"
	"ai-answer-be/internal/pkg/logger"
	"ai-answer-be/pkg/agent/checkpoint"
	"ai-answer-be/pkg/agent/executor"
	"ai-answer-be/pkg/agent/progress"
	"ai-answer-be/pkg/agent/prompt"
	"ai-answer-be/pkg/agent/state"
	"ai-answer-be/pkg/events"
	"ai-answer-be/pkg/llm"
	pktNats "ai-answer-be/pkg/nats"

	"github.com/google/uuid"
)

const persistenceWarning = "answer generated but the session could not be saved; follow-up questions may lose context"

// IAskService defines the answer engine's service surface
type IAskService interface {
	Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error)
	GetProgress(ctx context.Context, sessionID string) (*dto.ProgressResponse, error)
	RelatedQuestions(ctx context.Context, query string) (*dto.RelatedQuestionsResponse, error)
}

// askService runs the answer pipeline per request on top of the session's
// checkpointed state.
type askService struct {
	store       checkpoint.Store
	executor    *executor.PipelineExecutor
	progressLog *progress.Log
	llmProvider llm.LLMProvider
	temperature float64
	natsPub     *pktNats.Publisher
	logger      logger.ILogger
}

func NewAskService(
	store checkpoint.Store,
	exec *executor.PipelineExecutor,
	progressLog *progress.Log,
	llmProvider llm.LLMProvider,
	temperature float64,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) IAskService {
	return &askService{
		store:       store,
		executor:    exec,
		progressLog: progressLog,
		llmProvider: llmProvider,
		temperature: temperature,
		natsPub:     natsPub,
		logger:      log,
	}
}

func (s *askService) Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error) {
	sessionID := strings.TrimSpace(request.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sessionState, found, err := s.store.Load(ctx, sessionID)
	if err != nil {
		s.logger.Warn("AskService", "Checkpoint load failed, starting fresh", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
	if !found || sessionState == nil {
		sessionState = state.New(sessionID)
	}

	sessionState.Query = strings.TrimSpace(request.Query)
	sessionState.AddTurn(state.RoleUser, sessionState.Query)

	final := s.executor.Execute(ctx, sessionState)

	warning := ""
	if err := s.store.Save(ctx, sessionID, final); err != nil {
		warning = persistenceWarning
		s.logger.Error("AskService", "Checkpoint save failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	s.publishCompleted(ctx, final)

	return &dto.AskResponse{
		SessionID:          sessionID,
		Answer:             final.FinalPayload,
		PersistenceWarning: warning,
	}, nil
}

func (s *askService) GetProgress(ctx context.Context, sessionID string) (*dto.ProgressResponse, error) {
	recorded, err := s.progressLog.Read(sessionID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ProgressEvent, 0, len(recorded))
	for _, e := range recorded {
		out = append(out, dto.ProgressEvent{
			Timestamp: e.Timestamp,
			Stage:     e.Stage,
			Status:    e.Status,
			Message:   e.Message,
		})
	}
	return &dto.ProgressResponse{SessionID: sessionID, Events: out}, nil
}

// RelatedQuestions suggests follow-up questions for a query. Failures
// produce an empty list, never an error response.
func (s *askService) RelatedQuestions(ctx context.Context, query string) (*dto.RelatedQuestionsResponse, error) {
	response := &dto.RelatedQuestionsResponse{Query: query, Questions: []string{}}

	if s.llmProvider == nil {
		s.logger.Warn("AskService", "No LLM provider, returning empty related questions", nil)
		return response, nil
	}

	messages := []llm.Message{
		{Role: "system", Content: prompt.RelatedQuestionsSystem},
		{Role: "user", Content: prompt.BuildRelatedQuestions(query)},
	}

	// Slightly higher temperature for variety
	content, err := s.llmProvider.Chat(ctx, messages,
		llm.WithTemperature(s.temperature+0.2),
		llm.WithMaxTokens(200),
	)
	if err != nil {
		s.logger.Warn("AskService", "Related questions request failed", map[string]interface{}{
			"error": err.Error(),
		})
		return response, nil
	}

	response.Questions = parseRelatedQuestions(content)
	return response, nil
}

func parseRelatedQuestions(content string) []string {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return []string{}
	}

	var raw []string
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return []string{}
	}

	questions := make([]string, 0, len(raw))
	for _, q := range raw {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		questions = append(questions, q)
		if len(questions) >= 5 {
			break
		}
	}
	return questions
}

func (s *askService) publishCompleted(ctx context.Context, final *state.SessionState) {
	if s.natsPub == nil {
		return
	}

	degraded := final.Overview == ""
	evt := events.NewAnswerCompleted(final.SessionID, final.Query, len(final.Citations), degraded)
	if err := s.natsPub.Publish(ctx, evt); err != nil {
		s.logger.Warn("AskService", "Failed to publish event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}
