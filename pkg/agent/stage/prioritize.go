package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"ai-answer-be/internal/pkg/logger"
	"ai-answer-be/pkg/agent/prompt"
	"ai-answer-be/pkg/agent/state"
	"ai-answer-be/pkg/llm"
)

// maxRankedSources is how many sources survive prioritization
const maxRankedSources = 5

// PrioritizeStage asks the model to rank the raw search hits by relevance
// and keeps the top few. Any failure falls back to the first results in
// SERP order, so the pipeline never loses its sources to a ranking error.
type PrioritizeStage struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func NewPrioritizeStage(provider llm.LLMProvider, log logger.ILogger) *PrioritizeStage {
	return &PrioritizeStage{
		provider: provider,
		logger:   log,
	}
}

func (st *PrioritizeStage) Name() string {
	return NamePrioritize
}

type rankEntry struct {
	URL  string  `json:"url"`
	Rank float64 `json:"rank"`
}

func (st *PrioritizeStage) Run(ctx context.Context, s *state.SessionState) (*state.SessionState, error) {
	if len(s.RawResults) == 0 {
		s.RankedResults = nil
		return s, nil
	}

	if st.provider == nil {
		s.RankedResults = headResults(s.RawResults, maxRankedSources)
		return s, fmt.Errorf("no LLM provider configured, keeping search order")
	}

	userPrompt := prompt.BuildPrioritize(s.Query, s.RawResults)
	messages := []llm.Message{
		{Role: "system", Content: prompt.PrioritizeSystem},
		{Role: "user", Content: userPrompt},
	}

	response, err := st.provider.Chat(ctx, messages, llm.WithTemperature(0), llm.WithJSONMode())
	if err != nil {
		s.RankedResults = headResults(s.RawResults, maxRankedSources)
		return s, fmt.Errorf("ranking request failed: %w", err)
	}

	ranked, err := st.applyRanking(s.RawResults, response)
	if err != nil {
		s.RankedResults = headResults(s.RawResults, maxRankedSources)
		return s, fmt.Errorf("ranking response unusable: %w", err)
	}

	s.RankedResults = ranked
	st.logger.Info("PrioritizeStage", "Sources reranked", map[string]interface{}{
		"session_id": s.SessionID,
		"kept":       len(ranked),
	})
	return s, nil
}

// applyRanking reorders results by the model's per-URL scores. URLs the
// model did not mention keep their original position after the ranked ones.
func (st *PrioritizeStage) applyRanking(results []state.SearchResult, response string) ([]state.SearchResult, error) {
	payload := extractJSONArray(response)
	if payload == "" {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var entries []rankEntry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, fmt.Errorf("parse ranking: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("empty ranking")
	}

	ranks := make(map[string]float64, len(entries))
	for _, e := range entries {
		ranks[normalizeURL(e.URL)] = e.Rank
	}

	const unranked = 1e9
	scored := make([]state.SearchResult, len(results))
	copy(scored, results)
	sort.SliceStable(scored, func(i, j int) bool {
		ri, ok := ranks[normalizeURL(scored[i].URL)]
		if !ok {
			ri = unranked
		}
		rj, ok := ranks[normalizeURL(scored[j].URL)]
		if !ok {
			rj = unranked
		}
		return ri < rj
	})

	return headResults(scored, maxRankedSources), nil
}

func headResults(results []state.SearchResult, n int) []state.SearchResult {
	if len(results) <= n {
		out := make([]state.SearchResult, len(results))
		copy(out, results)
		return out
	}
	out := make([]state.SearchResult, n)
	copy(out, results[:n])
	return out
}

func normalizeURL(u string) string {
	return strings.TrimSuffix(strings.TrimSpace(strings.ToLower(u)), "/")
}

// extractJSONArray pulls the outermost JSON array out of a model response
// that may wrap it in prose or code fences.
func extractJSONArray(response string) string {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start < 0 || end <= start {
		return ""
	}
	return response[start : end+1]
}

// extractJSONObject does the same for a JSON object response
func extractJSONObject(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return ""
	}
	return response[start : end+1]
}
