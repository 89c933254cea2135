package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-answer-be/internal/pkg/logger"
	"ai-answer-be/pkg/agent/prompt"
	"ai-answer-be/pkg/agent/state"
	"ai-answer-be/pkg/llm"
)

const (
	// maxSynthesisSources bounds the numbered source list in the prompt
	maxSynthesisSources = 5
	// maxTopics bounds the expanded topics in the synthesized answer
	maxTopics = 2
	// maxCitations bounds the citations kept per answer
	maxCitations = 5
	// historyWindow is how many recent turns feed the conversation context
	historyWindow = 5
)

// SynthesizeStage turns the ranked sources into an overview with inline
// citations and up to two expanded topics. The model must answer with a
// strict JSON object; anything unparseable clears the answer fields and
// reports a stage failure so the pipeline can still format a fallback.
type SynthesizeStage struct {
	provider    llm.LLMProvider
	temperature float64
	logger      logger.ILogger
}

func NewSynthesizeStage(provider llm.LLMProvider, temperature float64, log logger.ILogger) *SynthesizeStage {
	return &SynthesizeStage{
		provider:    provider,
		temperature: temperature,
		logger:      log,
	}
}

func (st *SynthesizeStage) Name() string {
	return NameSynthesize
}

// synthesisResponse mirrors the JSON contract of the synthesis prompt
type synthesisResponse struct {
	Overview  string        `json:"overview"`
	Topics    []state.Topic `json:"topics"`
	Citations []struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"citations"`
}

func (st *SynthesizeStage) Run(ctx context.Context, s *state.SessionState) (*state.SessionState, error) {
	clearAnswer(s)

	if st.provider == nil {
		return s, fmt.Errorf("no LLM provider configured")
	}

	sources := s.Sources()
	if len(sources) > maxSynthesisSources {
		sources = sources[:maxSynthesisSources]
	}
	if len(sources) == 0 {
		return s, fmt.Errorf("no search results to synthesize from")
	}

	builder := prompt.NewSynthesisBuilder(s.Query, s.LastTurns(historyWindow), sources)
	messages := []llm.Message{
		{Role: "system", Content: prompt.SynthesizeSystem},
		{Role: "user", Content: builder.Build()},
	}

	content, err := st.provider.Chat(ctx, messages,
		llm.WithTemperature(st.temperature),
		llm.WithJSONMode(),
	)
	if err != nil {
		return s, fmt.Errorf("synthesis request failed: %w", err)
	}
	if content == "" {
		return s, fmt.Errorf("empty synthesis response")
	}

	payload := extractJSONObject(content)
	if payload == "" {
		return s, fmt.Errorf("no JSON object in synthesis response")
	}

	var parsed synthesisResponse
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return s, fmt.Errorf("invalid JSON from LLM: %w", err)
	}

	s.Overview = parsed.Overview
	s.Topics = validTopics(parsed.Topics)
	s.Citations = st.buildCitations(parsed, sources)

	st.logger.Info("SynthesizeStage", "Answer synthesized", map[string]interface{}{
		"session_id": s.SessionID,
		"topics":     len(s.Topics),
		"citations":  len(s.Citations),
	})
	return s, nil
}

// buildCitations validates the model's citations against the numbered
// source list and renumbers the survivors densely from 1. Extended
// snippets and thumbnails are carried over from the matching source.
func (st *SynthesizeStage) buildCitations(parsed synthesisResponse, sources []state.SearchResult) []state.Citation {
	byURL := make(map[string]state.SearchResult, len(sources))
	for _, r := range sources {
		byURL[r.URL] = r
	}

	var citations []state.Citation
	for _, c := range parsed.Citations {
		if c.ID < 1 || c.ID > len(sources) {
			continue
		}
		citation := state.Citation{
			ID:    len(citations) + 1,
			Title: c.Title,
			URL:   c.URL,
		}
		if match, ok := byURL[c.URL]; ok {
			citation.ExtendedSnippet = match.ExtendedSnippet
			citation.Image = match.Thumbnail
		}
		citations = append(citations, citation)
		if len(citations) >= maxCitations {
			break
		}
	}
	return citations
}

func validTopics(topics []state.Topic) []state.Topic {
	var out []state.Topic
	for _, t := range topics {
		if t.Title == "" && t.Content == "" {
			continue
		}
		out = append(out, t)
		if len(out) >= maxTopics {
			break
		}
	}
	return out
}

func clearAnswer(s *state.SessionState) {
	s.Overview = ""
	s.Topics = nil
	s.Citations = nil
}
