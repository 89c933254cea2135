package stage

import (
	"context"
	"fmt"

	"ai-answer-be/internal/pkg/logger"
	"ai-answer-be/pkg/agent/state"
	"ai-answer-be/pkg/serp"
)

// maxSearchResults caps how many organic hits the search stage keeps
const maxSearchResults = 10

// SearchStage queries the SERP provider for the current query and fills
// RawResults and OverviewImage. On provider failure it leaves an empty
// result list so downstream stages can still produce a degraded answer.
type SearchStage struct {
	client *serp.Client
	logger logger.ILogger
}

func NewSearchStage(client *serp.Client, log logger.ILogger) *SearchStage {
	return &SearchStage{
		client: client,
		logger: log,
	}
}

func (st *SearchStage) Name() string {
	return NameSearch
}

func (st *SearchStage) Run(ctx context.Context, s *state.SessionState) (*state.SessionState, error) {
	s.RawResults = []state.SearchResult{}
	s.RankedResults = nil
	s.OverviewImage = ""

	if st.client == nil || !st.client.Configured() {
		return s, serp.ErrNoCredentials
	}

	body, err := st.client.Search(ctx, s.Query)
	if err != nil {
		return s, fmt.Errorf("web search failed: %w", err)
	}

	s.OverviewImage = body.OverviewImage()

	for _, hit := range body.Organic {
		if hit.Link == "" {
			continue
		}
		snippet := hit.Snippet
		if snippet == "" {
			snippet = hit.Description
		}
		s.RawResults = append(s.RawResults, state.SearchResult{
			Title:              hit.Title,
			URL:                hit.Link,
			Snippet:            snippet,
			Domain:             serp.Domain(hit.Link),
			ExtendedSnippet:    hit.Description,
			SnippetHighlighted: hit.SnippetHighlighted,
			Position:           hit.Position,
			Date:               hit.Date,
			Cite:               hit.Cite,
			Thumbnail:          hit.Thumbnail,
			Breadcrumb:         hit.Breadcrumb,
			Keywords:           hit.AboutThisResult.Keywords,
			CachedLink:         hit.CachedPageLink,
		})
		if len(s.RawResults) >= maxSearchResults {
			break
		}
	}

	st.logger.Info("SearchStage", "Search completed", map[string]interface{}{
		"session_id":   s.SessionID,
		"results":      len(s.RawResults),
		"has_overview": s.OverviewImage != "",
	})

	return s, nil
}
