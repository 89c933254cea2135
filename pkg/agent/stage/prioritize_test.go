package stage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ai-answer-be/pkg/agent/state"

	"github.com/stretchr/testify/assert"
)

func rawResults(n int) []state.SearchResult {
	out := make([]state.SearchResult, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, state.SearchResult{
			Title: fmt.Sprintf("Result %d", i+1),
			URL:   fmt.Sprintf("https://example.com/%d", i+1),
		})
	}
	return out
}

func TestPrioritizeEmptyResultsIsNoop(t *testing.T) {
	st := NewPrioritizeStage(&fakeProvider{}, noopLogger{})

	s := state.New("sess-1")
	out, err := st.Run(context.Background(), s)
	assert.NoError(t, err)
	assert.Nil(t, out.RankedResults)
}

func TestPrioritizeReordersByRank(t *testing.T) {
	provider := &fakeProvider{response: `[
		{"url": "https://example.com/3", "rank": 1},
		{"url": "https://example.com/1/", "rank": 2}
	]`}
	st := NewPrioritizeStage(provider, noopLogger{})

	s := state.New("sess-1")
	s.Query = "capital of Kenya"
	s.RawResults = rawResults(4)

	out, err := st.Run(context.Background(), s)
	assert.NoError(t, err)
	assert.Len(t, out.RankedResults, 4)
	// Ranked URLs first; trailing slash in the model's URL still matches.
	assert.Equal(t, "https://example.com/3", out.RankedResults[0].URL)
	assert.Equal(t, "https://example.com/1", out.RankedResults[1].URL)
	// Unmentioned URLs keep their original relative order after the ranked ones.
	assert.Equal(t, "https://example.com/2", out.RankedResults[2].URL)
	assert.Equal(t, "https://example.com/4", out.RankedResults[3].URL)
}

func TestPrioritizeCapsRankedSources(t *testing.T) {
	provider := &fakeProvider{response: `[{"url": "https://example.com/8", "rank": 1}]`}
	st := NewPrioritizeStage(provider, noopLogger{})

	s := state.New("sess-1")
	s.RawResults = rawResults(8)

	out, err := st.Run(context.Background(), s)
	assert.NoError(t, err)
	assert.Len(t, out.RankedResults, maxRankedSources)
	assert.Equal(t, "https://example.com/8", out.RankedResults[0].URL)
}

func TestPrioritizeFallsBackOnProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("timeout")}
	st := NewPrioritizeStage(provider, noopLogger{})

	s := state.New("sess-1")
	s.RawResults = rawResults(7)

	out, err := st.Run(context.Background(), s)
	assert.Error(t, err)
	assert.Len(t, out.RankedResults, maxRankedSources)
	assert.Equal(t, "https://example.com/1", out.RankedResults[0].URL)
}

func TestPrioritizeFallsBackOnUnusableResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no array", "I cannot rank these sources."},
		{"invalid json", `[{"url": 12}]`},
		{"empty array", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewPrioritizeStage(&fakeProvider{response: tt.response}, noopLogger{})

			s := state.New("sess-1")
			s.RawResults = rawResults(3)

			out, err := st.Run(context.Background(), s)
			assert.Error(t, err)
			assert.Len(t, out.RankedResults, 3)
			assert.Equal(t, "https://example.com/1", out.RankedResults[0].URL)
		})
	}
}

func TestPrioritizeFallsBackWithoutProvider(t *testing.T) {
	st := NewPrioritizeStage(nil, noopLogger{})

	s := state.New("sess-1")
	s.RawResults = rawResults(2)

	out, err := st.Run(context.Background(), s)
	assert.Error(t, err)
	assert.Len(t, out.RankedResults, 2)
}
