package stage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-answer-be/pkg/agent/state"
	"ai-answer-be/pkg/serp"

	"github.com/stretchr/testify/assert"
)

func newSerpClient(t *testing.T, body string) *serp.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status_code": 200, "body": ` + body + `}`))
	}))
	t.Cleanup(srv.Close)

	client := serp.NewClient("test-key", "serp", 5*time.Second)
	client.Endpoint = srv.URL
	return client
}

func TestSearchFillsResults(t *testing.T) {
	client := newSerpClient(t, `{
		"knowledge_graph": {"image": "https://kg.example/nairobi.jpg"},
		"organic": [
			{"title": "Nairobi - Wikipedia", "link": "https://en.wikipedia.org/wiki/Nairobi", "snippet": "Capital of Kenya", "position": 1},
			{"title": "No link here"},
			{"title": "Kenya facts", "link": "https://facts.example/kenya", "description": "Country profile"}
		]
	}`)
	st := NewSearchStage(client, noopLogger{})

	s := state.New("sess-1")
	s.Query = "capital of Kenya"

	out, err := st.Run(context.Background(), s)
	assert.NoError(t, err)
	assert.Len(t, out.RawResults, 2)
	assert.Equal(t, "Nairobi - Wikipedia", out.RawResults[0].Title)
	assert.Equal(t, "en.wikipedia.org", out.RawResults[0].Domain)
	// Snippet falls back to the description when the short snippet is missing.
	assert.Equal(t, "Country profile", out.RawResults[1].Snippet)
	assert.Equal(t, "https://kg.example/nairobi.jpg", out.OverviewImage)
}

func TestSearchResetsPreviousRunState(t *testing.T) {
	client := newSerpClient(t, `{"organic": []}`)
	st := NewSearchStage(client, noopLogger{})

	s := state.New("sess-1")
	s.Query = "follow-up question"
	s.RawResults = []state.SearchResult{{URL: "https://stale.example"}}
	s.RankedResults = []state.SearchResult{{URL: "https://stale.example"}}
	s.OverviewImage = "https://stale.example/img.jpg"

	out, err := st.Run(context.Background(), s)
	assert.NoError(t, err)
	assert.Empty(t, out.RawResults)
	assert.Nil(t, out.RankedResults)
	assert.Empty(t, out.OverviewImage)
}

func TestSearchWithoutCredentialsDegrades(t *testing.T) {
	client := serp.NewClient("", "", time.Second)
	st := NewSearchStage(client, noopLogger{})

	s := state.New("sess-1")
	s.RawResults = []state.SearchResult{{URL: "https://stale.example"}}

	out, err := st.Run(context.Background(), s)
	assert.ErrorIs(t, err, serp.ErrNoCredentials)
	assert.Empty(t, out.RawResults)
}

func TestSearchProviderFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := serp.NewClient("test-key", "serp", 5*time.Second)
	client.Endpoint = srv.URL
	st := NewSearchStage(client, noopLogger{})

	s := state.New("sess-1")
	out, err := st.Run(context.Background(), s)
	assert.Error(t, err)
	assert.Empty(t, out.RawResults)
}

func TestSearchCapsResultCount(t *testing.T) {
	body := `{"organic": [`
	for i := 0; i < 15; i++ {
		if i > 0 {
			body += ","
		}
		body += `{"title": "r", "link": "https://example.com/page"}`
	}
	body += `]}`

	st := NewSearchStage(newSerpClient(t, body), noopLogger{})

	out, err := st.Run(context.Background(), state.New("sess-1"))
	assert.NoError(t, err)
	assert.Len(t, out.RawResults, maxSearchResults)
}
