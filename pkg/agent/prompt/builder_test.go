package prompt

import (
	"strings"
	"testing"

	"ai-answer-be/pkg/agent/state"

	"github.com/stretchr/testify/assert"
)

func TestSynthesisBuilderNumbersSources(t *testing.T) {
	builder := NewSynthesisBuilder("capital of Kenya", nil, []state.SearchResult{
		{Title: "Nairobi - Wikipedia", URL: "https://en.wikipedia.org/wiki/Nairobi", Snippet: "Capital of Kenya"},
		{Title: "Kenya facts", URL: "https://facts.example/kenya", Snippet: "Country profile"},
	})

	out := builder.Build()
	assert.Contains(t, out, "Question: capital of Kenya")
	assert.Contains(t, out, "[1] Nairobi - Wikipedia")
	assert.Contains(t, out, "[2] Kenya facts")
	assert.Contains(t, out, "(https://en.wikipedia.org/wiki/Nairobi)")
	assert.NotContains(t, out, "Conversation:")
}

func TestSynthesisBuilderIncludesHistory(t *testing.T) {
	history := []state.Turn{
		{Role: state.RoleUser, Content: "capital of Kenya"},
		{Role: state.RoleAssistant, Content: "Nairobi is the capital."},
		{Role: state.RoleUser, Content: ""},
	}
	builder := NewSynthesisBuilder("and its population?", history, []state.SearchResult{
		{Title: "Nairobi", URL: "https://en.wikipedia.org/wiki/Nairobi"},
	})

	out := builder.Build()
	assert.Contains(t, out, "Conversation:")
	assert.Contains(t, out, "user: capital of Kenya")
	assert.Contains(t, out, "assistant: Nairobi is the capital.")
	// Empty turns are dropped, not rendered as bare role labels.
	assert.NotContains(t, out, "user: \n")
}

func TestSynthesisBuilderSourceMetadata(t *testing.T) {
	builder := NewSynthesisBuilder("q", nil, []state.SearchResult{
		{
			Title:           "Nairobi",
			URL:             "https://en.wikipedia.org/wiki/Nairobi",
			Snippet:         "Short snippet",
			ExtendedSnippet: strings.Repeat("long detail ", 20),
			Date:            "2026-01-15",
			Keywords:        []string{"k1", "k2", "k3", "k4", "k5", "k6"},
			Breadcrumb:      "en.wikipedia.org > wiki",
		},
	})

	out := builder.Build()
	assert.Contains(t, out, "(Date: 2026-01-15)")
	assert.Contains(t, out, "Location: en.wikipedia.org > wiki")
	// Keywords are capped at five.
	assert.Contains(t, out, "[Keywords: k1, k2, k3, k4, k5]")
	assert.NotContains(t, out, "k6")
	// The extended snippet is trimmed to its first 100 bytes.
	assert.Contains(t, out, "| Extended: "+strings.Repeat("long detail ", 20)[:100])
}

func TestSynthesisBuilderSnippetFallsBackToExtended(t *testing.T) {
	builder := NewSynthesisBuilder("q", nil, []state.SearchResult{
		{Title: "Nairobi", URL: "https://example.com", ExtendedSnippet: "only extended text"},
	})

	out := builder.Build()
	assert.Contains(t, out, "— only extended text")
}

func TestBuildPrioritizeListsDomains(t *testing.T) {
	out := BuildPrioritize("capital of Kenya", []state.SearchResult{
		{Title: "Nairobi - Wikipedia", Domain: "en.wikipedia.org"},
		{Title: "Kenya facts", Domain: "facts.example"},
	})

	assert.Contains(t, out, "Query: capital of Kenya")
	assert.Contains(t, out, "- en.wikipedia.org: Nairobi - Wikipedia")
	assert.Contains(t, out, "- facts.example: Kenya facts")
	assert.Contains(t, out, PrioritizeGuidelines)
}

func TestBuildRelatedQuestionsMentionsQuery(t *testing.T) {
	out := BuildRelatedQuestions("capital of Kenya")
	assert.Contains(t, out, "Original query: capital of Kenya")
	assert.Contains(t, out, "JSON array")
}
