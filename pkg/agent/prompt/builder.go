package prompt

import (
	"fmt"
	"strings"

	"ai-answer-be/pkg/agent/state"
)

// SynthesisBuilder assembles the user message for the synthesize stage:
// trimmed conversation context, the question, and a numbered source list
// the model cites by index.
type SynthesisBuilder struct {
	query   string
	history []state.Turn
	sources []state.SearchResult
}

func NewSynthesisBuilder(query string, history []state.Turn, sources []state.SearchResult) *SynthesisBuilder {
	return &SynthesisBuilder{
		query:   query,
		history: history,
		sources: sources,
	}
}

func (b *SynthesisBuilder) Build() string {
	var prompt strings.Builder

	if context := b.buildContext(); context != "" {
		prompt.WriteString("Conversation:\n")
		prompt.WriteString(context)
		prompt.WriteString("\n\n")
	}

	prompt.WriteString("Question: ")
	prompt.WriteString(b.query)
	prompt.WriteString("\n\nSources:\n")
	b.writeSources(&prompt)

	return prompt.String()
}

func (b *SynthesisBuilder) buildContext() string {
	var lines []string
	for _, turn := range b.history {
		if turn.Content == "" {
			continue
		}
		lines = append(lines, turn.Role+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}

func (b *SynthesisBuilder) writeSources(prompt *strings.Builder) {
	for i, r := range b.sources {
		prompt.WriteString(fmt.Sprintf("[%d] %s", i+1, r.Title))

		snippet := r.Snippet
		if snippet == "" {
			snippet = r.ExtendedSnippet
		}
		if snippet != "" {
			prompt.WriteString(" — " + snippet)
		}
		if r.ExtendedSnippet != "" && r.ExtendedSnippet != r.Snippet {
			extended := r.ExtendedSnippet
			if len(extended) > 100 {
				extended = extended[:100]
			}
			prompt.WriteString(" | Extended: " + extended)
		}
		if r.Date != "" {
			prompt.WriteString(" (Date: " + r.Date + ")")
		}
		if len(r.Keywords) > 0 {
			keywords := r.Keywords
			if len(keywords) > 5 {
				keywords = keywords[:5]
			}
			prompt.WriteString(" [Keywords: " + strings.Join(keywords, ", ") + "]")
		}
		if r.Breadcrumb != "" {
			prompt.WriteString(" | Location: " + r.Breadcrumb)
		}

		prompt.WriteString(" (" + r.URL + ")\n")
	}
}

// BuildPrioritize composes the ranking prompt for the prioritize stage
func BuildPrioritize(query string, sources []state.SearchResult) string {
	var prompt strings.Builder
	prompt.WriteString("Query: ")
	prompt.WriteString(query)
	prompt.WriteString("\n\nSources:\n")
	for _, r := range sources {
		prompt.WriteString("- " + r.Domain + ": " + r.Title + "\n")
	}
	prompt.WriteString("\n")
	prompt.WriteString(PrioritizeGuidelines)
	return prompt.String()
}

// BuildRelatedQuestions composes the prompt for the related-questions endpoint
func BuildRelatedQuestions(query string) string {
	var prompt strings.Builder
	prompt.WriteString("Given the following query, generate 3-5 related questions that users might also be interested in.\n")
	prompt.WriteString("The questions should be:\n")
	prompt.WriteString("- Directly related to the original query\n")
	prompt.WriteString("- Diverse in perspective (different angles on the topic)\n")
	prompt.WriteString("- Clear and concise\n")
	prompt.WriteString("- Questions that would lead to useful search results\n\n")
	prompt.WriteString("Original query: ")
	prompt.WriteString(query)
	prompt.WriteString("\n\nReturn ONLY a JSON array of question strings, no other text:\n")
	prompt.WriteString(`["question 1", "question 2", "question 3", ...]`)
	return prompt.String()
}
