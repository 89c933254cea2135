package state

// Role constants for conversation turns
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SearchResult represents a single web search hit from the SERP provider
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Domain  string `json:"domain"`

	// Extended metadata from the SERP API for richer synthesis context
	ExtendedSnippet    string   `json:"extended_snippet,omitempty"`
	SnippetHighlighted []string `json:"snippet_highlighted,omitempty"`
	Position           int      `json:"position,omitempty"`
	Date               string   `json:"date,omitempty"`
	Cite               string   `json:"cite,omitempty"`
	Thumbnail          string   `json:"thumbnail,omitempty"`
	Breadcrumb         string   `json:"breadcrumb,omitempty"`
	Keywords           []string `json:"keywords,omitempty"`
	CachedLink         string   `json:"cached_link,omitempty"`
}

// Citation is a numbered reference from the synthesized answer to a source.
// IDs are 1-based and dense within a state (1..len(citations), no gaps).
type Citation struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	Image           string `json:"image,omitempty"`
	ExtendedSnippet string `json:"extended_snippet,omitempty"`
}

// Topic expands on one aspect of the overview
type Topic struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Turn is one entry of the conversation history
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Payload is the fully assembled response structure built by the format stage
type Payload struct {
	Question      string     `json:"question"`
	Overview      string     `json:"overview"`
	OverviewImage string     `json:"overview_image,omitempty"`
	Topics        []Topic    `json:"topics"`
	Sources       []Citation `json:"sources"`
	Timestamp     string     `json:"timestamp"`
}

// SessionState is the working memory threaded through the pipeline and the
// unit of persistence for the checkpoint store. One state per session;
// SessionID is immutable once created, History is append-only.
type SessionState struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	History   []Turn `json:"history"`

	// Populated by the search stage; nil until search ran
	RawResults []SearchResult `json:"raw_results,omitempty"`

	// Optional reordering/subset of RawResults. Stages that consume sources
	// must fall back to RawResults when no ranking stage ran.
	RankedResults []SearchResult `json:"ranked_results,omitempty"`

	Overview      string     `json:"overview,omitempty"`
	OverviewImage string     `json:"overview_image,omitempty"`
	Topics        []Topic    `json:"topics,omitempty"`
	Citations     []Citation `json:"citations,omitempty"`

	// Built only by the format stage; nil until then
	FinalPayload *Payload `json:"final_payload,omitempty"`
}

// New creates a fresh state for a session
func New(sessionID string) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		History:   nil,
	}
}

// AddTurn appends one conversation turn. History only ever grows.
func (s *SessionState) AddTurn(role, content string) {
	s.History = append(s.History, Turn{Role: role, Content: content})
}

// LastTurns returns up to n most recent history turns
func (s *SessionState) LastTurns(n int) []Turn {
	if n <= 0 || len(s.History) == 0 {
		return nil
	}
	if len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// Sources returns the result list downstream stages should consume:
// the ranked subset when a ranking stage ran, otherwise the raw hits.
func (s *SessionState) Sources() []SearchResult {
	if len(s.RankedResults) > 0 {
		return s.RankedResults
	}
	return s.RawResults
}

// ValidCitationIDs reports whether citation ids form the dense
// contiguous set {1..len} in order. Empty citations are valid.
func (s *SessionState) ValidCitationIDs() bool {
	for i, c := range s.Citations {
		if c.ID != i+1 {
			return false
		}
	}
	return true
}
