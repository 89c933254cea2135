package serp

import "encoding/json"

// apiResponse is the BrightData envelope: the parsed SERP JSON sits in
// "body", which arrives either as an object or as a JSON-encoded string.
type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

// Body is the parsed SERP payload for one search request
type Body struct {
	KnowledgeGraph json.RawMessage `json:"knowledge_graph"`
	Images         []ImageItem     `json:"images"`
	Organic        []OrganicResult `json:"organic"`
}

// OrganicResult is one organic hit in the SERP response
type OrganicResult struct {
	Title              string   `json:"title"`
	Link               string   `json:"link"`
	Description        string   `json:"description"`
	Snippet            string   `json:"snippet"`
	SnippetHighlighted []string `json:"snippet_highlighted"`
	Position           int      `json:"position"`
	Date               string   `json:"date"`
	Cite               string   `json:"cite"`
	Thumbnail          string   `json:"thumbnail"`
	Breadcrumb         string   `json:"breadcrumb"`
	CachedPageLink     string   `json:"cached_page_link"`
	Image              string   `json:"image"`
	OGImage            string   `json:"og_image"`
	PreviewImage       string   `json:"preview_image"`
	AboutThisResult    struct {
		Keywords []string `json:"keywords"`
	} `json:"about_this_result"`
}

// ImageItem is one entry of the images block. Field availability varies
// per result type, hence the spread of candidate URL fields.
type ImageItem struct {
	Original  string `json:"original"`
	URL       string `json:"url"`
	Src       string `json:"src"`
	Thumbnail string `json:"thumbnail"`
	Image     string `json:"image"`
	Link      string `json:"link"`
}

// knowledgeGraph is decoded leniently: some queries return an object here,
// others a list or nothing, and a shape mismatch must not fail the search.
type knowledgeGraph struct {
	Image string `json:"image"`
}

// KnowledgeGraphImage returns the curated knowledge-panel image, or ""
func (b *Body) KnowledgeGraphImage() string {
	if len(b.KnowledgeGraph) == 0 {
		return ""
	}
	var kg knowledgeGraph
	if err := json.Unmarshal(b.KnowledgeGraph, &kg); err != nil {
		return ""
	}
	return kg.Image
}
