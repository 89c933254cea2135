package stage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"ai-answer-be/internal/pkg/logger"
	"ai-answer-be/pkg/agent/state"
	"ai-answer-be/pkg/serp"
)

const (
	// maxImageWorkers caps parallel image lookups per run
	maxImageWorkers = 5
	// maxImageQueryLen trims image search queries to a sane length
	maxImageQueryLen = 100
)

// EnrichImagesStage fills in the overview image and per-citation images
// via SERP image search. Disabled it passes the state through untouched,
// which keeps answer latency flat when image enrichment is not wanted.
// Lookups for the same query within one run are cached.
type EnrichImagesStage struct {
	client  *serp.Client
	enabled bool
	logger  logger.ILogger
}

func NewEnrichImagesStage(client *serp.Client, enabled bool, log logger.ILogger) *EnrichImagesStage {
	return &EnrichImagesStage{
		client:  client,
		enabled: enabled,
		logger:  log,
	}
}

func (st *EnrichImagesStage) Name() string {
	return NameEnrichImages
}

func (st *EnrichImagesStage) Run(ctx context.Context, s *state.SessionState) (*state.SessionState, error) {
	if !st.enabled {
		return s, nil
	}
	if st.client == nil || !st.client.Configured() {
		st.logger.Warn("EnrichImagesStage", "Missing SERP credentials, skipping images", map[string]interface{}{
			"session_id": s.SessionID,
		})
		return s, nil
	}

	// Run-scoped cache so repeated queries within one pipeline pass hit
	// the network once.
	seen := cache.New(5*time.Minute, 10*time.Minute)

	if s.OverviewImage == "" && s.Query != "" {
		s.OverviewImage = st.searchImage(ctx, seen, trimQuery(s.Query), "")
	}

	var pending []*state.Citation
	for i := range s.Citations {
		if strings.TrimSpace(s.Citations[i].Image) == "" {
			pending = append(pending, &s.Citations[i])
		}
	}
	if len(pending) == 0 {
		return s, nil
	}

	queryTerms := strings.Fields(s.Query)
	if len(queryTerms) > 3 {
		queryTerms = queryTerms[:3]
	}
	querySnippet := strings.Join(queryTerms, " ")

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxImageWorkers)
	for _, citation := range pending {
		wg.Add(1)
		sem <- struct{}{}
		go func(c *state.Citation) {
			defer wg.Done()
			defer func() { <-sem }()

			imageQuery := c.Title
			if querySnippet != "" {
				imageQuery = c.Title + " " + querySnippet
			}
			c.Image = st.searchImage(ctx, seen, trimQuery(imageQuery), c.URL)
		}(citation)
	}
	wg.Wait()

	enriched := 0
	for _, c := range s.Citations {
		if c.Image != "" {
			enriched++
		}
	}
	st.logger.Info("EnrichImagesStage", "Citations enriched", map[string]interface{}{
		"session_id": s.SessionID,
		"enriched":   enriched,
		"total":      len(s.Citations),
	})
	return s, nil
}

// searchImage runs an image search for the query, falling back to a
// search on the source's domain when nothing usable comes back.
func (st *EnrichImagesStage) searchImage(ctx context.Context, seen *cache.Cache, query, sourceURL string) string {
	if query == "" {
		return ""
	}

	if img := st.cachedSearch(ctx, seen, query); img != "" {
		return img
	}

	if sourceURL == "" {
		return ""
	}
	domain := strings.TrimPrefix(serp.Domain(sourceURL), "www.")
	if domain == "" || domain == query {
		return ""
	}
	return st.cachedSearch(ctx, seen, domain)
}

func (st *EnrichImagesStage) cachedSearch(ctx context.Context, seen *cache.Cache, query string) string {
	if cached, found := seen.Get(query); found {
		return cached.(string)
	}

	img := ""
	body, err := st.client.SearchImages(ctx, query)
	if err != nil {
		st.logger.Warn("EnrichImagesStage", "Image search failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
	} else {
		img = body.FirstImage()
	}

	seen.Set(query, img, cache.DefaultExpiration)
	return img
}

func trimQuery(q string) string {
	q = strings.TrimSpace(q)
	if len(q) > maxImageQueryLen {
		q = q[:maxImageQueryLen]
	}
	return q
}
