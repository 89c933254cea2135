package checkpoint

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"ai-answer-be/pkg/agent/state"
)

// CachedStore is a read-through cache in front of any Store. Hot sessions
// skip the disk/network read on consecutive requests; saves always write
// through to the backing store first so the cache never holds state that
// was not durably persisted.
type CachedStore struct {
	backing Store
	cache   *cache.Cache
}

var _ Store = &CachedStore{}

func NewCachedStore(backing Store) *CachedStore {
	return &CachedStore{
		backing: backing,
		cache:   cache.New(1*time.Hour, 10*time.Minute),
	}
}

func (c *CachedStore) Load(ctx context.Context, sessionID string) (*state.SessionState, bool, error) {
	if x, found := c.cache.Get(sessionID); found {
		return x.(*state.SessionState), true, nil
	}

	s, found, err := c.backing.Load(ctx, sessionID)
	if err != nil || !found {
		return nil, false, err
	}
	c.cache.Set(sessionID, s, cache.DefaultExpiration)
	return s, true, nil
}

func (c *CachedStore) Save(ctx context.Context, sessionID string, s *state.SessionState) error {
	if err := c.backing.Save(ctx, sessionID, s); err != nil {
		// Drop any stale cached copy: the backing store is the source of
		// truth and this save did not reach it.
		c.cache.Delete(sessionID)
		return err
	}
	c.cache.Set(sessionID, s, cache.DefaultExpiration)
	return nil
}
