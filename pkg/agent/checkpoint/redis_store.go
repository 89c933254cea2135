package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"ai-answer-be/internal/pkg/logger"
	"ai-answer-be/pkg/agent/state"
)

// RedisStore is a networked alternative to FileStore behind the same
// contract. Redis SET is already a full-value atomic replace, so no
// temp-and-rename dance is needed here.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	logger logger.ILogger
}

var _ Store = &RedisStore{}

func NewRedisStore(rdb *redis.Client, log logger.ILogger) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "checkpoint:", logger: log}
}

func (r *RedisStore) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) (*state.SessionState, bool, error) {
	data, err := r.rdb.Get(ctx, r.key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get checkpoint: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Warn("Checkpoint", "Corrupted redis checkpoint, treating as absent", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil, false, nil
	}
	if rec.Version != recordVersion || rec.State == nil || rec.State.SessionID == "" {
		r.logger.Warn("Checkpoint", "Foreign-format redis checkpoint, treating as absent", map[string]interface{}{
			"session_id": sessionID,
			"version":    rec.Version,
		})
		return nil, false, nil
	}

	return rec.State, true, nil
}

func (r *RedisStore) Save(ctx context.Context, sessionID string, s *state.SessionState) error {
	data, err := json.Marshal(record{Version: recordVersion, State: s})
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	// No TTL: retention/cleanup is an external concern, same as FileStore.
	if err := r.rdb.Set(ctx, r.key(sessionID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set checkpoint: %w", err)
	}
	return nil
}
