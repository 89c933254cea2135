package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ai-answer-be/internal/pkg/logger"
	"ai-answer-be/pkg/agent/state"
)

// FileStore keeps one JSON checkpoint file per session under a directory.
// Saves go through a temp file + rename so a concurrent Load never sees a
// half-written record.
type FileStore struct {
	dir    string
	logger logger.ILogger
}

var _ Store = &FileStore{}

func NewFileStore(dir string, log logger.ILogger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	return &FileStore{dir: dir, logger: log}, nil
}

func (f *FileStore) path(sessionID string) string {
	// Session ids are caller-generated UUIDs, but sanitize anyway so a
	// crafted id cannot escape the checkpoint directory.
	return filepath.Join(f.dir, filepath.Base(sessionID)+".json")
}

func (f *FileStore) Load(ctx context.Context, sessionID string) (*state.SessionState, bool, error) {
	data, err := os.ReadFile(f.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		f.logger.Warn("Checkpoint", "Corrupted checkpoint, treating as absent", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil, false, nil
	}
	if rec.Version != recordVersion || rec.State == nil || rec.State.SessionID == "" {
		f.logger.Warn("Checkpoint", "Foreign-format checkpoint, treating as absent", map[string]interface{}{
			"session_id": sessionID,
			"version":    rec.Version,
		})
		return nil, false, nil
	}

	return rec.State, true, nil
}

func (f *FileStore) Save(ctx context.Context, sessionID string, s *state.SessionState) error {
	data, err := json.Marshal(record{Version: recordVersion, State: s})
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	target := f.path(sessionID)
	tmp, err := os.CreateTemp(f.dir, filepath.Base(sessionID)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp checkpoint: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace checkpoint: %w", err)
	}

	return nil
}
