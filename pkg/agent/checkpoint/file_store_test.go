package checkpoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ai-answer-be/internal/pkg/logger"
	"ai-answer-be/pkg/agent/state"

	"github.com/stretchr/testify/assert"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }
func (noopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (noopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), noopLogger{})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	s := state.New("sess-1")
	s.Query = "capital of Kenya"
	s.AddTurn(state.RoleUser, "capital of Kenya")
	s.Citations = []state.Citation{{ID: 1, Title: "Nairobi", URL: "https://en.wikipedia.org/wiki/Nairobi"}}

	assert.NoError(t, store.Save(ctx, "sess-1", s))

	loaded, found, err := store.Load(ctx, "sess-1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "sess-1", loaded.SessionID)
	assert.Equal(t, s.History, loaded.History)
	assert.Equal(t, s.Citations, loaded.Citations)
}

func TestFileStoreUnknownSessionIsAbsent(t *testing.T) {
	store := newTestFileStore(t)

	loaded, found, err := store.Load(context.Background(), "never-saved")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, loaded)
}

func TestFileStoreCorruptRecordIsAbsent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated json", `{"checkpoint_version":1,"state":{"session_id":"s`},
		{"not json at all", "\x00\x01garbage"},
		{"wrong version", `{"checkpoint_version":99,"state":{"session_id":"sess-1"}}`},
		{"missing state", `{"checkpoint_version":1}`},
		{"foreign object", `{"something":"else"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			store, err := NewFileStore(dir, noopLogger{})
			assert.NoError(t, err)

			path := filepath.Join(dir, "sess-1.json")
			assert.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			loaded, found, err := store.Load(context.Background(), "sess-1")
			assert.NoError(t, err, "corrupt records must read as absence, not failure")
			assert.False(t, found)
			assert.Nil(t, loaded)
		})
	}
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	first := state.New("sess-1")
	first.Overview = "first answer"
	assert.NoError(t, store.Save(ctx, "sess-1", first))

	second := state.New("sess-1")
	second.Overview = "second answer"
	assert.NoError(t, store.Save(ctx, "sess-1", second))

	loaded, found, err := store.Load(ctx, "sess-1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "second answer", loaded.Overview)
}

func TestFileStoreSessionsAreIsolated(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	a := state.New("sess-a")
	a.Overview = "answer a"
	b := state.New("sess-b")
	b.Overview = "answer b"

	assert.NoError(t, store.Save(ctx, "sess-a", a))
	assert.NoError(t, store.Save(ctx, "sess-b", b))

	loadedA, _, _ := store.Load(ctx, "sess-a")
	loadedB, _, _ := store.Load(ctx, "sess-b")
	assert.Equal(t, "answer a", loadedA.Overview)
	assert.Equal(t, "answer b", loadedB.Overview)
}

func TestFileStorePathSanitized(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, noopLogger{})
	assert.NoError(t, err)

	s := state.New("../../escape")
	s.SessionID = "../../escape"
	assert.NoError(t, store.Save(context.Background(), "../../escape", s))

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1, "checkpoint must stay inside the store directory")
}

func TestCachedStoreReadThrough(t *testing.T) {
	backing := newTestFileStore(t)
	store := NewCachedStore(backing)
	ctx := context.Background()

	s := state.New("sess-1")
	s.Overview = "cached answer"
	assert.NoError(t, store.Save(ctx, "sess-1", s))

	// Remove the backing file; the cache should still serve the state.
	assert.NoError(t, os.Remove(filepath.Join(backing.dir, "sess-1.json")))

	loaded, found, err := store.Load(ctx, "sess-1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cached answer", loaded.Overview)
}
