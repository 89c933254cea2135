package progress

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLog(t *testing.T) (*Log, string) {
	t.Helper()
	dir := t.TempDir()
	log, err := NewLog(dir, nil, nil)
	if err != nil {
		t.Fatalf("NewLog: %v", err)
	}
	return log, dir
}

func TestLogAppendAndReadOrder(t *testing.T) {
	log, _ := newTestLog(t)

	assert.NoError(t, log.Start("sess-1", "search"))
	assert.NoError(t, log.End("sess-1", "search"))
	assert.NoError(t, log.Start("sess-1", "synthesize"))
	assert.NoError(t, log.Error("sess-1", "synthesize", "no search results to synthesize from"))

	events, err := log.Read("sess-1")
	assert.NoError(t, err)
	assert.Len(t, events, 4)

	assert.Equal(t, "search", events[0].Stage)
	assert.Equal(t, StatusStart, events[0].Status)
	assert.Equal(t, StatusEnd, events[1].Status)
	assert.Equal(t, "synthesize", events[2].Stage)
	assert.Equal(t, StatusError, events[3].Status)
	assert.Equal(t, "no search results to synthesize from", events[3].Message)
}

func TestLogUnknownSessionIsEmpty(t *testing.T) {
	log, _ := newTestLog(t)

	events, err := log.Read("never-ran")
	assert.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestLogSessionsAreIsolated(t *testing.T) {
	log, _ := newTestLog(t)

	assert.NoError(t, log.Start("sess-a", "search"))
	assert.NoError(t, log.Start("sess-b", "search"))
	assert.NoError(t, log.End("sess-b", "search"))

	a, err := log.Read("sess-a")
	assert.NoError(t, err)
	assert.Len(t, a, 1)

	b, err := log.Read("sess-b")
	assert.NoError(t, err)
	assert.Len(t, b, 2)
}

func TestLogSkipsMalformedLines(t *testing.T) {
	log, dir := newTestLog(t)

	assert.NoError(t, log.Start("sess-1", "search"))
	assert.NoError(t, log.End("sess-1", "search"))

	// Simulate a torn write at the tail of the file.
	path := filepath.Join(dir, "sess-1.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	assert.NoError(t, err)
	_, err = f.WriteString(`{"timestamp":"2026-01-01T00:00:0`)
	assert.NoError(t, err)
	assert.NoError(t, f.Close())

	events, err := log.Read("sess-1")
	assert.NoError(t, err)
	assert.Len(t, events, 2, "malformed line should be skipped, valid ones kept")
	assert.Equal(t, StatusStart, events[0].Status)
	assert.Equal(t, StatusEnd, events[1].Status)
}

func TestLogAppendSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	first, err := NewLog(dir, nil, nil)
	assert.NoError(t, err)
	assert.NoError(t, first.Start("sess-1", "search"))

	second, err := NewLog(dir, nil, nil)
	assert.NoError(t, err)
	assert.NoError(t, second.End("sess-1", "search"))

	events, err := second.Read("sess-1")
	assert.NoError(t, err)
	assert.Len(t, events, 2, "log is append-only across restarts")
}
