package checkpoint

import (
	"context"

	"ai-answer-be/pkg/agent/state"
)

// recordVersion marks the checkpoint format so foreign or corrupted blobs
// can be detected on load and treated as absence.
const recordVersion = 1

// record is the durable form of a session state: one serialized blob,
// written wholesale on every save.
type record struct {
	Version int                 `json:"checkpoint_version"`
	State   *state.SessionState `json:"state"`
}

// Store persists session state between requests, keyed by session id.
// Implementations must treat unknown or corrupted records as absence
// (found=false, err=nil), not as errors: the conversation degrades to
// starting over rather than failing the request.
type Store interface {
	// Load returns the most recently saved state for the session.
	// found=false signals absence; callers construct a fresh state then.
	Load(ctx context.Context, sessionID string) (*state.SessionState, bool, error)

	// Save atomically replaces any prior record for the session with the
	// full serialized state. A partially written record must never be
	// visible to a concurrent Load.
	Save(ctx context.Context, sessionID string, s *state.SessionState) error
}
