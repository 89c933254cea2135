package progress

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-answer-be/internal/pkg/logger"
)

// Topic is the in-process bus topic live progress events are published on.
// The websocket hub subscribes to it and fans events out per session.
const Topic = "agent.progress"

// BusEvent is the envelope published on the watermill bus: the event plus
// the session it belongs to, so subscribers can route without re-reading
// the log file.
type BusEvent struct {
	SessionID string `json:"session_id"`
	Event     Event  `json:"event"`
}

// Log is the append-only per-session progress log. Each session gets one
// line-delimited JSON file so a poller can consume a growing log
// incrementally; every append is also published on the in-process bus for
// live websocket streaming.
type Log struct {
	dir    string
	pubSub *gochannel.GoChannel
	logger logger.ILogger

	// Serializes appends within this process. Appends within one request
	// are sequential by design; the mutex only guards the file handle
	// discipline across sessions sharing the directory.
	mu sync.Mutex
}

// NewLog creates the progress log rooted at dir. pubSub may be nil (live
// streaming is then disabled but the file log keeps working), and so may
// log for read-only tooling.
func NewLog(dir string, pubSub *gochannel.GoChannel, log logger.ILogger) (*Log, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create progress dir: %w", err)
	}
	return &Log{dir: dir, pubSub: pubSub, logger: log}, nil
}

func (l *Log) warn(message string, details map[string]interface{}) {
	if l.logger != nil {
		l.logger.Warn("Progress", message, details)
	}
}

func (l *Log) path(sessionID string) string {
	return filepath.Join(l.dir, filepath.Base(sessionID)+".jsonl")
}

// Append adds one event to the end of the session's log
func (l *Log) Append(sessionID string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal progress event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(l.path(sessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open progress log: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append progress event: %w", err)
	}

	l.publish(sessionID, event)
	return nil
}

// Start appends a start event for the stage
func (l *Log) Start(sessionID, stage string) error {
	return l.Append(sessionID, newEvent(stage, StatusStart, ""))
}

// End appends an end event for the stage
func (l *Log) End(sessionID, stage string) error {
	return l.Append(sessionID, newEvent(stage, StatusEnd, ""))
}

// Error appends an error event for the stage with a human-readable message
func (l *Log) Error(sessionID, stage, msg string) error {
	return l.Append(sessionID, newEvent(stage, StatusError, msg))
}

// Read returns all events for the session in write order. An unknown
// session yields an empty slice, not an error. Malformed lines (e.g. a
// torn tail write after a crash) are skipped with a warning.
func (l *Log) Read(sessionID string) ([]Event, error) {
	file, err := os.Open(l.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return []Event{}, nil
		}
		return nil, fmt.Errorf("open progress log: %w", err)
	}
	defer file.Close()

	events := []Event{}
	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			l.warn("Skipping malformed progress line", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan progress log: %w", err)
	}

	return events, nil
}

func (l *Log) publish(sessionID string, event Event) {
	if l.pubSub == nil {
		return
	}
	payload, err := json.Marshal(BusEvent{SessionID: sessionID, Event: event})
	if err != nil {
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := l.pubSub.Publish(Topic, msg); err != nil {
		l.warn("Failed to publish progress event", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}
