package logger

import (
	"bufio"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
)

// maxScanEntries bounds how far GetLogById walks back through the file
const maxScanEntries = 10000

// LogEntry is one decoded line of the JSON log file. Zap writes no id, so
// ids are derived on read as the md5 of the raw line; they are stable as
// long as the line itself survives rotation.
type LogEntry struct {
	Id        string                 `json:"id"`
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Module    string                 `json:"module,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// GetLogs returns entries newest first, optionally filtered by level and
// paginated by offset/limit. The active file is scanned in full; rotation
// caps it at 10MB, which keeps this acceptable for an admin endpoint. A
// missing file means no logs yet, not an error.
func (l *ZapLogger) GetLogs(level string, limit, offset int) ([]LogEntry, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []LogEntry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		var entry LogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			// Torn or foreign line, skip it
			continue
		}
		if level != "" && entry.Level != level {
			continue
		}
		if entry.Id == "" {
			entry.Id = fmt.Sprintf("%x", md5.Sum(line))
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// File order is oldest first; the dashboard wants newest first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	if offset >= len(entries) {
		return []LogEntry{}, nil
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end], nil
}

// GetLogById finds one entry by its line hash, scanning at most
// maxScanEntries recent records.
func (l *ZapLogger) GetLogById(id string) (*LogEntry, error) {
	entries, err := l.GetLogs("", maxScanEntries, 0)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Id == id {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("log not found")
}
