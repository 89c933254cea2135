package main

import (
	"flag"
	"fmt"
	"os"

	"ai-answer-be/pkg/agent/progress"

	"github.com/fatih/color"
)

// Prints a session's recorded pipeline progress, colored by status.
// Usage: go run ./cmd/tail_progress -dir storage/progress <session_id>
func main() {
	dir := flag.String("dir", "storage/progress", "progress log directory")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tail_progress [-dir <progress dir>] <session_id>")
		os.Exit(2)
	}
	sessionID := flag.Arg(0)

	log, err := progress.NewLog(*dir, nil, nil)
	if err != nil {
		color.Red("Failed to open progress log: %v", err)
		os.Exit(1)
	}

	events, err := log.Read(sessionID)
	if err != nil {
		color.Red("Failed to read progress for %s: %v", sessionID, err)
		os.Exit(1)
	}
	if len(events) == 0 {
		color.Yellow("No progress recorded for session %s", sessionID)
		return
	}

	color.Cyan("Progress for session %s (%d events)\n", sessionID, len(events))
	for _, e := range events {
		line := fmt.Sprintf("%s  %-20s %s", e.Timestamp, e.Stage, e.Status)
		if e.Message != "" {
			line += "  " + e.Message
		}
		// Event text can carry '%', so never use it as the format string
		switch e.Status {
		case progress.StatusError:
			color.Red("%s", line)
		case progress.StatusEnd:
			color.Green("%s", line)
		default:
			color.Yellow("%s", line)
		}
	}
}
