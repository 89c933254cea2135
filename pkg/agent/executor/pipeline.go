package executor

import (
	"context"
	"fmt"

	"ai-answer-be/internal/pkg/logger"
	"ai-answer-be/pkg/agent/progress"
	"ai-answer-be/pkg/agent/state"
)

// Stage is one unit of pipeline work. Run consumes the current session
// state and returns the updated one. On internal failure a stage returns
// its input with the affected fields at safe defaults, plus a non-nil
// error carrying the human-readable reason. The error is recorded as a
// progress event, never propagated past the executor. The returned state
// must always be usable.
type Stage interface {
	Name() string
	Run(ctx context.Context, s *state.SessionState) (*state.SessionState, error)
}

// PipelineExecutor runs an ordered list of stages against a session state.
// Stage order is fixed and total: no stage is skipped based on state, no
// branching, no parallel execution. The executor always completes all
// stages and returns a state, even when individual stages degraded.
type PipelineExecutor struct {
	stages   []Stage
	progress *progress.Log
	logger   logger.ILogger
}

func NewPipelineExecutor(stages []Stage, progressLog *progress.Log, log logger.ILogger) *PipelineExecutor {
	return &PipelineExecutor{
		stages:   stages,
		progress: progressLog,
		logger:   log,
	}
}

// Stages returns the configured stage names in execution order
func (p *PipelineExecutor) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Execute runs every stage in sequence, instrumenting each with
// start/end (or start/error) progress events. It returns the final state;
// persistence is the caller's responsibility.
func (p *PipelineExecutor) Execute(ctx context.Context, s *state.SessionState) *state.SessionState {
	current := s
	for _, stage := range p.stages {
		p.logProgress(p.progress.Start(current.SessionID, stage.Name()))

		next, err := p.runContained(ctx, stage, current)
		if next != nil {
			current = next
		}

		if err != nil {
			p.logger.Warn("Pipeline", "Stage degraded", map[string]interface{}{
				"session_id": current.SessionID,
				"stage":      stage.Name(),
				"error":      err.Error(),
			})
			p.logProgress(p.progress.Error(current.SessionID, stage.Name(), err.Error()))
			continue
		}
		p.logProgress(p.progress.End(current.SessionID, stage.Name()))
	}
	return current
}

// runContained invokes the stage and converts a panic into a stage
// failure. Stages are contractually required not to panic; this keeps a
// misbehaving one from aborting the run.
func (p *PipelineExecutor) runContained(ctx context.Context, stage Stage, s *state.SessionState) (next *state.SessionState, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = s
			err = fmt.Errorf("stage panicked: %v", r)
		}
	}()
	return stage.Run(ctx, s)
}

func (p *PipelineExecutor) logProgress(err error) {
	if err != nil {
		p.logger.Warn("Pipeline", "Failed to write progress event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
