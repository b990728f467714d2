package state

import (
	"time"

	"github.com/danielpatrickdp/holonetic/internal/engine"
)

// #region run-status
// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed" // ran all configured steps
	StatusStopped   = "stopped"   // stop condition ended the run early
)

// #endregion run-status

// #region run-record
// RunRecord is one persisted engine run: the seed and config needed to
// reproduce it, plus summary fields maintained as steps are appended.
type RunRecord struct {
	RunID      string
	ParentID   string // set when the run is a replay of another run
	Seed       int64
	ConfigYAML string
	Status     string
	Steps      int
	StopStep   int // first step whose Continue was false, 0 if none
	CreatedAt  time.Time
	FinishedAt time.Time
}

// #endregion run-record

// #region step-record
// StepRecord is the persisted outcome of one engine step.
type StepRecord struct {
	RunID       string
	Step        int
	PrevState   []float64
	State       []float64
	Force       []float64
	GoalIndex   int
	StopCounter int
	Continue    bool
	CreatedAt   time.Time
}

// FromResult flattens an engine step into a StepRecord for runID.
func FromResult(runID string, res engine.StepResult) StepRecord {
	return StepRecord{
		RunID:       runID,
		Step:        res.Step,
		PrevState:   res.PrevState,
		State:       res.State,
		Force:       res.Update.Force,
		GoalIndex:   res.Transition.To,
		StopCounter: res.StopCounter,
		Continue:    res.Continue,
		CreatedAt:   time.Now().UTC(),
	}
}

// #endregion step-record
