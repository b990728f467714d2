package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/holonetic/internal/engine"
	"github.com/danielpatrickdp/holonetic/internal/gate"
)

// #region log-transition
// LogTransition writes an entry to the transition_log table.
func LogTransition(db *sql.DB, entry TransitionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO transition_log (run_id, step, from_goal, to_goal, rule, cue, decision, reason, trace_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Step,
		entry.FromGoal,
		entry.ToGoal,
		entry.Rule,
		entry.Cue,
		entry.Decision,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.TraceJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log transition: %w", err)
	}
	return nil
}
// #endregion log-transition

// #region entry-from-result
// NewEntry builds a log row from one engine step and the gate verdict that
// followed it, with the full StepTrace attached.
func NewEntry(runID string, res engine.StepResult, decision gate.GateDecision, cfg engine.Config) (TransitionEntry, error) {
	trace, err := json.Marshal(NewStepTrace(res, cfg))
	if err != nil {
		return TransitionEntry{}, fmt.Errorf("marshal trace: %w", err)
	}
	return TransitionEntry{
		RunID:     runID,
		Step:      res.Step,
		FromGoal:  res.Transition.From,
		ToGoal:    res.Transition.To,
		Rule:      string(res.Transition.Rule),
		Cue:       res.Transition.Cue,
		Decision:  decision.Action,
		Reason:    decision.Reason,
		TraceJSON: string(trace),
		CreatedAt: time.Now().UTC(),
	}, nil
}
// #endregion entry-from-result

// #region list-transitions
// ListTransitions returns the logged steps of a run in step order.
func ListTransitions(db *sql.DB, runID string) ([]TransitionEntry, error) {
	rows, err := db.Query(
		`SELECT run_id, step, from_goal, to_goal, rule, cue, decision, reason, trace_json, created_at
		 FROM transition_log WHERE run_id = ? ORDER BY step ASC, id ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var entries []TransitionEntry
	for rows.Next() {
		var e TransitionEntry
		var reason, trace sql.NullString
		var createdStr string
		if err := rows.Scan(&e.RunID, &e.Step, &e.FromGoal, &e.ToGoal, &e.Rule, &e.Cue,
			&e.Decision, &reason, &trace, &createdStr); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		e.Reason = reason.String
		e.TraceJSON = trace.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Trace decodes the attached StepTrace.
func (e TransitionEntry) Trace() (StepTrace, error) {
	var t StepTrace
	if e.TraceJSON == "" {
		return t, fmt.Errorf("step %d has no trace", e.Step)
	}
	if err := json.Unmarshal([]byte(e.TraceJSON), &t); err != nil {
		return t, fmt.Errorf("unmarshal trace: %w", err)
	}
	return t, nil
}
// #endregion list-transitions

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
