package replay

import (
	"fmt"

	"github.com/danielpatrickdp/holonetic/internal/logging"
	"github.com/danielpatrickdp/holonetic/internal/state"
)

// #region from-store
// FromStore rebuilds a fully scripted fixture from a persisted run and its
// transition log. last > 0 keeps only the first last steps.
func FromStore(store *state.Store, runID string, last int) (*Fixture, error) {
	run, err := store.GetRun(runID)
	if err != nil {
		return nil, err
	}
	entries, err := logging.ListTransitions(store.DB(), runID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("run %s has no logged transitions", runID)
	}
	if last > 0 && last < len(entries) {
		entries = entries[:last]
	}

	traces := make([]logging.StepTrace, 0, len(entries))
	for _, e := range entries {
		tr, err := e.Trace()
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}
		traces = append(traces, tr)
	}

	desc := fmt.Sprintf("run %s (%s, %d steps, seed %d)", run.RunID, run.Status, len(traces), run.Seed)
	return FromTraces(desc, run.RunID, run.ConfigYAML, run.Seed, traces), nil
}

// LatestRunID returns the most recently created run.
func LatestRunID(store *state.Store) (string, error) {
	runs, err := store.ListRuns(1)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs in store: %w", state.ErrNotFound)
	}
	return runs[0].RunID, nil
}

// #endregion from-store
