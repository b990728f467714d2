package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/holonetic/internal/logging"
	"github.com/danielpatrickdp/holonetic/internal/state"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", envOr("HOLONETIC_DB", ""), "path to run store")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show the steps of one run")
	trace := flag.Int("trace", 0, "with --run, show the full trace of one step")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/runs.db [--last N] [--run id [--trace step]] [--json]")
		os.Exit(2)
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *runID != "" && *trace > 0:
		err = runTraceMode(store, *runID, *trace)
	case *runID != "":
		err = runDetailMode(store, *runID, *jsonOut)
	default:
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID     string   `json:"run_id"`
	ParentID  string   `json:"parent_id,omitempty"`
	Seed      int64    `json:"seed"`
	Status    string   `json:"status"`
	Steps     int      `json:"steps"`
	StopStep  int      `json:"stop_step,omitempty"`
	FinalNorm *float64 `json:"final_norm,omitempty"`
	CreatedAt string   `json:"created_at"`
}

func runListMode(store *state.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	// store returns newest first, reverse for chronological
	rows := make([]listRow, len(runs))
	for i, r := range runs {
		lr := listRow{
			RunID:     r.RunID,
			ParentID:  r.ParentID,
			Seed:      r.Seed,
			Status:    r.Status,
			Steps:     r.Steps,
			StopStep:  r.StopStep,
			CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if latest, err := store.LatestStep(r.RunID); err == nil {
			n := vectorNorm(latest.State)
			lr.FinalNorm = &n
		}
		rows[len(runs)-1-i] = lr
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-8s  %-10s  %6s  %6s  %10s  %s\n", "Run", "Status", "Steps", "Stop", "Final Norm", "Time")
	fmt.Printf("%-8s+-%-10s+-%6s+-%6s+-%10s+-%s\n",
		"--------", "----------", "------", "------", "----------", "--------------------")
	for _, r := range rows {
		stop := "-"
		if r.StopStep > 0 {
			stop = strconv.Itoa(r.StopStep)
		}
		norm := "-"
		if r.FinalNorm != nil {
			norm = fmt.Sprintf("%.4f", *r.FinalNorm)
		}
		fmt.Printf("%-8s  %-10s  %6d  %6s  %10s  %s\n", shortID(r.RunID), r.Status, r.Steps, stop, norm, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type stepRow struct {
	Step        int       `json:"step"`
	Goal        int       `json:"goal"`
	Rule        string    `json:"rule"`
	Cue         int       `json:"cue"`
	StopCounter int       `json:"stop_counter"`
	Continue    bool      `json:"continue"`
	Force       []float64 `json:"force"`
	State       []float64 `json:"state"`
	StateNorm   float64   `json:"state_norm"`
}

func runDetailMode(store *state.Store, runID string, jsonOut bool) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	steps, err := store.ListSteps(runID)
	if err != nil {
		return err
	}
	entries, err := logging.ListTransitions(store.DB(), runID)
	if err != nil {
		return err
	}
	byStep := make(map[int]logging.TransitionEntry, len(entries))
	for _, e := range entries {
		byStep[e.Step] = e
	}

	rows := make([]stepRow, len(steps))
	for i, st := range steps {
		rows[i] = stepRow{
			Step:        st.Step,
			Goal:        st.GoalIndex,
			Rule:        byStep[st.Step].Rule,
			Cue:         byStep[st.Step].Cue,
			StopCounter: st.StopCounter,
			Continue:    st.Continue,
			Force:       st.Force,
			State:       st.State,
			StateNorm:   vectorNorm(st.State),
		}
	}

	if jsonOut {
		return printJSON(struct {
			Run   state.RunRecord `json:"run"`
			Steps []stepRow       `json:"steps"`
		}{run, rows})
	}

	fmt.Printf("Run:     %s\n", run.RunID)
	if run.ParentID != "" {
		fmt.Printf("Parent:  %s\n", run.ParentID)
	}
	fmt.Printf("Seed:    %d\n", run.Seed)
	fmt.Printf("Status:  %s (%d steps)\n", run.Status, run.Steps)
	if run.StopStep > 0 {
		fmt.Printf("Stopped: step %d\n", run.StopStep)
	}
	fmt.Printf("Created: %s\n\n", run.CreatedAt.Format("2006-01-02T15:04:05Z"))

	fmt.Printf("%5s  %4s  %-9s  %3s  %7s  %-4s  %s\n", "Step", "Goal", "Rule", "Cue", "Counter", "Cont", "State")
	for _, r := range rows {
		cont := "yes"
		if !r.Continue {
			cont = "no"
		}
		fmt.Printf("%5d  %4d  %-9s  %3d  %7d  %-4s  %s\n", r.Step, r.Goal, r.Rule, r.Cue, r.StopCounter, cont, formatVector(r.State))
	}
	return nil
}

// #endregion detail-mode

// #region trace-mode

func runTraceMode(store *state.Store, runID string, step int) error {
	entries, err := logging.ListTransitions(store.DB(), runID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Step != step {
			continue
		}
		tr, err := e.Trace()
		if err != nil {
			return err
		}
		return printJSON(tr)
	}
	return fmt.Errorf("run %s has no logged step %d", runID, step)
}

// #endregion trace-mode

// #region helpers

func vectorNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 4, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
