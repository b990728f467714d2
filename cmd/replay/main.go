package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/holonetic/internal/engine"
	"github.com/danielpatrickdp/holonetic/internal/eval"
	"github.com/danielpatrickdp/holonetic/internal/gate"
	"github.com/danielpatrickdp/holonetic/internal/logging"
	"github.com/danielpatrickdp/holonetic/internal/replay"
	"github.com/danielpatrickdp/holonetic/internal/state"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to run store (DB mode)")
	runID := flag.String("run", "", "run to replay in DB mode (latest when empty)")
	persist := flag.Bool("persist", false, "in DB mode, store the replay as a child run")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	tol := flag.Float64("tol", 1e-9, "absolute state tolerance")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/runs.db [--run id] [--persist] [--tol x]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json [--tol x]")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath, *tol)
	} else {
		exitCode = runDBMode(*dbPath, *runID, *persist, *tol)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-mode

func runDBMode(dbPath, runID string, persist bool, tol float64) int {
	store, err := state.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	if runID == "" {
		runID, err = replay.LatestRunID(store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "find latest run: %v\n", err)
			return 2
		}
	}

	fx, err := replay.FromStore(store, runID, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load run: %v\n", err)
		return 2
	}
	fmt.Printf("Replaying %s\n\n", fx.Description)

	report, err := replay.Run(fx, eval.DefaultEvalConfig(), tol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	if persist {
		if err := persistReplay(store, fx, report.Results); err != nil {
			fmt.Fprintf(os.Stderr, "persist replay: %v\n", err)
			return 2
		}
	}

	return printComparison(fx.Expected, report)
}

// persistReplay stores the replayed steps as a new run whose parent is the
// original.
func persistReplay(store *state.Store, fx *replay.Fixture, results []engine.StepResult) error {
	cfg, err := fx.Config()
	if err != nil {
		return err
	}
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}

	run, err := store.CreateRun(fx.RunID, fx.Seed, fx.ConfigYAML)
	if err != nil {
		return err
	}
	status := state.StatusCompleted
	for _, res := range results {
		if err := store.AppendStep(state.FromResult(run.RunID, res)); err != nil {
			return err
		}
		entry, err := logging.NewEntry(run.RunID, res, gate.DecisionFor(engineCfg.Gate, res.StopCounter), engineCfg)
		if err != nil {
			return err
		}
		if err := logging.LogTransition(store.DB(), entry); err != nil {
			return err
		}
		if !res.Continue {
			status = state.StatusStopped
		}
	}
	fmt.Printf("Stored replay as run %s\n\n", run.RunID)
	return store.FinishRun(run.RunID, status)
}

// #endregion db-mode

// #region fixture-mode

func runFixtureMode(path string, tol float64) int {
	fx, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	report, err := replay.Run(fx, eval.DefaultEvalConfig(), tol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}
	return printComparison(fx.Expected, report)
}

// #endregion fixture-mode

// #region output

// printComparison outputs a comparison table and returns the exit code.
func printComparison(expected []replay.FixtureExpected, report replay.Report) int {
	fmt.Printf("%-6s| %-22s| %-22s| %s\n", "Step", "Expected", "Replayed", "Match")
	fmt.Printf("%-6s+%-23s+%-23s+%s\n", "------", "-----------------------", "-----------------------", "------")

	bad := make(map[int]bool)
	for _, m := range report.Mismatches {
		bad[m.Step] = true
	}

	total := len(report.Results)
	if len(expected) < total {
		total = len(expected)
	}
	for i := 0; i < total; i++ {
		exp := expected[i]
		got := report.Results[i]
		match := "OK"
		if bad[got.Step] {
			match = "DIFF"
		}
		fmt.Printf("%-6d| %-22s| %-22s| %s\n", got.Step,
			outcome(exp.Goal, exp.Rule, exp.StopCounter),
			outcome(got.Transition.To, string(got.Transition.Rule), got.StopCounter),
			match)
	}

	for _, m := range report.Mismatches {
		fmt.Printf("  %s\n", m)
	}
	fmt.Printf("\nSummary: %d steps, %d mismatches, eval: %s\n", len(report.Results), len(report.Mismatches), report.Eval.Reason)

	if !report.Passed() {
		return 1
	}
	return 0
}

func outcome(goal int, rule string, counter int) string {
	return fmt.Sprintf("goal=%d %s c=%d", goal, rule, counter)
}

// #endregion output
