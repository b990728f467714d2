package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/holonetic/internal/replay"
	"github.com/danielpatrickdp/holonetic/internal/state"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to run store")
	runID := flag.String("run", "", "run to export (latest when empty)")
	last := flag.Int("last", 0, "export only the first N steps (all when 0)")
	seedOnly := flag.Bool("seed-only", false, "drop recorded cues and noise, replay from the seed")
	noState := flag.Bool("no-state", false, "omit exact states from expectations")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/runs.db --out path/to/fixture.json [--run id] [--last N] [--seed-only] [--no-state]")
		os.Exit(2)
	}

	if err := run(*dbPath, *runID, *last, *seedOnly, *noState, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath, runID string, last int, seedOnly, noState bool, outPath string) error {
	store, err := state.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	if runID == "" {
		runID, err = replay.LatestRunID(store)
		if err != nil {
			return fmt.Errorf("find latest run: %w", err)
		}
	}

	fx, err := replay.FromStore(store, runID, last)
	if err != nil {
		return err
	}
	if seedOnly {
		fx.Cues = nil
		fx.NoiseDraws = nil
	}
	if noState {
		for i := range fx.Expected {
			fx.Expected[i].State = nil
		}
	}

	if err := replay.WriteFixture(outPath, fx); err != nil {
		return err
	}
	fmt.Printf("Wrote %d steps of run %s to %s\n", len(fx.Expected), runID, outPath)
	return nil
}

// #endregion export
