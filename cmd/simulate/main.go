package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/danielpatrickdp/holonetic/internal/config"
	"github.com/danielpatrickdp/holonetic/internal/engine"
	"github.com/danielpatrickdp/holonetic/internal/eval"
	"github.com/danielpatrickdp/holonetic/internal/force"
	"github.com/danielpatrickdp/holonetic/internal/logging"
	"github.com/danielpatrickdp/holonetic/internal/state"
)

// #region main
func main() {
	configPath := flag.String("config", envOr("HOLONETIC_CONFIG", ""), "path to run config YAML (defaults when empty)")
	dbPath := flag.String("db", envOr("HOLONETIC_DB", ""), "path to run store; no persistence when empty")
	steps := flag.Int("steps", -1, "override run.steps")
	seed := flag.Int64("seed", 0, "override run.seed (0 keeps the config value)")
	quiet := flag.Bool("quiet", false, "only print the summary")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *steps >= 0 {
		cfg.Run.Steps = *steps
	}
	if *seed != 0 {
		cfg.Run.Seed = *seed
	}
	if cfg.Run.Seed == 0 {
		cfg.Run.Seed = time.Now().UnixNano()
	}

	e, err := cfg.Build(cfg.Run.Seed)
	if err != nil {
		log.Fatalf("failed to build engine: %v", err)
	}
	producer, err := force.NewUniform(rand.New(rand.NewSource(cfg.Run.Seed+1)), cfg.UniformForce())
	if err != nil {
		log.Fatalf("failed to build force producer: %v", err)
	}

	var store *state.Store
	var runID string
	if *dbPath != "" {
		store, err = state.NewStore(*dbPath)
		if err != nil {
			log.Fatalf("failed to open store: %v", err)
		}
		defer store.Close()

		yamlCfg, err := cfg.Marshal()
		if err != nil {
			log.Fatalf("failed to marshal config: %v", err)
		}
		run, err := store.CreateRun("", cfg.Run.Seed, string(yamlCfg))
		if err != nil {
			log.Fatalf("failed to create run: %v", err)
		}
		runID = run.RunID
	}

	fmt.Println("Bio-holonetic engine ready.")
	fmt.Printf("  Steps: %d | Seed: %d | Sigma: %.3f | Policy: %s\n",
		cfg.Run.Steps, cfg.Run.Seed, cfg.Engine.NoiseSigma, cfg.Engine.Policy)
	if runID != "" {
		fmt.Printf("  DB: %s | Run: %s\n", *dbPath, runID)
	}

	results := make([]engine.StepResult, 0, cfg.Run.Steps)
	status := state.StatusCompleted
	for i := 0; i < cfg.Run.Steps; i++ {
		fv, err := producer.Next()
		if err != nil {
			log.Fatalf("force producer: %v", err)
		}
		res, err := e.Advance(fv)
		if err != nil {
			log.Fatalf("step %d: %v", i+1, err)
		}
		results = append(results, res)

		if store != nil {
			persistStep(store, runID, e, res)
		}
		if !*quiet {
			fmt.Printf("[step %3d] goal=%d rule=%-9s counter=%d state=%s\n",
				res.Step, res.Transition.To, res.Transition.Rule, res.StopCounter, formatVector(res.State))
		}

		if !res.Continue && cfg.Run.StopEarly {
			status = state.StatusStopped
			fmt.Printf("Stop condition reached at step %d: %s\n", res.Step, e.Decision().Reason)
			break
		}
	}

	if store != nil {
		if err := store.FinishRun(runID, status); err != nil {
			log.Printf("finish run: %v", err)
		}
	}

	printSummary(eval.NewEvalHarness(eval.DefaultEvalConfig()).Run(results))
}
// #endregion main

// #region persist
func persistStep(store *state.Store, runID string, e *engine.Engine, res engine.StepResult) {
	if err := store.AppendStep(state.FromResult(runID, res)); err != nil {
		log.Printf("append step %d: %v", res.Step, err)
		return
	}
	entry, err := logging.NewEntry(runID, res, e.Decision(), e.Config())
	if err != nil {
		log.Printf("trace step %d: %v", res.Step, err)
		return
	}
	if err := logging.LogTransition(store.DB(), entry); err != nil {
		log.Printf("logging error: %v", err)
	}
}
// #endregion persist

// #region output
func printSummary(r eval.EvalResult) {
	s := r.Summary
	fmt.Printf("\nSummary: %d steps, %d goal changes, final norm %.4f, max |gap| %.4f\n",
		s.Steps, s.GoalChanges, s.FinalStateNorm, s.MaxAbsGap)
	if s.StopStep > 0 {
		fmt.Printf("  stopped at step %d\n", s.StopStep)
	}
	goals := make([]int, 0, len(s.GoalDwell))
	for g := range s.GoalDwell {
		goals = append(goals, g)
	}
	sort.Ints(goals)
	dwell := make([]string, len(goals))
	for i, g := range goals {
		dwell[i] = fmt.Sprintf("goal%d=%d", g, s.GoalDwell[g])
	}
	fmt.Printf("  dwell: %s\n", strings.Join(dwell, " "))
	fmt.Printf("  rules: cue=%d region=%d deviation=%d retain=%d\n",
		s.RuleCounts["cue"], s.RuleCounts["region"], s.RuleCounts["deviation"], s.RuleCounts["retain"])
	fmt.Printf("  eval: %s\n", r.Reason)
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 4, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
// #endregion output

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
// #endregion helpers
