package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/assembly-calculus/internal/brain"
	"github.com/nvandessel/assembly-calculus/internal/logging"
	"github.com/nvandessel/assembly-calculus/internal/recipe"
	"github.com/nvandessel/assembly-calculus/internal/store"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Bake a recipe and run firing rounds against it",
		Long: `Run bakes the brain described by a recipe file and executes repeated
firing rounds. Each --fire flag names one projection as source:dest
(e.g. --fire stim:A --fire A:B); all projections fire together every
round. Winner sets are persisted to the run database after each round.`,
		RunE: runRun,
	}

	cmd.Flags().String("recipe", "recipe.yaml", "Path to the brain recipe")
	cmd.Flags().StringArray("fire", nil, "Projection to fire each round, as source:dest (repeatable)")
	cmd.Flags().Int("rounds", 10, "Number of firing rounds")
	cmd.Flags().Bool("no-plasticity", false, "Disable Hebbian updates for this run")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	recipePath, _ := cmd.Flags().GetString("recipe")
	fireSpecs, _ := cmd.Flags().GetStringArray("fire")
	rounds, _ := cmd.Flags().GetInt("rounds")
	noPlasticity, _ := cmd.Flags().GetBool("no-plasticity")
	dbDir, _ := cmd.Flags().GetString("db")
	jsonOut, _ := cmd.Flags().GetBool("json")

	if len(fireSpecs) == 0 {
		return fmt.Errorf("at least one --fire source:dest is required")
	}
	if rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", rounds)
	}

	rec, err := recipe.LoadFromFile(recipePath)
	if err != nil {
		return err
	}
	b, err := rec.Bake()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(rec.Logging.Level, os.Stderr)
	roundLog := logging.NewRoundLogger(dbDir, rec.Logging.Level)
	defer roundLog.Close()
	b.Engine.SetRoundLogger(roundLog)

	if noPlasticity {
		b.Engine.SetPlasticity(false)
	}

	request, err := parseFireSpecs(b, fireSpecs)
	if err != nil {
		return err
	}

	s, err := store.NewSQLiteRunStore(dbDir)
	if err != nil {
		return err
	}
	defer s.Close()

	runID, err := s.CreateRun(ctx, store.Run{Seed: rec.Seed, P: rec.P, Recipe: recipePath})
	if err != nil {
		return err
	}

	logger.Info("starting run",
		"run_id", runID,
		"rounds", rounds,
		"seed", rec.Seed,
		"plasticity", b.Engine.PlasticityEnabled())

	// history collects each touched area's winner set per round so we can
	// report assembly convergence at the end.
	touched := touchedAreas(b, request)
	history := make(map[string][][]int, len(touched))

	for i := 0; i < rounds; i++ {
		if err := b.Engine.Fire(request); err != nil {
			return fmt.Errorf("round %d: %w", i, err)
		}

		for _, name := range touched {
			winners, err := b.Engine.Winners(b.Areas[name])
			if err != nil {
				return fmt.Errorf("round %d: %w", i, err)
			}
			history[name] = append(history[name], winners)

			if err := s.RecordWinners(ctx, runID, store.WinnerRecord{
				Round:   i,
				Area:    name,
				Winners: winners,
			}); err != nil {
				return fmt.Errorf("round %d: %w", i, err)
			}
			logger.Log(ctx, logging.LevelTrace, "round winners",
				"round", i, "area", name, "winners", winners)
		}
	}

	return printRunResult(jsonOut, runID, rounds, touched, history)
}

// parseFireSpecs translates source:dest flags into an engine firing request.
func parseFireSpecs(b *recipe.Brain, specs []string) (map[brain.Part][]*brain.Area, error) {
	request := make(map[brain.Part][]*brain.Area, len(specs))
	for _, spec := range specs {
		srcName, dstName, ok := strings.Cut(spec, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --fire %q: want source:dest", spec)
		}

		var src brain.Part
		if area, ok := b.Areas[srcName]; ok {
			src = area
		} else if stim, ok := b.Stimuli[srcName]; ok {
			src = stim
		} else {
			return nil, fmt.Errorf("invalid --fire %q: unknown source %q", spec, srcName)
		}

		dst, ok := b.Areas[dstName]
		if !ok {
			return nil, fmt.Errorf("invalid --fire %q: unknown destination area %q", spec, dstName)
		}

		request[src] = append(request[src], dst)
	}
	return request, nil
}

// touchedAreas returns the sorted names of every area a request fires into.
func touchedAreas(b *recipe.Brain, request map[brain.Part][]*brain.Area) []string {
	seen := make(map[string]bool)
	for _, dests := range request {
		for _, dst := range dests {
			seen[dst.Name()] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func printRunResult(jsonOut bool, runID string, rounds int, touched []string, history map[string][][]int) error {
	type areaResult struct {
		Area    string `json:"area"`
		Winners []int  `json:"winners"`
		// Stability is the overlap between the last two rounds' winner
		// sets, a measure of assembly convergence.
		Stability int `json:"stability"`
	}

	results := make([]areaResult, 0, len(touched))
	for _, name := range touched {
		sets := history[name]
		last := sets[len(sets)-1]
		stability := len(last)
		if len(sets) >= 2 {
			stability = brain.Overlap(sets[len(sets)-2], last)
		}
		results = append(results, areaResult{Area: name, Winners: last, Stability: stability})
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"run_id": runID,
			"rounds": rounds,
			"areas":  results,
		})
	}

	fmt.Printf("Run %s finished after %d rounds.\n", runID, rounds)
	for _, r := range results {
		fmt.Printf("  %s: %d winners, stability %d/%d\n", r.Area, len(r.Winners), r.Stability, len(r.Winners))
	}
	return nil
}
