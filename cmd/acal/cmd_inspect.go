package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/assembly-calculus/internal/store"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [run-id]",
		Short: "List recorded runs or show one run's winner history",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInspect,
	}

	cmd.Flags().String("area", "", "Only show winners for this area")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dbDir, _ := cmd.Flags().GetString("db")
	jsonOut, _ := cmd.Flags().GetBool("json")
	area, _ := cmd.Flags().GetString("area")

	s, err := store.NewSQLiteRunStore(dbDir)
	if err != nil {
		return err
	}
	defer s.Close()

	if len(args) == 0 {
		return listRuns(ctx, s, jsonOut)
	}
	return showRun(ctx, s, args[0], area, jsonOut)
}

func listRuns(ctx context.Context, s store.RunStore, jsonOut bool) error {
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	for _, run := range runs {
		fmt.Printf("%s  %s  seed=%d p=%.3f  %s\n",
			run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.Seed, run.P, run.Recipe)
	}
	return nil
}

func showRun(ctx context.Context, s store.RunStore, runID, area string, jsonOut bool) error {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run not found: %s", runID)
	}

	records, err := s.GetWinners(ctx, runID, area)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"run":     run,
			"winners": records,
		})
	}

	fmt.Printf("Run %s (created %s, seed=%d, p=%.3f)\n",
		run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.Seed, run.P)
	for _, rec := range records {
		fmt.Printf("  round %d  %s: %v\n", rec.Round, rec.Area, rec.Winners)
	}
	return nil
}
