// Package store defines the RunStore interface for recording and querying
// simulation runs: which brain was simulated and which winner sets each
// round produced.
package store

import (
	"context"
	"time"
)

// Run describes one simulation run.
type Run struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Seed      uint64    `json:"seed"`
	P         float64   `json:"p"`
	Recipe    string    `json:"recipe,omitempty"` // path or label of the recipe used
}

// WinnerRecord is one area's winner set after one firing round.
type WinnerRecord struct {
	Round   int    `json:"round"`
	Area    string `json:"area"`
	Winners []int  `json:"winners"`
}

// RunStore records simulation runs and their per-round winner sets.
type RunStore interface {
	// CreateRun registers a run and returns its ID. An empty ID is
	// generated from the creation timestamp.
	CreateRun(ctx context.Context, run Run) (string, error)

	// RecordWinners appends one winner record to a run.
	RecordWinners(ctx context.Context, runID string, rec WinnerRecord) error

	// GetRun retrieves a run by ID. Returns nil if not found.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns all runs, newest first.
	ListRuns(ctx context.Context) ([]Run, error)

	// GetWinners returns a run's winner records in (round, area) order.
	// An empty area selects all areas.
	GetWinners(ctx context.Context, runID, area string) ([]WinnerRecord, error)

	Close() error
}
