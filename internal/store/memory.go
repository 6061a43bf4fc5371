package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// InMemoryRunStore implements RunStore for testing and development.
type InMemoryRunStore struct {
	mu      sync.RWMutex
	runs    map[string]Run
	winners map[string][]WinnerRecord
}

// NewInMemoryRunStore creates a new in-memory store.
func NewInMemoryRunStore() *InMemoryRunStore {
	return &InMemoryRunStore{
		runs:    make(map[string]Run),
		winners: make(map[string][]WinnerRecord),
	}
}

// CreateRun registers a run, generating an ID if absent.
func (s *InMemoryRunStore) CreateRun(ctx context.Context, run Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.ID == "" {
		run.ID = fmt.Sprintf("run-%d", run.CreatedAt.UnixNano())
	}
	if _, exists := s.runs[run.ID]; exists {
		return "", fmt.Errorf("run already exists: %s", run.ID)
	}

	s.runs[run.ID] = run
	return run.ID, nil
}

// RecordWinners appends one winner record to a run.
func (s *InMemoryRunStore) RecordWinners(ctx context.Context, runID string, rec WinnerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; !exists {
		return fmt.Errorf("run not found: %s", runID)
	}

	s.winners[runID] = append(s.winners[runID], rec)
	return nil
}

// GetRun retrieves a run by ID. Returns nil if not found.
func (s *InMemoryRunStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[id]
	if !exists {
		return nil, nil
	}
	return &run, nil
}

// ListRuns returns all runs, newest first.
func (s *InMemoryRunStore) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// GetWinners returns a run's winner records in (round, area) order.
func (s *InMemoryRunStore) GetWinners(ctx context.Context, runID, area string) ([]WinnerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]WinnerRecord, 0, len(s.winners[runID]))
	for _, rec := range s.winners[runID] {
		if area != "" && rec.Area != area {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Round != records[j].Round {
			return records[i].Round < records[j].Round
		}
		return records[i].Area < records[j].Area
	})
	return records, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryRunStore) Close() error { return nil }
