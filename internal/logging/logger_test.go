package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"info", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"Debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("debug", &buf)

	logger.Debug("visible")
	logger.Log(context.Background(), LevelTrace, "hidden")

	out := buf.String()
	if !strings.Contains(out, "visible") {
		t.Errorf("debug message missing from output: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("trace message leaked at debug level: %q", out)
	}
}

func TestNewLoggerTraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)

	logger.Log(context.Background(), LevelTrace, "deep detail")

	out := buf.String()
	if !strings.Contains(out, "TRACE") {
		t.Errorf("trace level not labeled TRACE: %q", out)
	}
}

func TestRoundLoggerNilAtInfoLevel(t *testing.T) {
	rl := NewRoundLogger(t.TempDir(), "info")
	if rl != nil {
		t.Fatal("NewRoundLogger at info level should return nil")
	}

	// All methods are nil-safe.
	rl.Log(RoundEvent{Round: 1})
	rl.Close()
}

func TestRoundLoggerWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	rl := NewRoundLogger(dir, "debug")
	if rl == nil {
		t.Fatal("NewRoundLogger at debug level returned nil")
	}

	rl.Log(RoundEvent{
		Round:      1,
		Plasticity: true,
		Areas:      []AreaTrace{{Area: "A", Sources: []string{"stim"}, Winners: 3}},
	})
	rl.Log(RoundEvent{Round: 2, Plasticity: true})
	rl.Close()

	f, err := os.Open(filepath.Join(dir, "rounds.jsonl"))
	if err != nil {
		t.Fatalf("opening rounds.jsonl: %v", err)
	}
	defer f.Close()

	var events []RoundEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event RoundEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(events), err)
		}
		events = append(events, event)
	}
	if len(events) != 2 {
		t.Fatalf("rounds.jsonl has %d lines, want 2", len(events))
	}

	if events[0].Time == "" {
		t.Error("first event missing time stamp")
	}
	if events[0].Round != 1 || events[1].Round != 2 {
		t.Errorf("rounds = %d, %d; want 1, 2", events[0].Round, events[1].Round)
	}
	if len(events[0].Areas) != 1 || events[0].Areas[0].Area != "A" || events[0].Areas[0].Winners != 3 {
		t.Errorf("first event areas = %+v, want one trace for A with 3 winners", events[0].Areas)
	}
}
