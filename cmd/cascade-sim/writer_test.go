package main

import (
	"path/filepath"
	"testing"

	"cascade-sim/internal/config"
	"cascade-sim/internal/sim"
)

func TestNewWriters_PrintOnly(t *testing.T) {
	cfg := config.Default()
	w, cleanup, err := newWriters(&cfg, true, "")
	if err != nil {
		t.Fatalf("newWriters: %v", err)
	}
	defer cleanup()
	if _, ok := w.(*sim.GreptimeWriter); ok {
		t.Fatal("print-only must not produce a GreptimeDB writer")
	}
}

func TestNewWriters_LogFileWrapsMultiWriter(t *testing.T) {
	cfg := config.Default()
	logFile := filepath.Join(t.TempDir(), "events.jsonl")
	w, cleanup, err := newWriters(&cfg, true, logFile)
	if err != nil {
		t.Fatalf("newWriters: %v", err)
	}
	defer cleanup()
	if _, ok := w.(*sim.MultiWriter); !ok {
		t.Fatalf("expected MultiWriter with --log-file, got %T", w)
	}
}
