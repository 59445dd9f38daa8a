package sim

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"cascade-sim/internal/config"
	"cascade-sim/internal/event"
)

func TestStdoutWriter_RendersEntries(t *testing.T) {
	var buf bytes.Buffer
	w := &StdoutWriter{out: &buf}

	ts := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)
	if err := w.BeginTick(4, ts); err != nil {
		t.Fatalf("BeginTick: %v", err)
	}
	if err := w.Write(event.Entry{Kind: event.KindSuggestion, Service: "db"}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "[TICK 4] 09:30:00") {
		t.Errorf("missing tick header: %q", out)
	}
	if !strings.Contains(out, "[SUGGESTION] Remediate db first") {
		t.Errorf("missing rendered event: %q", out)
	}
}

func TestColorStdoutWriter_OverviewOnce(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	w := &ColorStdoutWriter{cfg: &cfg, out: &buf}

	ts := time.Unix(0, 0).UTC()
	if err := w.BeginTick(1, ts); err != nil {
		t.Fatalf("BeginTick: %v", err)
	}
	if err := w.BeginTick(2, ts); err != nil {
		t.Fatalf("BeginTick: %v", err)
	}
	if err := w.Write(event.Entry{Kind: event.KindAlert, Service: "db", NewHealth: 0.5, Threshold: 0.7}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := buf.String()
	if got := strings.Count(out, "Simulation Configuration:"); got != 1 {
		t.Errorf("overview printed %d times, want 1", got)
	}
	if !strings.Contains(out, colorRed) {
		t.Errorf("ALERT should be colored red: %q", out)
	}
	if !strings.Contains(out, "fell below threshold") {
		t.Errorf("missing rendered event: %q", out)
	}
}
