package sim

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"cascade-sim/internal/event"
)

func TestReplayLog(t *testing.T) {
	ts := time.Unix(100, 0).UTC()
	entries := []event.Entry{
		{Tick: 0, Timestamp: ts, Kind: event.KindBoot, Message: "Loaded 2 services."},
		{Tick: 1, Timestamp: ts.Add(time.Second), Kind: event.KindGlitch, Service: "db"},
		{Tick: 1, Timestamp: ts.Add(time.Second), Kind: event.KindAlert, Service: "db"},
		{Tick: 2, Timestamp: ts.Add(2 * time.Second), Kind: event.KindHeal, Service: "db"},
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}

	writer := &MockWriter{}
	if err := ReplayLog(&buf, writer, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}

	if len(writer.Entries) != len(entries) {
		t.Fatalf("replayed %d entries, want %d", len(writer.Entries), len(entries))
	}
	for i, e := range writer.Entries {
		if e.Kind != entries[i].Kind {
			t.Errorf("entry %d kind = %s, want %s", i, e.Kind, entries[i].Kind)
		}
	}
	// Tick headers fire on tick transitions, never for the boot entry.
	if len(writer.Ticks) != 2 || writer.Ticks[0] != 1 || writer.Ticks[1] != 2 {
		t.Errorf("Ticks = %v, want [1 2]", writer.Ticks)
	}
}

func TestReplayLog_EmptyInput(t *testing.T) {
	writer := &MockWriter{}
	if err := ReplayLog(bytes.NewReader(nil), writer, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(writer.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(writer.Entries))
	}
}
