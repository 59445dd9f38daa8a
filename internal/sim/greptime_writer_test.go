package sim

import (
	"context"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"cascade-sim/internal/event"
)

type mockGreptimeClient struct {
	table *table.Table
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, nil
}

func TestGreptimeWriterDetailJSON(t *testing.T) {
	ts := time.Unix(0, 0).UTC()
	entries := []event.Entry{
		{
			Tick:      3,
			Timestamp: ts,
			Kind:      event.KindBlast,
			Service:   "db",
			Impacted:  []string{"api", "web"},
			RunID:     "run-1",
		},
	}

	m := &mockGreptimeClient{}
	w := &GreptimeWriter{client: m, table: "cascade_events"}

	if err := w.WriteBatch(entries); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}

	schema := m.table.GetRows().Schema
	if len(schema) != 8 {
		t.Fatalf("unexpected schema length: %d", len(schema))
	}
	if schema[6].Datatype != gpb.ColumnDataType_JSON {
		t.Fatalf("detail column type = %v, want %v", schema[6].Datatype, gpb.ColumnDataType_JSON)
	}

	row := m.table.GetRows().Rows[0]
	if got := row.Values[0].GetStringValue(); got != "run-1" {
		t.Fatalf("run_id = %s, want run-1", got)
	}
	if got := row.Values[2].GetStringValue(); got != "BLAST" {
		t.Fatalf("kind = %s, want BLAST", got)
	}
	if got := row.Values[6].GetStringValue(); got != "{\"impacted\":[\"api\",\"web\"]}" {
		t.Fatalf("detail = %s", got)
	}
}

func TestGreptimeWriterEmptyBatch(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeWriter{client: m, table: "cascade_events"}
	if err := w.WriteBatch(nil); err != nil {
		t.Fatalf("WriteBatch(nil): %v", err)
	}
	if m.table != nil {
		t.Fatal("empty batch should not hit the client")
	}
}
