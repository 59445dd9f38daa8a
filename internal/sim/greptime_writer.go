package sim

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"strconv"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"

	"cascade-sim/internal/event"
)

const defaultGreptimePort = 4001

// greptimeClient abstracts the ingester client for testing.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeWriter writes event entries to GreptimeDB via the ingester client.
type GreptimeWriter struct {
	client greptimeClient
	table  string
}

// NewGreptimeWriter creates a GreptimeWriter. endpoint is "host" or
// "host:port"; tableName may be empty to use "cascade_events".
func NewGreptimeWriter(endpoint, database, tableName string) (*GreptimeWriter, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	port := defaultGreptimePort
	if err != nil {
		host = endpoint
	} else if p, perr := strconv.Atoi(portStr); perr == nil {
		port = p
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if tableName == "" {
		tableName = "cascade_events"
	}
	return &GreptimeWriter{client: client, table: tableName}, nil
}

// Write inserts a single event entry.
func (w *GreptimeWriter) Write(e event.Entry) error {
	return w.WriteBatch([]event.Entry{e})
}

// WriteBatch inserts multiple event entries.
func (w *GreptimeWriter) WriteBatch(entries []event.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tbl, err := table.New(w.table)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("run_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("service", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("kind", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("tick", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("old_health", types.FLOAT); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("new_health", types.FLOAT); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("detail", types.JSON); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, e := range entries {
		detail, err := detailJSON(e)
		if err != nil {
			return err
		}
		if err := tbl.AddRow(e.RunID, e.Service, string(e.Kind), int64(e.Tick),
			e.OldHealth, e.NewHealth, detail, e.Timestamp); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		slog.Error("greptime write failed", "err", err)
		return err
	}
	return nil
}

// detailJSON packs the variable-shape payload fields into one JSON column.
func detailJSON(e event.Entry) (string, error) {
	payload := map[string]any{}
	if len(e.Roots) > 0 {
		payload["roots"] = e.Roots
	}
	if len(e.Order) > 0 {
		payload["order"] = e.Order
	}
	if len(e.Impacted) > 0 {
		payload["impacted"] = e.Impacted
	}
	if e.Cause != "" {
		payload["cause"] = e.Cause
	}
	if e.Message != "" {
		payload["message"] = e.Message
	}
	if e.Threshold != 0 {
		payload["threshold"] = e.Threshold
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
