// Writer implementation printing rendered events to STDOUT
package sim

import (
	"fmt"
	"io"
	"os"
	"time"

	"cascade-sim/internal/event"
)

// StdoutWriter prints rendered event lines to an io.Writer.
type StdoutWriter struct {
	out io.Writer
}

// NewStdoutWriter creates a StdoutWriter targeting os.Stdout.
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{out: os.Stdout}
}

// BeginTick prints the per-tick header line.
func (w *StdoutWriter) BeginTick(tick int, ts time.Time) error {
	_, err := fmt.Fprintf(w.out, "\n%s\n", event.TickHeader(tick, ts))
	return err
}

// Write outputs a single rendered event entry.
func (w *StdoutWriter) Write(e event.Entry) error {
	_, err := fmt.Fprintln(w.out, e.Render())
	return err
}

// WriteBatch outputs multiple event entries.
func (w *StdoutWriter) WriteBatch(entries []event.Entry) error {
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			return err
		}
	}
	return nil
}
