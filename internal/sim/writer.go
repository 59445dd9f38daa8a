package sim

import (
	"time"

	"cascade-sim/internal/event"
)

// EventWriter is an interface to support different event sinks.
type EventWriter interface {
	Write(event.Entry) error
}

// Optional: writers can also support batch mode
type batchWriter interface {
	WriteBatch([]event.Entry) error
}

// Optional: textual writers can mark tick boundaries
type tickWriter interface {
	BeginTick(tick int, ts time.Time) error
}

// MultiWriter fans event entries out to multiple writers.
type MultiWriter struct {
	writers []EventWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws ...EventWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// Write sends an entry to all writers.
func (mw *MultiWriter) Write(e event.Entry) error {
	for _, w := range mw.writers {
		if err := w.Write(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple entries to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(entries []event.Entry) error {
	for _, w := range mw.writers {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(entries); err != nil {
				return err
			}
			continue
		}
		for _, e := range entries {
			if err := w.Write(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// BeginTick forwards the tick boundary to writers that render it.
func (mw *MultiWriter) BeginTick(tick int, ts time.Time) error {
	for _, w := range mw.writers {
		if tw, ok := w.(tickWriter); ok {
			if err := tw.BeginTick(tick, ts); err != nil {
				return err
			}
		}
	}
	return nil
}
