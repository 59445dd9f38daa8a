package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cascade-sim/internal/event"
)

// FileWriter writes event entries to a JSONL file and, optionally, a
// rendered text log alongside.
type FileWriter struct {
	eventsFile *os.File
	textFile   *os.File
	enc        *json.Encoder
}

// NewFileWriter creates a FileWriter. textPath may be empty to skip the
// rendered log.
func NewFileWriter(eventsPath, textPath string) (*FileWriter, error) {
	ef, err := os.Create(eventsPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{eventsFile: ef, enc: json.NewEncoder(ef)}
	if textPath != "" {
		tf, err := os.Create(textPath)
		if err != nil {
			ef.Close()
			return nil, err
		}
		fw.textFile = tf
	}
	return fw, nil
}

// BeginTick writes the per-tick header to the text log, if enabled.
func (f *FileWriter) BeginTick(tick int, ts time.Time) error {
	if f.textFile == nil {
		return nil
	}
	_, err := fmt.Fprintf(f.textFile, "\n%s\n", event.TickHeader(tick, ts))
	return err
}

// Write logs a single event entry.
func (f *FileWriter) Write(e event.Entry) error {
	if err := f.enc.Encode(e); err != nil {
		return err
	}
	if f.textFile != nil {
		if _, err := fmt.Fprintln(f.textFile, e.Render()); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch logs multiple event entries.
func (f *FileWriter) WriteBatch(entries []event.Entry) error {
	for _, e := range entries {
		if err := f.Write(e); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.eventsFile != nil {
		if e := f.eventsFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.textFile != nil {
		if e := f.textFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
