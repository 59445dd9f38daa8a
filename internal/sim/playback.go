package sim

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"cascade-sim/internal/event"
)

// ReplayLog replays recorded event entries from r to writer. A speed >0
// reproduces the original timing scaled by the multiplier; speed <= 0
// inserts no artificial delay.
func ReplayLog(r io.Reader, writer EventWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	lastTick := -1
	for {
		var e event.Entry
		if err := dec.Decode(&e); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !prev.IsZero() && speed > 0 {
			diff := e.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if e.Tick != lastTick && e.Tick > 0 {
			if tw, ok := writer.(tickWriter); ok {
				if err := tw.BeginTick(e.Tick, e.Timestamp); err != nil {
					return err
				}
			}
		}
		if err := writer.Write(e); err != nil {
			return err
		}
		prev = e.Timestamp
		lastTick = e.Tick
	}
}

// ReplayLogFile opens a file and replays its event entries.
func ReplayLogFile(path string, writer EventWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}
