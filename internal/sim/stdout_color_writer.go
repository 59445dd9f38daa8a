// ColorStdoutWriter prints human-friendly, colorized events to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"cascade-sim/internal/config"
	"cascade-sim/internal/event"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

var kindColors = map[event.Kind]string{
	event.KindBoot:       colorBlue,
	event.KindGlitch:     colorYellow,
	event.KindAlert:      colorRed,
	event.KindBlast:      colorMagenta,
	event.KindPriority:   colorCyan,
	event.KindSuggestion: colorGreen,
	event.KindHeal:       colorGreen,
	event.KindRecovery:   colorCyan,
}

// ColorStdoutWriter prints event entries using ANSI colors.
type ColorStdoutWriter struct {
	cfg  *config.SimulationConfig
	out  io.Writer
	once sync.Once
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{cfg: cfg, out: os.Stdout}
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}
	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Ticks:\t%d\n", w.cfg.Ticks)
	fmt.Fprintf(tw, "Threshold:\t%.2f\n", w.cfg.Threshold)
	fmt.Fprintf(tw, "Alpha:\t%.2f\n", w.cfg.Alpha)
	fmt.Fprintf(tw, "Cooldown:\t%d\n", w.cfg.Cooldown)
	fmt.Fprintf(tw, "Heal To:\t%.2f\n", w.cfg.HealTo)
	fmt.Fprintf(tw, "Seed:\t%d\n", w.cfg.Seed)
	fmt.Fprintf(tw, "Glitch Chance:\t%.2f\n", w.cfg.Glitch.Chance)
	fmt.Fprintf(tw, "Glitch Drop:\t[%.2f, %.2f]\n", w.cfg.Glitch.MinDrop, w.cfg.Glitch.MaxDrop)
	tw.Flush()
	fmt.Fprintln(w.out)
}

// BeginTick prints the per-tick header line.
func (w *ColorStdoutWriter) BeginTick(tick int, ts time.Time) error {
	w.once.Do(w.printOverview)
	_, err := fmt.Fprintf(w.out, "\n%s[TICK %d]%s %s%s%s\n",
		colorBlue, tick, colorReset,
		colorGray, ts.Format("15:04:05"), colorReset)
	return err
}

// Write outputs a single event entry in colorized format.
func (w *ColorStdoutWriter) Write(e event.Entry) error {
	w.once.Do(w.printOverview)
	c, ok := kindColors[e.Kind]
	if !ok {
		c = colorGray
	}
	_, err := fmt.Fprintf(w.out, "%s%s%s\n", c, e.Render(), colorReset)
	return err
}

// WriteBatch outputs multiple event entries.
func (w *ColorStdoutWriter) WriteBatch(entries []event.Entry) error {
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			return err
		}
	}
	return nil
}
