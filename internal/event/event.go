// Event log entries and textual rendering
package event

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies the type of a log entry.
type Kind string

// Event kinds, in the vocabulary emitted by the tick engine.
const (
	KindBoot       Kind = "BOOT"
	KindGlitch     Kind = "GLITCH"
	KindAlert      Kind = "ALERT"
	KindBlast      Kind = "BLAST"
	KindPriority   Kind = "PRIORITY"
	KindSuggestion Kind = "SUGGESTION"
	KindHeal       Kind = "HEAL"
	KindRecovery   Kind = "RECOVERY"
)

// Entry is one immutable record of a notable occurrence within a tick.
type Entry struct {
	Tick      int       `json:"tick"`
	Timestamp time.Time `json:"ts"`
	Kind      Kind      `json:"kind"`
	Service   string    `json:"service,omitempty"`
	OldHealth float64   `json:"old_health,omitempty"`
	NewHealth float64   `json:"new_health,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Roots     []string  `json:"roots,omitempty"`
	Order     []string  `json:"order,omitempty"`
	Impacted  []string  `json:"impacted,omitempty"`
	Cause     string    `json:"cause,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Render produces the reference textual form: "[KIND] <message>".
func (e Entry) Render() string {
	switch e.Kind {
	case KindGlitch:
		return fmt.Sprintf("[GLITCH] service %s health %.2f -> %.2f (random glitch)", e.Service, e.OldHealth, e.NewHealth)
	case KindAlert:
		return fmt.Sprintf("[ALERT] service %s fell below threshold (%.2f < %.2f)", e.Service, e.NewHealth, e.Threshold)
	case KindBlast:
		return fmt.Sprintf("[BLAST] due to %s -> impacted: [%s]", e.Service, strings.Join(e.Impacted, ", "))
	case KindPriority:
		return fmt.Sprintf("[PRIORITY] roots={%s}, order=[%s]", strings.Join(e.Roots, ", "), strings.Join(e.Order, ", "))
	case KindSuggestion:
		return fmt.Sprintf("[SUGGESTION] Remediate %s first", e.Service)
	case KindHeal:
		return fmt.Sprintf("[HEAL] service %s -> health %.2f", e.Service, e.NewHealth)
	case KindRecovery:
		return fmt.Sprintf("[RECOVERY] %s eligible to heal after %s recovered", e.Service, e.Cause)
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
}

// TickHeader renders the per-tick prefix line for textual sinks.
func TickHeader(tick int, ts time.Time) string {
	return fmt.Sprintf("[TICK %d] %s", tick, ts.Format("15:04:05"))
}
