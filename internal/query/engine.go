// Free-text query engine over final graph state and the event log
package query

import (
	"strings"

	"cascade-sim/internal/event"
	"cascade-sim/internal/graph"
	"cascade-sim/internal/rca"
)

// NotUnderstood is the fixed answer for queries matching no intent.
const NotUnderstood = "Unknown query. Try: 'why is <service> failing?', " +
	"'what happened in the last N ticks?', 'top-impacted'"

// HelpText lists the supported queries for the surrounding CLI.
const HelpText = "Queries:\n" +
	"  why is <service> failing?\n" +
	"  what happened in the last <N> ticks?\n" +
	"  top-impacted\n" +
	"  help | exit"

// defaultHistoryTicks is the window used when "what happened" queries omit N.
const defaultHistoryTicks = 10

// Engine answers free-text queries. It reads graph and log state only;
// there is no concurrent writer once a run has finished.
type Engine struct {
	graph     *graph.Graph
	log       *event.Log
	analyzer  *rca.Analyzer
	threshold float64
	lastTick  int
}

// New creates an Engine over the given run artifacts. lastTick is the final
// tick of the run, anchoring "last N ticks" windows.
func New(g *graph.Graph, log *event.Log, analyzer *rca.Analyzer, threshold float64, lastTick int) *Engine {
	return &Engine{graph: g, log: log, analyzer: analyzer, threshold: threshold, lastTick: lastTick}
}

// intent pairs a match predicate with its handler. The table is evaluated
// in priority order; first match wins, so new intents are additive.
type intent struct {
	name   string
	match  func(q string) bool
	handle func(e *Engine, q string) (string, error)
}

var intents = []intent{
	{
		name: "why-failing",
		match: func(q string) bool {
			return strings.Contains(q, "why is") && strings.Contains(q, "failing")
		},
		handle: (*Engine).whyFailing,
	},
	{
		name: "historical",
		match: func(q string) bool {
			return strings.Contains(q, "what happened")
		},
		handle: (*Engine).whatHappened,
	},
	{
		name: "top-impacted",
		match: func(q string) bool {
			return strings.Contains(q, "top-impacted") || strings.Contains(q, "top impacted")
		},
		handle: (*Engine).topImpacted,
	},
}

// Answer resolves q to an intent and produces a textual answer. Malformed
// queries yield NotUnderstood, never an error; the only error surface is a
// well-formed query naming an unknown service.
func (e *Engine) Answer(q string) (string, error) {
	trimmed := strings.TrimSpace(q)
	lower := strings.ToLower(trimmed)
	for _, in := range intents {
		if in.match(lower) {
			return in.handle(e, trimmed)
		}
	}
	return NotUnderstood, nil
}

// IsControl reports whether q is a control word (help/exit) owned by the
// surrounding CLI loop rather than a data query.
func IsControl(q string) bool {
	switch strings.ToLower(strings.TrimSpace(q)) {
	case "help", "exit", "quit", "q":
		return true
	}
	return false
}
