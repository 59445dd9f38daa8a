// Simulator orchestrating cascading-failure ticks over the service graph
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"cascade-sim/internal/config"
	"cascade-sim/internal/event"
	"cascade-sim/internal/graph"
	"cascade-sim/internal/logging"
	"cascade-sim/internal/rca"
)

// Rand is the deterministic random stream consumed by the tick engine.
// *rand.Rand satisfies it; tests substitute fixed sequences.
type Rand interface {
	Float64() float64
}

// Simulator advances the dependency graph tick by tick. A run is a pure
// function of (topology, config, seed); all state lives on the value, no
// globals.
type Simulator struct {
	graph    *graph.Graph
	cfg      *config.SimulationConfig
	analyzer *rca.Analyzer
	writer   EventWriter
	log      *event.Log
	rng      Rand
	now      func() time.Time
	runID    string
	tick     int
}

// New creates a Simulator with the RNG seeded from the config.
func New(g *graph.Graph, cfg *config.SimulationConfig, writer EventWriter) *Simulator {
	return &Simulator{
		graph:    g,
		cfg:      cfg,
		analyzer: rca.New(g, cfg.Threshold),
		writer:   writer,
		log:      &event.Log{},
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		now:      time.Now,
		runID:    uuid.New().String(),
	}
}

// Log returns the append-only event log accumulated so far.
func (s *Simulator) Log() *event.Log {
	return s.log
}

// Graph returns the simulated dependency graph.
func (s *Simulator) Graph() *graph.Graph {
	return s.graph
}

// Analyzer returns the cascade analyzer bound to this run's graph.
func (s *Simulator) Analyzer() *rca.Analyzer {
	return s.analyzer
}

// RunID identifies this run in emitted events and sinks.
func (s *Simulator) RunID() string {
	return s.runID
}

// CurrentTick returns the last completed tick number.
func (s *Simulator) CurrentTick() int {
	return s.tick
}

// Run executes all configured ticks. interval > 0 paces ticks for live
// viewing; zero runs flat out. The run stops early only if ctx is
// cancelled.
func (s *Simulator) Run(ctx context.Context, interval time.Duration) error {
	log := logging.FromContext(ctx)
	log.Info("starting simulation",
		"run_id", s.runID, "services", s.graph.Len(),
		"ticks", s.cfg.Ticks, "seed", s.cfg.Seed)

	for _, cycle := range s.graph.Cycles() {
		log.Warn("cycle detected, analysis may be approximate",
			"path", strings.Join(cycle, " -> "))
	}

	s.emit(ctx, event.Entry{
		Tick:      0,
		Timestamp: s.now().UTC(),
		Kind:      event.KindBoot,
		RunID:     s.runID,
		Message:   fmt.Sprintf("Loaded %d services.", s.graph.Len()),
	})

	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}
	for i := 0; i < s.cfg.Ticks; i++ {
		if ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				log.Info("stopping simulation", "tick", s.tick)
				return ctx.Err()
			}
		} else if ctx.Err() != nil {
			log.Info("stopping simulation", "tick", s.tick)
			return ctx.Err()
		}
		s.runTick(ctx)
	}
	log.Info("simulation complete", "ticks", s.tick, "events", s.log.Len())
	return nil
}

// emit appends entries to the log and forwards them to the writer.
func (s *Simulator) emit(ctx context.Context, entries ...event.Entry) {
	if len(entries) == 0 {
		return
	}
	s.log.Append(entries...)
	if s.writer == nil {
		return
	}
	log := logging.FromContext(ctx)
	if bw, ok := s.writer.(batchWriter); ok {
		if err := bw.WriteBatch(entries); err != nil {
			log.Error("batch write failed", "err", err)
		}
		return
	}
	for _, e := range entries {
		if err := s.writer.Write(e); err != nil {
			log.Error("write failed", "kind", e.Kind, "err", err)
		}
	}
}
