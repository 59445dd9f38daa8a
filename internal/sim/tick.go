package sim

import (
	"context"
	"time"

	"cascade-sim/internal/event"
	"cascade-sim/internal/graph"
	"cascade-sim/internal/logging"
)

// glitchEpsilon is the smallest health drop recorded as a GLITCH event.
const glitchEpsilon = 0.001

// runTick advances the simulation by one tick: glitch, threshold,
// cascade propagation, recovery, cooldown decrement — in that order, every
// tick, so a run is fully reproducible from the seed.
func (s *Simulator) runTick(ctx context.Context) {
	s.tick++
	now := s.now().UTC()

	if tw, ok := s.writer.(tickWriter); ok {
		if err := tw.BeginTick(s.tick, now); err != nil {
			logging.FromContext(ctx).Error("tick header write failed", "err", err)
		}
	}

	var entries []event.Entry
	entries = append(entries, s.applyGlitches(now)...)
	entries = append(entries, s.detectFailures(now)...)
	s.propagateCascades()
	entries = append(entries, s.applyRecovery(now)...)
	s.decrementCooldowns()

	s.emit(ctx, entries...)

	if len(entries) == 0 {
		min := s.minHealthService()
		logging.FromContext(ctx).Debug("all quiet",
			"tick", s.tick, "min_health", min.Health, "service", min.Name)
	}
}

// applyGlitches draws a perturbation for every service in declaration
// order. RNG consumption order is fixed, which keeps runs reproducible.
func (s *Simulator) applyGlitches(now time.Time) []event.Entry {
	var entries []event.Entry
	g := s.cfg.Glitch
	for _, svc := range s.graph.Services() {
		if s.rng.Float64() >= g.Chance {
			continue
		}
		drop := g.MinDrop + s.rng.Float64()*(g.MaxDrop-g.MinDrop)
		old := svc.Health
		svc.Health = clamp01(old - drop)
		if old-svc.Health > glitchEpsilon {
			entries = append(entries, event.Entry{
				Tick:      s.tick,
				Timestamp: now,
				Kind:      event.KindGlitch,
				Service:   svc.Name,
				OldHealth: old,
				NewHealth: svc.Health,
				RunID:     s.runID,
			})
		}
	}
	return entries
}

// detectFailures transitions services that crossed the threshold, emitting
// ALERT plus the analyzer's BLAST, PRIORITY, and SUGGESTION events.
func (s *Simulator) detectFailures(now time.Time) []event.Entry {
	var entries []event.Entry
	for _, svc := range s.graph.Services() {
		if svc.Failed || svc.Health >= s.cfg.Threshold {
			continue
		}
		svc.Failed = true
		svc.FailedAtTick = s.tick
		svc.CooldownRemaining = s.cfg.Cooldown

		entries = append(entries, event.Entry{
			Tick:      s.tick,
			Timestamp: now,
			Kind:      event.KindAlert,
			Service:   svc.Name,
			NewHealth: svc.Health,
			Threshold: s.cfg.Threshold,
			RunID:     s.runID,
		})

		res, err := s.analyzer.Analyze(svc.Name)
		if err != nil {
			continue
		}
		if len(res.Impacted) > 0 {
			entries = append(entries, event.Entry{
				Tick:      s.tick,
				Timestamp: now,
				Kind:      event.KindBlast,
				Service:   svc.Name,
				Impacted:  res.Impacted,
				RunID:     s.runID,
			})
		}
		entries = append(entries, event.Entry{
			Tick:      s.tick,
			Timestamp: now,
			Kind:      event.KindPriority,
			Service:   svc.Name,
			Roots:     res.Roots,
			Order:     res.Order,
			RunID:     s.runID,
		})
		if len(res.Order) > 0 {
			entries = append(entries, event.Entry{
				Tick:      s.tick,
				Timestamp: now,
				Kind:      event.KindSuggestion,
				Service:   res.Order[0],
				RunID:     s.runID,
			})
		}
	}
	return entries
}

// propagateCascades degrades every service in proportion to the fraction
// of its failed dependencies: health -= alpha * failed/total, floored at 0.
func (s *Simulator) propagateCascades() {
	for _, svc := range s.graph.Services() {
		deps := svc.Dependencies()
		if len(deps) == 0 {
			continue
		}
		failed := 0
		for _, dep := range deps {
			if d, err := s.graph.Get(dep); err == nil && d.Failed {
				failed++
			}
		}
		if failed == 0 {
			continue
		}
		penalty := s.cfg.Alpha * float64(failed) / float64(len(deps))
		svc.Health = clamp01(svc.Health - penalty)
	}
}

// applyRecovery heals failed services whose cooldown elapsed, then emits
// RECOVERY signals to dependents whose last failed upstream just cleared.
// With cooldown disabled (-1) the counter never reaches zero, so nothing
// heals automatically.
func (s *Simulator) applyRecovery(now time.Time) []event.Entry {
	var entries []event.Entry
	var healed []string
	for _, svc := range s.graph.Services() {
		if !svc.Failed || svc.CooldownRemaining != 0 {
			continue
		}
		svc.Health = s.cfg.HealTo
		svc.Failed = false
		svc.CooldownRemaining = graph.CooldownDisabled
		healed = append(healed, svc.Name)
		entries = append(entries, event.Entry{
			Tick:      s.tick,
			Timestamp: now,
			Kind:      event.KindHeal,
			Service:   svc.Name,
			NewHealth: svc.Health,
			RunID:     s.runID,
		})
	}

	notified := make(map[string]struct{})
	for _, name := range healed {
		for _, depName := range s.graph.DependentsOf(name) {
			if _, done := notified[depName]; done {
				continue
			}
			dependent, err := s.graph.Get(depName)
			if err != nil || !dependent.Failed {
				continue
			}
			if s.hasFailedDependency(dependent) {
				continue
			}
			notified[depName] = struct{}{}
			// Signal only: the dependent heals on its own once its
			// cooldown elapses, no health change is forced here.
			entries = append(entries, event.Entry{
				Tick:      s.tick,
				Timestamp: now,
				Kind:      event.KindRecovery,
				Service:   depName,
				Cause:     name,
				RunID:     s.runID,
			})
		}
	}
	return entries
}

func (s *Simulator) hasFailedDependency(svc *graph.Service) bool {
	for _, dep := range svc.Dependencies() {
		if d, err := s.graph.Get(dep); err == nil && d.Failed {
			return true
		}
	}
	return false
}

// decrementCooldowns counts still-failed services one tick closer to
// healing eligibility.
func (s *Simulator) decrementCooldowns() {
	for _, svc := range s.graph.Services() {
		if svc.Failed && svc.CooldownRemaining > 0 {
			svc.CooldownRemaining--
		}
	}
}

func (s *Simulator) minHealthService() *graph.Service {
	var min *graph.Service
	for _, svc := range s.graph.Services() {
		if min == nil || svc.Health < min.Health {
			min = svc
		}
	}
	return min
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
