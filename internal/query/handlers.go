package query

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"cascade-sim/internal/event"
	"cascade-sim/internal/graph"
)

var (
	serviceTokenRe = regexp.MustCompile(`(?i)why is\s+([A-Za-z0-9_\-]+)`)
	lastNRe        = regexp.MustCompile(`last\s+(\d+)`)
)

func (e *Engine) whyFailing(q string) (string, error) {
	m := serviceTokenRe.FindStringSubmatch(q)
	if m == nil {
		return NotUnderstood, nil
	}
	token := strings.TrimRight(m[1], "?.!,;:")
	name, ok := e.graph.Resolve(token)
	if !ok {
		return "", &graph.UnknownServiceError{Name: token}
	}
	svc, err := e.graph.Get(name)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: health=%.2f (threshold %.2f)\n", svc.Name, svc.Health, e.threshold)

	if svc.Health >= e.threshold {
		fmt.Fprintf(&b, "%s is currently healthy.\n", svc.Name)
		return strings.TrimRight(b.String(), "\n"), nil
	}

	failedAt := "unknown"
	if svc.FailedAtTick > 0 {
		failedAt = strconv.Itoa(svc.FailedAtTick)
	}
	fmt.Fprintf(&b, "Failed at tick: %s\n", failedAt)

	root, err := e.analyzer.IsRoot(name)
	if err != nil {
		return "", err
	}
	if root {
		fmt.Fprintf(&b, "[ROOT CAUSE] %s failed independently\n", svc.Name)
		if g, ok := e.lastGlitch(name); ok {
			fmt.Fprintf(&b, "  glitch at tick %d: %.2f -> %.2f\n", g.Tick, g.OldHealth, g.NewHealth)
		}
	} else {
		fmt.Fprintf(&b, "[CASCADE FAILURE] %s failed due to upstream dependencies:\n", svc.Name)
		for _, dep := range svc.Dependencies() {
			d, err := e.graph.Get(dep)
			if err != nil || d.Health >= e.threshold {
				continue
			}
			depFailedAt := "unknown"
			if d.FailedAtTick > 0 {
				depFailedAt = strconv.Itoa(d.FailedAtTick)
			}
			fmt.Fprintf(&b, "  - %s: health=%.2f, failed at tick %s\n", d.Name, d.Health, depFailedAt)
		}
	}

	if blast := e.graph.TransitiveDependentsOf(name); len(blast) > 0 {
		fmt.Fprintf(&b, "Blast radius (%d services): %s\n", len(blast), strings.Join(blast, ", "))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// lastGlitch returns the most recent GLITCH entry for a service.
func (e *Engine) lastGlitch(name string) (event.Entry, bool) {
	entries := e.log.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Kind == event.KindGlitch && entries[i].Service == name {
			return entries[i], true
		}
	}
	return event.Entry{}, false
}

var summaryKinds = []event.Kind{
	event.KindGlitch, event.KindAlert, event.KindBlast, event.KindPriority,
	event.KindSuggestion, event.KindHeal, event.KindRecovery,
}

func (e *Engine) whatHappened(q string) (string, error) {
	n := defaultHistoryTicks
	if m := lastNRe.FindStringSubmatch(strings.ToLower(q)); m != nil {
		if parsed, err := strconv.Atoi(m[1]); err == nil && parsed > 0 {
			n = parsed
		}
	}
	start := e.lastTick - n + 1
	if start < 1 {
		start = 1
	}

	entries := e.log.Since(start)
	var b strings.Builder
	fmt.Fprintf(&b, "Summary of ticks %d..%d:\n", start, e.lastTick)

	counts := event.CountByKind(entries)
	var parts []string
	for _, kind := range summaryKinds {
		if c := counts[kind]; c > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", kind, c))
		}
	}
	if len(parts) == 0 {
		b.WriteString("No events recorded in this window.")
		return b.String(), nil
	}
	fmt.Fprintf(&b, "Counts: %s\n", strings.Join(parts, " "))

	lastTick := -1
	for _, entry := range entries {
		if entry.Tick != lastTick {
			fmt.Fprintf(&b, "[TICK %d]\n", entry.Tick)
			lastTick = entry.Tick
		}
		fmt.Fprintf(&b, "  %s\n", entry.Render())
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (e *Engine) topImpacted(string) (string, error) {
	alerts := make(map[string]int)
	minHealth := make(map[string]float64)
	for _, svc := range e.graph.Services() {
		minHealth[svc.Name] = svc.Health
	}
	for _, entry := range e.log.Entries() {
		switch entry.Kind {
		case event.KindAlert:
			alerts[entry.Service]++
		case event.KindGlitch, event.KindHeal:
		default:
			continue
		}
		if h, ok := minHealth[entry.Service]; !ok || entry.NewHealth < h {
			minHealth[entry.Service] = entry.NewHealth
		}
	}

	if len(alerts) == 0 {
		return "No services crossed the failure threshold.", nil
	}

	names := make([]string, 0, len(alerts))
	for name := range alerts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if alerts[names[i]] != alerts[names[j]] {
			return alerts[names[i]] > alerts[names[j]]
		}
		return names[i] < names[j]
	})

	var b strings.Builder
	b.WriteString("Top impacted services:\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Rank\tService\tAlerts\tMin Health\tCurrent")
	for i, name := range names {
		svc, err := e.graph.Get(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%.2f\n", i+1, name, alerts[name], minHealth[name], svc.Health)
	}
	tw.Flush()
	return strings.TrimRight(b.String(), "\n"), nil
}
