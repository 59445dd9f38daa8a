// Root-cause and blast-radius analysis over the dependency graph
package rca

import (
	"sort"

	"cascade-sim/internal/graph"
)

// Result captures the causal structure around one failing service.
type Result struct {
	// Roots are failing ancestors (or the service itself) with no
	// currently-failed upstream dependency.
	Roots []string
	// Order is the deterministic remediation sequence for Roots: upstream
	// walk discovery order, ties broken by name.
	Order []string
	// Impacted is the blast radius: services transitively dependent on the
	// failing service, in breadth-first discovery order.
	Impacted []string
}

// Analyzer answers causal questions against current graph state. It never
// mutates the graph.
type Analyzer struct {
	g         *graph.Graph
	threshold float64
}

// New creates an Analyzer bound to a graph and failure threshold.
func New(g *graph.Graph, threshold float64) *Analyzer {
	return &Analyzer{g: g, threshold: threshold}
}

func (a *Analyzer) failing(name string) bool {
	svc, err := a.g.Get(name)
	if err != nil {
		return false
	}
	return svc.Health < a.threshold
}

// IsRoot reports whether a service is a root cause: failing, with every
// direct dependency (if any) at or above the threshold.
func (a *Analyzer) IsRoot(name string) (bool, error) {
	svc, err := a.g.Get(name)
	if err != nil {
		return false, err
	}
	if svc.Health >= a.threshold {
		return false, nil
	}
	for _, dep := range svc.Dependencies() {
		if a.failing(dep) {
			return false, nil
		}
	}
	return true, nil
}

// Analyze computes the roots set, remediation order, and blast radius for
// a failing service. The upstream walk follows depends_on edges through
// failing ancestors only, with a visited set so cycles terminate.
func (a *Analyzer) Analyze(name string) (Result, error) {
	svc, err := a.g.Get(name)
	if err != nil {
		return Result{}, err
	}

	res := Result{Impacted: a.g.TransitiveDependentsOf(name)}

	if root, _ := a.IsRoot(name); root {
		res.Roots = []string{name}
		res.Order = []string{name}
		return res, nil
	}

	visited := map[string]struct{}{name: {}}
	queue := a.failingDeps(svc)
	seenRoot := make(map[string]struct{})
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}
		if root, _ := a.IsRoot(current); root {
			if _, dup := seenRoot[current]; !dup {
				seenRoot[current] = struct{}{}
				res.Order = append(res.Order, current)
			}
			continue
		}
		cur, _ := a.g.Get(current)
		queue = append(queue, a.failingDeps(cur)...)
	}

	// A failing cycle has no root by the strict test; fall back to the
	// lowest-health service among the walked ancestors.
	if len(res.Order) == 0 {
		if fallback := a.lowestHealth(visited); fallback != "" {
			res.Order = []string{fallback}
		}
	}

	res.Roots = append([]string(nil), res.Order...)
	sort.Strings(res.Roots)
	return res, nil
}

func (a *Analyzer) lowestHealth(names map[string]struct{}) string {
	var worst *graph.Service
	for name := range names {
		svc, err := a.g.Get(name)
		if err != nil || svc.Health >= a.threshold {
			continue
		}
		if worst == nil || svc.Health < worst.Health ||
			(svc.Health == worst.Health && svc.Name < worst.Name) {
			worst = svc
		}
	}
	if worst == nil {
		return ""
	}
	return worst.Name
}

// failingDeps returns the failing direct dependencies sorted by name, so
// walk discovery order is deterministic with name tie-breaks per level.
func (a *Analyzer) failingDeps(svc *graph.Service) []string {
	var out []string
	for _, dep := range svc.Dependencies() {
		if a.failing(dep) {
			out = append(out, dep)
		}
	}
	return out
}
