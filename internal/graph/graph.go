// Service dependency graph with precomputed reverse adjacency
package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"cascade-sim/internal/topology"
)

// ErrInvalidTopology marks topology inputs the graph refuses to load:
// duplicate service names or dependency edges referencing undeclared names.
var ErrInvalidTopology = errors.New("invalid topology")

// UnknownServiceError reports a lookup for a name absent from the graph.
type UnknownServiceError struct {
	Name string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service %q", e.Name)
}

// CooldownDisabled is the cooldown sentinel for services that never heal
// on a timer.
const CooldownDisabled = -1

// Service holds the mutable runtime state for one declared service.
// Topology (Name, dependencies) is immutable after load; only Health,
// Failed, FailedAtTick, and CooldownRemaining change during a run.
type Service struct {
	Name              string
	Health            float64
	Failed            bool
	FailedAtTick      int
	CooldownRemaining int

	deps    []string // sorted
	depsSet map[string]struct{}
}

// Dependencies returns the service's direct upstream names, sorted.
func (s *Service) Dependencies() []string {
	out := make([]string, len(s.deps))
	copy(out, s.deps)
	return out
}

// DependsOn reports whether name is a direct upstream dependency.
func (s *Service) DependsOn(name string) bool {
	_, ok := s.depsSet[name]
	return ok
}

// Graph stores services keyed by name plus a reverse dependency index.
type Graph struct {
	services map[string]*Service
	order    []string            // declaration order
	reverse  map[string][]string // sorted direct dependents
	lower    map[string]string   // lowercased name -> canonical name
	cycles   [][]string
}

// New builds a Graph from ordered topology records, validating that names
// are unique and every dependency resolves to a declared service.
func New(records []topology.Record) (*Graph, error) {
	g := &Graph{
		services: make(map[string]*Service, len(records)),
		reverse:  make(map[string][]string),
		lower:    make(map[string]string, len(records)),
	}
	for _, r := range records {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: service with empty name", ErrInvalidTopology)
		}
		if _, ok := g.services[r.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate service %q", ErrInvalidTopology, r.Name)
		}
		svc := &Service{
			Name:              r.Name,
			Health:            r.InitialHealth(),
			CooldownRemaining: CooldownDisabled,
			depsSet:           make(map[string]struct{}, len(r.DependsOn)),
		}
		for _, dep := range r.DependsOn {
			if _, dup := svc.depsSet[dep]; dup {
				continue
			}
			svc.depsSet[dep] = struct{}{}
			svc.deps = append(svc.deps, dep)
		}
		sort.Strings(svc.deps)
		g.services[r.Name] = svc
		g.order = append(g.order, r.Name)
		g.lower[strings.ToLower(r.Name)] = r.Name
	}
	for _, name := range g.order {
		for _, dep := range g.services[name].deps {
			if _, ok := g.services[dep]; !ok {
				return nil, fmt.Errorf("%w: service %q depends on undeclared %q", ErrInvalidTopology, name, dep)
			}
			g.reverse[dep] = append(g.reverse[dep], name)
		}
	}
	for dep := range g.reverse {
		sort.Strings(g.reverse[dep])
	}
	g.cycles = g.findCycles()
	return g, nil
}

// Get returns the service with the given name.
func (g *Graph) Get(name string) (*Service, error) {
	svc, ok := g.services[name]
	if !ok {
		return nil, &UnknownServiceError{Name: name}
	}
	return svc, nil
}

// Resolve maps a possibly differently-cased token to a canonical service
// name.
func (g *Graph) Resolve(token string) (string, bool) {
	if _, ok := g.services[token]; ok {
		return token, true
	}
	name, ok := g.lower[strings.ToLower(token)]
	return name, ok
}

// Len returns the number of services.
func (g *Graph) Len() int {
	return len(g.services)
}

// Services returns all services in topology declaration order. The tick
// engine iterates this for deterministic RNG consumption.
func (g *Graph) Services() []*Service {
	out := make([]*Service, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.services[name])
	}
	return out
}

// DependentsOf returns the names of services whose depends_on directly
// includes name, sorted. The reverse index is precomputed at load since
// this is queried every tick.
func (g *Graph) DependentsOf(name string) []string {
	deps := g.reverse[name]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// TransitiveDependentsOf walks the reverse dependency edges breadth-first
// from name, visiting each service at most once, excluding name itself.
// Discovery order is the blast-radius listing order. Safe on cycles.
func (g *Graph) TransitiveDependentsOf(name string) []string {
	visited := map[string]struct{}{name: {}}
	queue := append([]string(nil), g.reverse[name]...)
	var out []string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}
		out = append(out, current)
		queue = append(queue, g.reverse[current]...)
	}
	return out
}

// Cycles returns the dependency cycles detected at load time. Cycles are
// reported, not rejected; traversals stay terminating regardless.
func (g *Graph) Cycles() [][]string {
	return g.cycles
}

func (g *Graph) findCycles() [][]string {
	var cycles [][]string
	state := make(map[string]int) // 0 unvisited, 1 on stack, 2 done
	var stack []string

	var visit func(name string)
	visit = func(name string) {
		state[name] = 1
		stack = append(stack, name)
		for _, dep := range g.services[name].deps {
			switch state[dep] {
			case 0:
				visit(dep)
			case 1:
				for i, n := range stack {
					if n == dep {
						cycle := append(append([]string(nil), stack[i:]...), dep)
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = 2
	}
	for _, name := range g.order {
		if state[name] == 0 {
			visit(name)
		}
	}
	return cycles
}
