package rca

import (
	"reflect"
	"testing"

	"cascade-sim/internal/graph"
	"cascade-sim/internal/topology"
)

func buildGraph(t *testing.T, records []topology.Record) *graph.Graph {
	t.Helper()
	g, err := graph.New(records)
	if err != nil {
		t.Fatalf("graph.New: %v", err)
	}
	return g
}

func setHealth(t *testing.T, g *graph.Graph, name string, health float64) {
	t.Helper()
	svc, err := g.Get(name)
	if err != nil {
		t.Fatalf("Get(%s): %v", name, err)
	}
	svc.Health = health
}

func TestIsRoot(t *testing.T) {
	g := buildGraph(t, []topology.Record{
		{Name: "db"},
		{Name: "api", DependsOn: []string{"db"}},
	})
	a := New(g, 0.7)

	setHealth(t, g, "db", 0.5)
	setHealth(t, g, "api", 0.4)

	if root, _ := a.IsRoot("db"); !root {
		t.Error("db should be a root: it is failing with no failing deps")
	}
	if root, _ := a.IsRoot("api"); root {
		t.Error("api should not be a root: its dependency db is failing")
	}

	setHealth(t, g, "db", 0.9)
	if root, _ := a.IsRoot("db"); root {
		t.Error("healthy db should not be a root")
	}
	if root, _ := a.IsRoot("api"); !root {
		t.Error("api becomes a root once db recovers")
	}
}

func TestIsRoot_UnknownService(t *testing.T) {
	g := buildGraph(t, []topology.Record{{Name: "db"}})
	a := New(g, 0.7)
	if _, err := a.IsRoot("ghost"); err == nil {
		t.Fatal("expected error for unknown service")
	}
}

func TestAnalyze_SelfRoot(t *testing.T) {
	g := buildGraph(t, []topology.Record{
		{Name: "db"},
		{Name: "api", DependsOn: []string{"db"}},
		{Name: "web", DependsOn: []string{"api"}},
	})
	a := New(g, 0.7)
	setHealth(t, g, "db", 0.3)

	res, err := a.Analyze("db")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !reflect.DeepEqual(res.Roots, []string{"db"}) {
		t.Errorf("Roots = %v, want [db]", res.Roots)
	}
	if !reflect.DeepEqual(res.Order, []string{"db"}) {
		t.Errorf("Order = %v, want [db]", res.Order)
	}
	if !reflect.DeepEqual(res.Impacted, []string{"api", "web"}) {
		t.Errorf("Impacted = %v, want [api web]", res.Impacted)
	}
}

func TestAnalyze_WalksToUpstreamRoots(t *testing.T) {
	// web depends on api and auth; both fail because db and redis failed.
	g := buildGraph(t, []topology.Record{
		{Name: "db"},
		{Name: "redis"},
		{Name: "api", DependsOn: []string{"db"}},
		{Name: "auth", DependsOn: []string{"redis"}},
		{Name: "web", DependsOn: []string{"api", "auth"}},
	})
	a := New(g, 0.7)
	for _, name := range []string{"db", "redis", "api", "auth", "web"} {
		setHealth(t, g, name, 0.4)
	}

	res, err := a.Analyze("web")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	// Level order with name tie-breaks: api, auth walked first, then their
	// failing deps db and redis discovered as roots.
	if !reflect.DeepEqual(res.Order, []string{"db", "redis"}) {
		t.Errorf("Order = %v, want [db redis]", res.Order)
	}
	if !reflect.DeepEqual(res.Roots, []string{"db", "redis"}) {
		t.Errorf("Roots = %v, want [db redis]", res.Roots)
	}
	if len(res.Impacted) != 0 {
		t.Errorf("Impacted = %v, want none for leaf service", res.Impacted)
	}
}

func TestAnalyze_FailingCycleFallsBackToLowestHealth(t *testing.T) {
	g := buildGraph(t, []topology.Record{
		{Name: "a", DependsOn: []string{"b"}},
		{Name: "b", DependsOn: []string{"a"}},
	})
	a := New(g, 0.7)
	setHealth(t, g, "a", 0.5)
	setHealth(t, g, "b", 0.2)

	res, err := a.Analyze("a")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !reflect.DeepEqual(res.Order, []string{"b"}) {
		t.Errorf("Order = %v, want [b] (lowest health in cycle)", res.Order)
	}
}
