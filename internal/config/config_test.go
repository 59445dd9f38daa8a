package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	yaml := `
ticks: 10
seed: 42
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Ticks != 10 || cfg.Seed != 42 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Threshold != 0.70 || cfg.Alpha != 0.8 || cfg.HealTo != 0.88 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Glitch.Chance != 0.1 {
		t.Errorf("glitch defaults not applied: %+v", cfg.Glitch)
	}
}

func TestLoad_WithCueSchema(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sim.yaml")
	cuePath := filepath.Join(dir, "sim.cue")

	yaml := `
ticks: 20
threshold: 0.7
alpha: 0.8
cooldown: 2
heal_to: 0.9
seed: 7
glitch:
  chance: 0.2
  min_drop: 0.1
  max_drop: 0.3
`
	schema := `
ticks:     int & >=1
threshold: float & >=0 & <=1
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if err := os.WriteFile(cuePath, []byte(schema), 0644); err != nil {
		t.Fatalf("failed to write schema: %v", err)
	}

	cfg, err := Load(cfgPath, cuePath)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Ticks != 20 || cfg.Cooldown != 2 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestValidate_Ranges(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SimulationConfig)
	}{
		{"zero ticks", func(c *SimulationConfig) { c.Ticks = 0 }},
		{"threshold above one", func(c *SimulationConfig) { c.Threshold = 1.5 }},
		{"negative alpha", func(c *SimulationConfig) { c.Alpha = -0.1 }},
		{"zero cooldown", func(c *SimulationConfig) { c.Cooldown = 0 }},
		{"cooldown below -1", func(c *SimulationConfig) { c.Cooldown = -2 }},
		{"heal_to above one", func(c *SimulationConfig) { c.HealTo = 1.1 }},
		{"glitch chance above one", func(c *SimulationConfig) { c.Glitch.Chance = 2 }},
		{"min_drop above max_drop", func(c *SimulationConfig) { c.Glitch.MinDrop = 0.6; c.Glitch.MaxDrop = 0.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestValidate_CooldownDisabled(t *testing.T) {
	cfg := Default()
	cfg.Cooldown = -1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	if !cfg.HealingDisabled() {
		t.Error("HealingDisabled() = false, want true")
	}
}
