// YAML config loader with CUE validation integration
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks configuration values outside their documented range.
var ErrInvalidConfig = errors.New("invalid config")

// GlitchConfig parameterizes the random per-tick health perturbation.
// Each tick every service draws against Chance; on a hit its health drops
// by a uniform value in [MinDrop, MaxDrop].
type GlitchConfig struct {
	Chance  float64 `yaml:"chance"`
	MinDrop float64 `yaml:"min_drop"`
	MaxDrop float64 `yaml:"max_drop"`
}

// SimulationConfig is the root configuration for a simulation run.
type SimulationConfig struct {
	Ticks     int          `yaml:"ticks"`
	Threshold float64      `yaml:"threshold"`
	Alpha     float64      `yaml:"alpha"`
	Cooldown  int          `yaml:"cooldown"`
	HealTo    float64      `yaml:"heal_to"`
	Seed      int64        `yaml:"seed"`
	Glitch    GlitchConfig `yaml:"glitch"`
}

// Default returns the documented defaults for all settings.
func Default() SimulationConfig {
	return SimulationConfig{
		Ticks:     50,
		Threshold: 0.70,
		Alpha:     0.8,
		Cooldown:  1,
		HealTo:    0.88,
		Seed:      1337,
		Glitch:    GlitchConfig{Chance: 0.1, MinDrop: 0.2, MaxDrop: 0.5},
	}
}

// HealingDisabled reports whether automatic recovery is switched off.
func (c *SimulationConfig) HealingDisabled() bool {
	return c.Cooldown == -1
}

// Load reads YAML config from path, validates it against the CUE schema at
// schemaPath (skipped when empty), and applies defaults for omitted keys.
func Load(path, schemaPath string) (*SimulationConfig, error) {
	if schemaPath != "" {
		if err := ValidateWithCue(path, schemaPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every value against its documented range. Violations are
// reported at load time, not at first use.
func (c *SimulationConfig) Validate() error {
	if c.Ticks < 1 {
		return fmt.Errorf("%w: ticks must be >= 1, got %d", ErrInvalidConfig, c.Ticks)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be in [0,1], got %g", ErrInvalidConfig, c.Threshold)
	}
	if c.Alpha < 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: alpha must be in [0,1], got %g", ErrInvalidConfig, c.Alpha)
	}
	if c.Cooldown < 1 && c.Cooldown != -1 {
		return fmt.Errorf("%w: cooldown must be >= 1 or exactly -1, got %d", ErrInvalidConfig, c.Cooldown)
	}
	if c.HealTo < 0 || c.HealTo > 1 {
		return fmt.Errorf("%w: heal_to must be in [0,1], got %g", ErrInvalidConfig, c.HealTo)
	}
	if c.Glitch.Chance < 0 || c.Glitch.Chance > 1 {
		return fmt.Errorf("%w: glitch.chance must be in [0,1], got %g", ErrInvalidConfig, c.Glitch.Chance)
	}
	if c.Glitch.MinDrop < 0 || c.Glitch.MaxDrop > 1 || c.Glitch.MinDrop > c.Glitch.MaxDrop {
		return fmt.Errorf("%w: glitch drops must satisfy 0 <= min_drop <= max_drop <= 1, got [%g,%g]",
			ErrInvalidConfig, c.Glitch.MinDrop, c.Glitch.MaxDrop)
	}
	return nil
}
