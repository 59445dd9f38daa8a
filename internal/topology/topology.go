// Topology input loading for the service dependency graph
package topology

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record is one declared service from the topology input. Health defaults
// to 1.0 when omitted.
type Record struct {
	Name      string   `json:"name" yaml:"name"`
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Health    *float64 `json:"health,omitempty" yaml:"health,omitempty"`
}

// InitialHealth returns the declared health, or 1.0 when omitted.
func (r Record) InitialHealth() float64 {
	if r.Health == nil {
		return 1.0
	}
	return *r.Health
}

// Load reads an ordered list of service records from path. JSON and YAML
// are supported, selected by file extension.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology: %w", err)
	}
	var records []Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parse topology: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parse topology: %w", err)
		}
	}
	return records, nil
}
