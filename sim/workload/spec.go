package workload

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// WorkloadSpec is the top-level traffic description for a sweep.
// Loaded from YAML via LoadWorkloadSpec(path).
type WorkloadSpec struct {
	Version    string      `yaml:"version"`
	Legitimate ArrivalSpec `yaml:"legitimate"`
	Attack     ArrivalSpec `yaml:"attack"`
	Points     []RatePoint `yaml:"points"`
}

// LoadWorkloadSpec reads and parses a YAML workload specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadWorkloadSpec(path string) (*WorkloadSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload spec: %w", err)
	}
	var spec WorkloadSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing workload spec: %w", err)
	}
	if spec.Version == "" {
		spec.Version = "1"
	}
	return &spec, nil
}

// Validate checks the arrival specs and every rate point.
// An empty point list is valid: callers fall back to DefaultSweep.
func (s *WorkloadSpec) Validate() error {
	if err := ValidateArrivalSpec(s.Legitimate); err != nil {
		return fmt.Errorf("legitimate: %w", err)
	}
	if err := ValidateArrivalSpec(s.Attack); err != nil {
		return fmt.Errorf("attack: %w", err)
	}
	for i, p := range s.Points {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("points[%d]: %w", i, err)
		}
	}
	return nil
}

// SweepPoints returns the configured points, or DefaultSweep when none are set.
func (s *WorkloadSpec) SweepPoints() []RatePoint {
	if len(s.Points) == 0 {
		return DefaultSweep()
	}
	return s.Points
}

func validateFinitePositive(name string, v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a positive finite number, got %v", name, v)
	}
	return nil
}
