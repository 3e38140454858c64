package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/ddos-sim/sim/trace"
	"github.com/inference-sim/ddos-sim/sim/workload"
)

// ScenarioBundle is a sweep configuration loadable from YAML.
// Nil pointer fields mean "not set in YAML": they do not override SimConfig.
// String fields use empty string for "not set".
type ScenarioBundle struct {
	Scenarios   []string               `yaml:"scenarios"`
	Horizon     *float64               `yaml:"horizon"`
	Seed        *int64                 `yaml:"seed"`
	TraceLevel  string                 `yaml:"trace_level"`
	ArrivalMode string                 `yaml:"arrival_mode"`
	Server      ServerBundle           `yaml:"server"`
	Workload    *workload.WorkloadSpec `yaml:"workload"`
}

// ServerBundle holds server and mitigation overrides.
type ServerBundle struct {
	InitialCapacity *int     `yaml:"initial_capacity"`
	RateLimit       *int     `yaml:"rate_limit"`
	QueueThreshold  *int     `yaml:"queue_threshold"`
	ScalingDuration *float64 `yaml:"scaling_duration"`
	ScalingMode     string   `yaml:"scaling_mode"`
	ScaleCheck      string   `yaml:"scale_check"`
	MaxCapacity     *int     `yaml:"max_capacity"`
	ServiceRate     *float64 `yaml:"service_rate"`
	BucketSize      *int     `yaml:"bucket_size"`
	RefillRate      *float64 `yaml:"refill_rate"`

	ServiceDistribution *workload.DistSpec `yaml:"service_distribution"`
}

// LoadScenarioBundle reads and parses a YAML sweep configuration file.
// Unrecognized keys are rejected.
func LoadScenarioBundle(path string) (*ScenarioBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario config: %w", err)
	}
	var bundle ScenarioBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing scenario config: %w", err)
	}
	return &bundle, nil
}

// Validate checks names and the ranges that can be judged without the rest
// of the configuration. SimConfig.Validate runs again after ApplyTo.
func (b *ScenarioBundle) Validate() error {
	for _, name := range b.Scenarios {
		if !IsValidScenario(name) {
			return fmt.Errorf("unknown scenario %q; valid: %v", name, ScenarioNames())
		}
	}
	if !trace.IsValidTraceLevel(b.TraceLevel) {
		return fmt.Errorf("unknown trace level %q", b.TraceLevel)
	}
	if !ValidArrivalModes[b.ArrivalMode] {
		return fmt.Errorf("unknown arrival mode %q", b.ArrivalMode)
	}
	if !ValidScalingModes[b.Server.ScalingMode] {
		return fmt.Errorf("unknown scaling mode %q", b.Server.ScalingMode)
	}
	if !ValidScaleChecks[b.Server.ScaleCheck] {
		return fmt.Errorf("unknown scale check %q", b.Server.ScaleCheck)
	}
	if b.Horizon != nil && *b.Horizon < 0 {
		return fmt.Errorf("horizon must be non-negative, got %v", *b.Horizon)
	}
	if b.Server.InitialCapacity != nil && *b.Server.InitialCapacity < 1 {
		return fmt.Errorf("initial_capacity must be >= 1, got %d", *b.Server.InitialCapacity)
	}
	if b.Server.ServiceRate != nil && *b.Server.ServiceRate <= 0 {
		return fmt.Errorf("service_rate must be positive, got %v", *b.Server.ServiceRate)
	}
	if d := b.Server.ServiceDistribution; d != nil {
		if err := workload.ValidateDistSpec(*d); err != nil {
			return fmt.Errorf("service_distribution: %w", err)
		}
	}
	if b.Workload != nil {
		if err := b.Workload.Validate(); err != nil {
			return fmt.Errorf("workload: %w", err)
		}
	}
	return nil
}

// ApplyTo overwrites the fields of cfg that the bundle sets.
func (b *ScenarioBundle) ApplyTo(cfg *SimConfig) {
	if b.Horizon != nil {
		cfg.Horizon = *b.Horizon
	}
	if b.Seed != nil {
		cfg.Seed = *b.Seed
	}
	if b.TraceLevel != "" {
		cfg.TraceLevel = b.TraceLevel
	}
	if b.ArrivalMode != "" {
		cfg.ArrivalMode = b.ArrivalMode
	}
	srv := b.Server
	if srv.InitialCapacity != nil {
		cfg.InitialCapacity = *srv.InitialCapacity
	}
	if srv.RateLimit != nil {
		cfg.RateLimit = *srv.RateLimit
	}
	if srv.QueueThreshold != nil {
		cfg.QueueThreshold = *srv.QueueThreshold
	}
	if srv.ScalingDuration != nil {
		cfg.ScalingDuration = *srv.ScalingDuration
	}
	if srv.ScalingMode != "" {
		cfg.ScalingMode = srv.ScalingMode
	}
	if srv.ScaleCheck != "" {
		cfg.ScaleCheck = srv.ScaleCheck
	}
	if srv.MaxCapacity != nil {
		cfg.MaxCapacity = *srv.MaxCapacity
	}
	if srv.ServiceRate != nil {
		cfg.ServiceRate = *srv.ServiceRate
	}
	if srv.BucketSize != nil {
		cfg.BucketSize = *srv.BucketSize
	}
	if srv.RefillRate != nil {
		cfg.RefillRate = *srv.RefillRate
	}
	if srv.ServiceDistribution != nil {
		cfg.ServiceDist = *srv.ServiceDistribution
	}
	if b.Workload != nil {
		cfg.LegitimateArrival = b.Workload.Legitimate
		cfg.AttackArrival = b.Workload.Attack
	}
}

// ScenarioList returns the scenarios to sweep, ComparedScenarios when unset.
func (b *ScenarioBundle) ScenarioList() []string {
	if len(b.Scenarios) == 0 {
		return ComparedScenarios()
	}
	return b.Scenarios
}

// SweepPoints returns the rate points to sweep, DefaultSweep when unset.
func (b *ScenarioBundle) SweepPoints() []workload.RatePoint {
	if b.Workload == nil {
		return workload.DefaultSweep()
	}
	return b.Workload.SweepPoints()
}
