package sim

import (
	"fmt"
	"sort"
)

// Scenario names.
const (
	ScenarioRateLimiting    = "rate-limiting"
	ScenarioAdaptiveScaling = "adaptive-scaling"
	ScenarioTokenBucket     = "token-bucket"
	ScenarioNone            = "none"
)

// ValidScenarios is the set of recognized scenario names.
// Shared by SimConfig.Validate() and the policy constructors below.
var ValidScenarios = map[string]bool{
	ScenarioRateLimiting:    true,
	ScenarioAdaptiveScaling: true,
	ScenarioTokenBucket:     true,
	ScenarioNone:            true,
}

// IsValidScenario returns true if name is a recognized scenario.
func IsValidScenario(name string) bool {
	return ValidScenarios[name]
}

// ScenarioNames returns all scenario names in sorted order.
func ScenarioNames() []string {
	names := make([]string, 0, len(ValidScenarios))
	for name := range ValidScenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ComparedScenarios are the two mitigation strategies compared by default.
func ComparedScenarios() []string {
	return []string{ScenarioRateLimiting, ScenarioAdaptiveScaling}
}

// NewAdmissionPolicy creates the admission policy for cfg.Scenario.
// Panics on unrecognized names; call cfg.Validate() first.
func NewAdmissionPolicy(cfg SimConfig) AdmissionPolicy {
	switch cfg.Scenario {
	case ScenarioRateLimiting:
		return NewRateLimitAdmission(cfg.RateLimit)
	case ScenarioTokenBucket:
		return NewTokenBucket(cfg.BucketSize, cfg.RefillRate)
	case ScenarioAdaptiveScaling, ScenarioNone:
		return &AlwaysAdmit{}
	default:
		panic(fmt.Sprintf("unhandled scenario %q", cfg.Scenario))
	}
}

// NewScalingPolicy creates the scaling policy for cfg.Scenario, or nil when
// the scenario does not scale.
func NewScalingPolicy(cfg SimConfig) ScalingPolicy {
	if cfg.Scenario != ScenarioAdaptiveScaling {
		return nil
	}
	return NewQueueThresholdScaler(cfg.QueueThreshold, cfg.ScalingDuration, cfg.InitialCapacity, cfg.MaxCapacity, cfg.ScalingMode)
}
