package sim

import (
	"fmt"
	"math"

	"github.com/inference-sim/ddos-sim/sim/trace"
	"github.com/inference-sim/ddos-sim/sim/workload"
)

// Arrival modes.
const (
	// ArrivalModeOpen schedules the next arrival of a class as soon as the
	// current one arrives: arrivals never wait on the server.
	ArrivalModeOpen = "open"
	// ArrivalModeClosed schedules the next arrival of a class only after the
	// current request of that class was dropped or finished service.
	ArrivalModeClosed = "closed"
)

// Scaling modes for the adaptive-scaling scenario.
const (
	// ScalingModeIndependent treats every scale window on its own: each adds
	// one slot and, when it ends, resets capacity to the base value even if
	// other windows are still open.
	ScalingModeIndependent = "independent"
	// ScalingModeCounted keeps capacity at base + number of open windows and
	// only returns to base when the last window closes.
	ScalingModeCounted = "counted"
)

// Scale check points for the adaptive-scaling scenario.
const (
	// ScaleCheckCompletion checks the queue once a request has finished
	// service and its slot was handed to the next waiter.
	ScaleCheckCompletion = "completion"
	// ScaleCheckArrival checks the queue right after each arrival's acquire
	// attempt, so a request that was only queued can trigger a window.
	ScaleCheckArrival = "arrival"
)

// ValidArrivalModes is the set of recognized arrival modes ("" = open).
var ValidArrivalModes = map[string]bool{"": true, ArrivalModeOpen: true, ArrivalModeClosed: true}

// ValidScaleChecks is the set of recognized scale check points ("" = completion).
var ValidScaleChecks = map[string]bool{"": true, ScaleCheckCompletion: true, ScaleCheckArrival: true}

// ValidScalingModes is the set of recognized scaling modes ("" = independent).
var ValidScalingModes = map[string]bool{"": true, ScalingModeIndependent: true, ScalingModeCounted: true}

// ServerConfig groups the server and mitigation parameters.
type ServerConfig struct {
	InitialCapacity int     // slots at start of run, restored after scale windows (must be >= 1)
	RateLimit       int     // rate-limiting: max slots in use before legitimate requests are dropped
	QueueThreshold  int     // adaptive-scaling: queue length that opens a scale window
	ScalingDuration float64 // adaptive-scaling: length of a scale window
	ScalingMode     string  // "independent" (default) or "counted"
	ScaleCheck      string  // "completion" (default) or "arrival"
	MaxCapacity     int     // adaptive-scaling: upper bound on capacity (0 = unbounded)
	ServiceRate     float64 // service completions per time unit for one slot
	BucketSize      int     // token-bucket: burst size
	RefillRate      float64 // token-bucket: tokens per time unit

	// ServiceDist shapes service times around the mean 1/ServiceRate
	// (zero value = exponential).
	ServiceDist workload.DistSpec
}

// TrafficConfig groups the arrival parameters of both traffic classes.
type TrafficConfig struct {
	LegitimateRate    float64              // legitimate arrivals per time unit
	AttackRate        float64              // attack arrivals per time unit
	ArrivalMode       string               // "open" (default) or "closed"
	LegitimateArrival workload.ArrivalSpec // inter-arrival distribution, legitimate
	AttackArrival     workload.ArrivalSpec // inter-arrival distribution, attack
}

// SimConfig holds every parameter of one simulation run.
// It is passed by value: a run never shares configuration state with another.
type SimConfig struct {
	Scenario   string
	Horizon    float64 // simulated time at which the run stops
	Seed       int64
	TraceLevel string // "none" (default) or "decisions"
	ServerConfig
	TrafficConfig
}

// DefaultSimConfig returns the configuration used when nothing is overridden.
// Rates are left at zero: callers must supply them.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Scenario: ScenarioRateLimiting,
		Horizon:  50,
		Seed:     42,
		ServerConfig: ServerConfig{
			InitialCapacity: 1,
			RateLimit:       1,
			QueueThreshold:  3,
			ScalingDuration: 5,
			ScalingMode:     ScalingModeIndependent,
			ScaleCheck:      ScaleCheckCompletion,
			ServiceRate:     1.0,
			BucketSize:      1,
			RefillRate:      1.0,
		},
		TrafficConfig: TrafficConfig{
			ArrivalMode: ArrivalModeOpen,
		},
	}
}

// Validate checks every field and returns the first problem found.
// Values are never clamped.
func (c *SimConfig) Validate() error {
	if !IsValidScenario(c.Scenario) {
		return fmt.Errorf("unknown scenario %q; valid: %v", c.Scenario, ScenarioNames())
	}
	if c.Horizon < 0 || math.IsNaN(c.Horizon) || math.IsInf(c.Horizon, 0) {
		return fmt.Errorf("horizon must be a non-negative finite number, got %v", c.Horizon)
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		return fmt.Errorf("unknown trace level %q", c.TraceLevel)
	}
	if err := validatePositiveRate("legitimate rate", c.LegitimateRate); err != nil {
		return err
	}
	if err := validatePositiveRate("attack rate", c.AttackRate); err != nil {
		return err
	}
	if err := validatePositiveRate("service rate", c.ServiceRate); err != nil {
		return err
	}
	if err := workload.ValidateDistSpec(c.ServiceDist); err != nil {
		return fmt.Errorf("service distribution: %w", err)
	}
	if !ValidArrivalModes[c.ArrivalMode] {
		return fmt.Errorf("unknown arrival mode %q", c.ArrivalMode)
	}
	if err := workload.ValidateArrivalSpec(c.LegitimateArrival); err != nil {
		return fmt.Errorf("legitimate arrival: %w", err)
	}
	if err := workload.ValidateArrivalSpec(c.AttackArrival); err != nil {
		return fmt.Errorf("attack arrival: %w", err)
	}
	if c.InitialCapacity < 1 {
		return fmt.Errorf("initial capacity must be >= 1, got %d", c.InitialCapacity)
	}

	switch c.Scenario {
	case ScenarioRateLimiting:
		if c.RateLimit < 1 {
			return fmt.Errorf("rate limit must be >= 1, got %d", c.RateLimit)
		}
		if c.RateLimit > c.InitialCapacity {
			return fmt.Errorf("rate limit %d exceeds initial capacity %d: the limiter could never drop a request",
				c.RateLimit, c.InitialCapacity)
		}
	case ScenarioAdaptiveScaling:
		if c.QueueThreshold < 1 {
			return fmt.Errorf("queue threshold must be >= 1, got %d", c.QueueThreshold)
		}
		if c.ScalingDuration <= 0 || math.IsNaN(c.ScalingDuration) || math.IsInf(c.ScalingDuration, 0) {
			return fmt.Errorf("scaling duration must be a positive finite number, got %v", c.ScalingDuration)
		}
		if !ValidScalingModes[c.ScalingMode] {
			return fmt.Errorf("unknown scaling mode %q", c.ScalingMode)
		}
		if !ValidScaleChecks[c.ScaleCheck] {
			return fmt.Errorf("unknown scale check %q", c.ScaleCheck)
		}
		if c.MaxCapacity < 0 {
			return fmt.Errorf("max capacity must be >= 0, got %d", c.MaxCapacity)
		}
		if c.MaxCapacity > 0 && c.MaxCapacity <= c.InitialCapacity {
			return fmt.Errorf("max capacity %d must exceed initial capacity %d (or be 0 for unbounded)",
				c.MaxCapacity, c.InitialCapacity)
		}
	case ScenarioTokenBucket:
		if c.BucketSize < 1 {
			return fmt.Errorf("bucket size must be >= 1, got %d", c.BucketSize)
		}
		if err := validatePositiveRate("refill rate", c.RefillRate); err != nil {
			return err
		}
	}
	return nil
}

func validatePositiveRate(name string, v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a positive finite number, got %v", name, v)
	}
	return nil
}
