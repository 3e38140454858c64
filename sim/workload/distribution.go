package workload

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Service-time distribution names accepted by NewServiceSampler.
const (
	DistExponential     = "exponential"
	DistConstant        = "constant"
	DistLogNormal       = "lognormal"
	DistParetoLogNormal = "pareto_lognormal"
)

// validDists maps each distribution to the parameters it requires.
var validDists = map[string][]string{
	"":                  nil, // empty defaults to exponential
	DistExponential:     nil,
	DistConstant:        nil,
	DistLogNormal:       {"sigma"},
	DistParetoLogNormal: {"alpha", "sigma", "mix_weight"},
}

// DistParams returns the parameter names the distribution reads.
func DistParams(dist string) []string {
	return validDists[dist]
}

// DistNames returns the recognized distribution names in sorted order.
func DistNames() []string {
	names := make([]string, 0, len(validDists))
	for name := range validDists {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// DistSpec parameterizes a service-time distribution. The mean always comes
// from the service rate; Params only shape the spread around it.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// LogNormalSampler draws exp(mu + sigma*Z).
type LogNormalSampler struct {
	mu    float64 // mean of ln(X)
	sigma float64 // std dev of ln(X)
}

func (s *LogNormalSampler) Sample(rng *rand.Rand) float64 {
	return math.Exp(s.mu + s.sigma*rng.NormFloat64())
}

// ParetoLogNormalSampler is a mixture of Pareto and LogNormal distributions.
// With probability mixWeight, draw from Pareto(alpha, xm); otherwise LogNormal(mu, sigma).
// Both components share the same mean, so the mixture does too.
type ParetoLogNormalSampler struct {
	alpha     float64 // Pareto shape
	xm        float64 // Pareto scale (minimum)
	mu        float64 // LogNormal mean of ln(X)
	sigma     float64 // LogNormal std dev of ln(X)
	mixWeight float64 // Probability of drawing from Pareto
	mean      float64 // returned when a draw overflows
}

func (s *ParetoLogNormalSampler) Sample(rng *rand.Rand) float64 {
	var val float64
	if rng.Float64() < s.mixWeight {
		// Pareto: X = xm / U^(1/alpha)
		u := rng.Float64()
		if u == 0 {
			u = math.SmallestNonzeroFloat64 // prevent division by zero → +Inf
		}
		val = s.xm / math.Pow(u, 1.0/s.alpha)
	} else {
		val = math.Exp(s.mu + s.sigma*rng.NormFloat64())
	}
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return s.mean
	}
	return val
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// ValidateDistSpec checks the distribution name, its required parameters and their ranges.
func ValidateDistSpec(spec DistSpec) error {
	required, ok := validDists[spec.Type]
	if !ok {
		return fmt.Errorf("unknown distribution type %q; valid: %v", spec.Type, DistNames())
	}
	if err := requireParam(spec.Params, required...); err != nil {
		return err
	}
	for k, v := range spec.Params {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("parameter %q must be finite, got %v", k, v)
		}
	}
	switch spec.Type {
	case DistLogNormal, DistParetoLogNormal:
		if spec.Params["sigma"] <= 0 {
			return fmt.Errorf("sigma must be positive, got %v", spec.Params["sigma"])
		}
	}
	if spec.Type == DistParetoLogNormal {
		if spec.Params["alpha"] <= 1 {
			return fmt.Errorf("alpha must exceed 1 for a finite mean, got %v", spec.Params["alpha"])
		}
		if w := spec.Params["mix_weight"]; w < 0 || w > 1 {
			return fmt.Errorf("mix_weight must be in [0, 1], got %v", w)
		}
	}
	return nil
}

// NewServiceSampler creates a service-time Sampler with mean 1/rate.
func NewServiceSampler(spec DistSpec, rate float64) (Sampler, error) {
	if err := ValidateDistSpec(spec); err != nil {
		return nil, err
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("service rate must be a positive finite number, got %v", rate)
	}
	mean := 1.0 / rate

	switch spec.Type {
	case DistConstant:
		return &ConstantSampler{Interval: mean}, nil

	case DistLogNormal:
		sigma := spec.Params["sigma"]
		// E[X] = exp(mu + sigma²/2)
		return &LogNormalSampler{mu: math.Log(mean) - sigma*sigma/2, sigma: sigma}, nil

	case DistParetoLogNormal:
		alpha, sigma := spec.Params["alpha"], spec.Params["sigma"]
		// E[Pareto] = xm * alpha / (alpha - 1)
		return &ParetoLogNormalSampler{
			alpha:     alpha,
			xm:        mean * (alpha - 1) / alpha,
			mu:        math.Log(mean) - sigma*sigma/2,
			sigma:     sigma,
			mixWeight: spec.Params["mix_weight"],
			mean:      mean,
		}, nil

	default:
		return NewPoissonSampler(rate), nil
	}
}
