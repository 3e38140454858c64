// Package workload generates the random quantities that drive a simulation run:
// inter-arrival gaps for each traffic class and service times. It has no
// dependency on sim/.
package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Process names accepted by NewArrivalSampler.
const (
	ProcessPoisson  = "poisson"
	ProcessConstant = "constant"
	ProcessGamma    = "gamma"
	ProcessWeibull  = "weibull"
)

// ValidProcesses is the set of recognized arrival process names.
// An empty string defaults to poisson.
var ValidProcesses = map[string]bool{
	"":              true,
	ProcessPoisson:  true,
	ProcessConstant: true,
	ProcessGamma:    true,
	ProcessWeibull:  true,
}

// IsValidProcess returns true if name is a recognized arrival process.
func IsValidProcess(name string) bool {
	return ValidProcesses[name]
}

// ArrivalSpec selects the inter-arrival distribution for one traffic class.
type ArrivalSpec struct {
	Process string   `yaml:"process"`
	CV      *float64 `yaml:"cv,omitempty"` // coefficient of variation, gamma/weibull only
}

// Sampler draws positive durations in simulation time units.
type Sampler interface {
	Sample(rng *rand.Rand) float64
}

// PoissonSampler generates exponentially-distributed gaps (CV=1).
type PoissonSampler struct {
	rate float64 // events per time unit
}

// NewPoissonSampler returns an exponential sampler with the given rate.
// Panics if rate is not positive.
func NewPoissonSampler(rate float64) *PoissonSampler {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		panic(fmt.Sprintf("NewPoissonSampler: rate must be a positive finite number, got %v", rate))
	}
	return &PoissonSampler{rate: rate}
}

func (s *PoissonSampler) Sample(rng *rand.Rand) float64 {
	return rng.ExpFloat64() / s.rate
}

// ConstantSampler always returns the same duration. Used for deterministic
// arrival patterns and in tests that assert exact event orderings.
type ConstantSampler struct {
	Interval float64
}

func (s *ConstantSampler) Sample(_ *rand.Rand) float64 {
	return s.Interval
}

// SequenceSampler replays a fixed list of durations, repeating the last one
// once the list is exhausted.
type SequenceSampler struct {
	Values []float64
	next   int
}

func (s *SequenceSampler) Sample(_ *rand.Rand) float64 {
	if len(s.Values) == 0 {
		panic("SequenceSampler: no values")
	}
	if s.next >= len(s.Values) {
		return s.Values[len(s.Values)-1]
	}
	v := s.Values[s.next]
	s.next++
	return v
}

// GammaSampler generates Gamma-distributed gaps.
// CV > 1 produces bursty arrivals, which models attack waves.
// Implemented using Marsaglia-Tsang's method for shape >= 1,
// with transformation for shape < 1.
type GammaSampler struct {
	shape float64 // 1/CV² (alpha parameter)
	scale float64 // CV²/rate (beta parameter)
}

func (s *GammaSampler) Sample(rng *rand.Rand) float64 {
	return gammaRand(rng, s.shape, s.scale)
}

// gammaRand samples from Gamma(shape, scale) using Marsaglia-Tsang's method.
// For shape >= 1: direct method.
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		// Squeeze test
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// WeibullSampler generates Weibull-distributed gaps.
type WeibullSampler struct {
	shape float64 // Weibull k parameter
	scale float64 // Weibull λ parameter (time units)
}

func (s *WeibullSampler) Sample(rng *rand.Rand) float64 {
	// Inverse CDF: scale * (-ln(U))^(1/shape)
	u := rng.Float64()
	if u == 0 {
		u = math.SmallestNonzeroFloat64 // prevent -ln(0) = +Inf
	}
	return s.scale * math.Pow(-math.Log(u), 1.0/s.shape)
}

// NewArrivalSampler creates a Sampler from a spec and a rate in events per
// time unit. The mean gap is always 1/rate; the process only changes its shape.
// Callers validate the spec first; unknown processes fall back to poisson.
func NewArrivalSampler(spec ArrivalSpec, rate float64) Sampler {
	switch spec.Process {
	case "", ProcessPoisson:
		return NewPoissonSampler(rate)

	case ProcessConstant:
		return &ConstantSampler{Interval: 1.0 / rate}

	case ProcessGamma:
		cv := cvOrDefault(spec.CV)
		// shape = 1/CV², scale = mean * CV² = (1/rate) * CV²
		shape := 1.0 / (cv * cv)
		scale := cv * cv / rate
		if shape < 0.01 {
			logrus.Warnf("Gamma shape %.4f (CV=%.1f) is very small; falling back to Poisson", shape, cv)
			return NewPoissonSampler(rate)
		}
		return &GammaSampler{shape: shape, scale: scale}

	case ProcessWeibull:
		cv := cvOrDefault(spec.CV)
		k := weibullShapeFromCV(cv)
		// scale = mean / Γ(1 + 1/k)
		scale := (1.0 / rate) / math.Gamma(1.0+1.0/k)
		return &WeibullSampler{shape: k, scale: scale}

	default:
		logrus.Warnf("unknown arrival process %q; using poisson", spec.Process)
		return NewPoissonSampler(rate)
	}
}

// ValidateArrivalSpec checks the process name and CV range.
func ValidateArrivalSpec(spec ArrivalSpec) error {
	if !IsValidProcess(spec.Process) {
		return fmt.Errorf("unknown arrival process %q", spec.Process)
	}
	if spec.CV != nil {
		if spec.Process != ProcessGamma && spec.Process != ProcessWeibull {
			return fmt.Errorf("cv is only supported by the gamma and weibull processes, got process %q", spec.Process)
		}
		if *spec.CV <= 0 || math.IsNaN(*spec.CV) || math.IsInf(*spec.CV, 0) {
			return fmt.Errorf("cv must be a positive finite number, got %v", *spec.CV)
		}
		if spec.Process == ProcessWeibull && (*spec.CV < 0.01 || *spec.CV > 10.4) {
			return fmt.Errorf("weibull cv must be in [0.01, 10.4], got %f", *spec.CV)
		}
	}
	return nil
}

func cvOrDefault(cv *float64) float64 {
	if cv == nil || *cv <= 0 {
		return 1.0
	}
	return *cv
}

// weibullShapeFromCV finds Weibull shape parameter k such that
// CV² = Γ(1+2/k)/Γ(1+1/k)² - 1, using bisection.
// Range: k ∈ [0.1, 100], tolerance: |CV_computed - CV_target| < 0.001.
func weibullShapeFromCV(targetCV float64) float64 {
	lo, hi := 0.1, 100.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2.0
		cv := weibullCV(mid)
		if math.Abs(cv-targetCV) < 0.001 {
			return mid
		}
		// CV is monotonically decreasing in k
		if cv > targetCV {
			lo = mid
		} else {
			hi = mid
		}
	}
	logrus.Warnf("weibullShapeFromCV: bisection did not converge for CV=%.3f after 100 iterations; using k=%.3f", targetCV, (lo+hi)/2.0)
	return (lo + hi) / 2.0
}

// weibullCV computes the coefficient of variation for Weibull(k).
func weibullCV(k float64) float64 {
	g1 := math.Gamma(1.0 + 1.0/k)
	g2 := math.Gamma(1.0 + 2.0/k)
	return math.Sqrt(g2/(g1*g1) - 1.0)
}
