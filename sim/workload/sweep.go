package workload

import "fmt"

// RatePoint is one (legitimate, attack) arrival-rate pair of a sweep.
type RatePoint struct {
	Legitimate float64 `yaml:"legitimate" json:"legitimate"`
	Attack     float64 `yaml:"attack" json:"attack"`
}

// Label returns the human-readable key used to report results for this point.
func (p RatePoint) Label() string {
	return fmt.Sprintf("User Rate: %g, Attack Rate: %g", p.Legitimate, p.Attack)
}

// Validate checks that both rates are positive and finite.
func (p RatePoint) Validate() error {
	if err := validateFinitePositive("legitimate rate", p.Legitimate); err != nil {
		return err
	}
	return validateFinitePositive("attack rate", p.Attack)
}

// DefaultSweep returns the four rate combinations compared by default.
func DefaultSweep() []RatePoint {
	return []RatePoint{
		{Legitimate: 100, Attack: 10},
		{Legitimate: 50, Attack: 15},
		{Legitimate: 80, Attack: 5},
		{Legitimate: 60, Attack: 20},
	}
}
