package workload

import (
	"fmt"
	"sort"
)

// Built-in workload presets. Each returns a valid WorkloadSpec.

// ScenarioSteadyFlood is the default sweep with Poisson traffic on both classes.
func ScenarioSteadyFlood() *WorkloadSpec {
	return &WorkloadSpec{
		Version:    "1",
		Legitimate: ArrivalSpec{Process: ProcessPoisson},
		Attack:     ArrivalSpec{Process: ProcessPoisson},
		Points:     DefaultSweep(),
	}
}

// ScenarioBurstyAttack keeps legitimate traffic Poisson but sends the attack
// in Gamma-distributed waves (CV=3.5).
func ScenarioBurstyAttack() *WorkloadSpec {
	cv := 3.5
	return &WorkloadSpec{
		Version:    "1",
		Legitimate: ArrivalSpec{Process: ProcessPoisson},
		Attack:     ArrivalSpec{Process: ProcessGamma, CV: &cv},
		Points:     DefaultSweep(),
	}
}

// ScenarioAttackDominant sweeps attack rates that exceed the legitimate rate.
func ScenarioAttackDominant() *WorkloadSpec {
	return &WorkloadSpec{
		Version:    "1",
		Legitimate: ArrivalSpec{Process: ProcessPoisson},
		Attack:     ArrivalSpec{Process: ProcessPoisson},
		Points: []RatePoint{
			{Legitimate: 5, Attack: 20},
			{Legitimate: 5, Attack: 50},
			{Legitimate: 10, Attack: 100},
		},
	}
}

var presets = map[string]func() *WorkloadSpec{
	"steady-flood":    ScenarioSteadyFlood,
	"bursty-attack":   ScenarioBurstyAttack,
	"attack-dominant": ScenarioAttackDominant,
}

// PresetNames returns the names of the built-in presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the named built-in workload.
func Preset(name string) (*WorkloadSpec, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown workload preset %q; valid: %v", name, PresetNames())
	}
	return build(), nil
}
