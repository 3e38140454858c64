package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/ddos-sim/sim/trace"
	"github.com/inference-sim/ddos-sim/sim/workload"
)

// Result is what one simulation run reports.
type Result struct {
	Scenario        string                 `json:"scenario"`
	LegitimateRate  float64                `json:"legitimate_rate"`
	AttackRate      float64                `json:"attack_rate"`
	AvgResponseTime float64                `json:"avg_response_time"`
	Processed       int                    `json:"processed"`
	Dropped         int                    `json:"dropped"`
	Summary         MetricsSummary         `json:"summary"`
	Trace           *trace.TraceSummary    `json:"trace,omitempty"`
	RawTrace        *trace.SimulationTrace `json:"-"`
}

// RunSimulation runs scenario once with the given arrival rates. cfg supplies
// every other parameter; its Scenario and rate fields are overwritten on a
// copy, so the caller's value is never modified.
func RunSimulation(scenario string, legitimateRate, attackRate float64, cfg SimConfig) (*Result, error) {
	cfg.Scenario = scenario
	cfg.LegitimateRate = legitimateRate
	cfg.AttackRate = attackRate

	s, err := NewSimulator(cfg)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Starting %s: legitimate rate %g, attack rate %g, horizon %g, seed %d",
		scenario, legitimateRate, attackRate, cfg.Horizon, cfg.Seed)
	s.Run()

	summary := s.Metrics.Summarize()
	res := &Result{
		Scenario:        scenario,
		LegitimateRate:  legitimateRate,
		AttackRate:      attackRate,
		AvgResponseTime: summary.AvgResponseTime,
		Processed:       summary.Processed,
		Dropped:         summary.Dropped,
		Summary:         summary,
	}
	if s.Trace != nil {
		res.Trace = trace.Summarize(s.Trace)
		res.RawTrace = s.Trace
	}
	return res, nil
}

// SweepResults maps scenario name, then rate-point label, to a run result.
type SweepResults map[string]map[string]*Result

// RunSweep runs every scenario at every rate point, all from the same cfg.
// Each run uses its own Simulator, so results depend only on their inputs.
func RunSweep(scenarios []string, points []workload.RatePoint, cfg SimConfig) (SweepResults, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("sweep needs at least one scenario")
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("sweep needs at least one rate point")
	}
	results := make(SweepResults, len(scenarios))
	for _, scenario := range scenarios {
		results[scenario] = make(map[string]*Result, len(points))
		for i, p := range points {
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("point %d: %w", i, err)
			}
			label := p.Label()
			if _, dup := results[scenario][label]; dup {
				return nil, fmt.Errorf("duplicate rate point %q", label)
			}
			res, err := RunSimulation(scenario, p.Legitimate, p.Attack, cfg)
			if err != nil {
				return nil, fmt.Errorf("%s at %s: %w", scenario, label, err)
			}
			results[scenario][label] = res
		}
	}
	return results, nil
}
