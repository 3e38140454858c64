package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inference-sim/ddos-sim/sim/workload"
)

// testConfig returns a valid config for scenario with both classes arriving
// at rate 1.
func testConfig(scenario string) SimConfig {
	cfg := DefaultSimConfig()
	cfg.Scenario = scenario
	cfg.LegitimateRate = 1
	cfg.AttackRate = 1
	return cfg
}

// newScriptedSimulator builds a simulator whose gaps and service times are
// replayed from fixed lists instead of sampled, so tests can assert exact
// event orderings. A nil list keeps the sampler built from cfg.
func newScriptedSimulator(t *testing.T, cfg SimConfig, legitGaps, attackGaps, service []float64) *Simulator {
	t.Helper()
	s, err := NewSimulator(cfg)
	require.NoError(t, err)
	if legitGaps != nil {
		s.LegitimateGaps = &workload.SequenceSampler{Values: legitGaps}
	}
	if attackGaps != nil {
		s.AttackGaps = &workload.SequenceSampler{Values: attackGaps}
	}
	if service != nil {
		s.ServiceTimes = &workload.SequenceSampler{Values: service}
	}
	return s
}

// assertConservation checks that every legitimate arrival is accounted for.
func assertConservation(t *testing.T, m *Metrics) {
	t.Helper()
	require.Equal(t, m.LegitimateArrivals, m.Processed+m.Dropped+m.LegitimateInSystem,
		"processed %d + dropped %d + pending %d != arrivals %d",
		m.Processed, m.Dropped, m.LegitimateInSystem, m.LegitimateArrivals)
}

// recordingEvent is a no-op event that appends its name to a shared log.
type recordingEvent struct {
	at   float64
	name string
	log  *[]string
}

func (e *recordingEvent) Timestamp() float64 { return e.at }

func (e *recordingEvent) Execute(_ *Simulator) { *e.log = append(*e.log, e.name) }
