package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/inference-sim/ddos-sim/sim"
)

func TestNewResultsRegistry_OneSeriesPerResultAndMetric(t *testing.T) {
	// GIVEN two results from different scenarios
	results := []*sim.Result{
		{Scenario: sim.ScenarioRateLimiting, LegitimateRate: 100, AttackRate: 10,
			Summary: sim.MetricsSummary{Processed: 40, Dropped: 60}},
		{Scenario: sim.ScenarioAdaptiveScaling, LegitimateRate: 100, AttackRate: 10,
			Summary: sim.MetricsSummary{Processed: 90, ScaleUps: 4}},
	}

	// WHEN registered
	reg, err := newResultsRegistry(results)
	require.NoError(t, err)

	// THEN every gauge carries one series per result
	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, len(promGauges)*len(results), count)

	expected := `
# HELP ddos_sim_legitimate_dropped Legitimate requests dropped by admission control.
# TYPE ddos_sim_legitimate_dropped gauge
ddos_sim_legitimate_dropped{attack_rate="10",legitimate_rate="100",scenario="adaptive-scaling"} 0
ddos_sim_legitimate_dropped{attack_rate="10",legitimate_rate="100",scenario="rate-limiting"} 60
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ddos_sim_legitimate_dropped"))
}

func TestWritePromTextfile_WritesExposition(t *testing.T) {
	res, err := sim.RunSimulation(sim.ScenarioAdaptiveScaling, 5, 50, sim.DefaultSimConfig())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "ddos.prom")

	require.NoError(t, writePromTextfile(path, []*sim.Result{res}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ddos_sim_scale_ups{attack_rate="50",legitimate_rate="5",scenario="adaptive-scaling"}`)
}
