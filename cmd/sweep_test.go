package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/inference-sim/ddos-sim/sim"
	"github.com/inference-sim/ddos-sim/sim/workload"
)

// sweepFlagSet mirrors the sweep command's flags on a fresh flag set.
func sweepFlagSet(t *testing.T, args ...string) (*pflag.FlagSet, *simFlags, *[]string) {
	t.Helper()
	fs := pflag.NewFlagSet("sweep", pflag.ContinueOnError)
	f := &simFlags{}
	scenarios := &[]string{}
	fs.StringSliceVar(scenarios, "scenarios", sim.ComparedScenarios(), "")
	addSimFlags(fs, f)
	require.NoError(t, fs.Parse(args))
	return fs, f, scenarios
}

func TestBuildSweepPlan_Defaults(t *testing.T) {
	fs, f, scenarios := sweepFlagSet(t)
	plan, err := buildSweepPlan(fs, "", "", "", *scenarios, f)
	require.NoError(t, err)
	assert.Equal(t, sim.ComparedScenarios(), plan.Scenarios)
	assert.Equal(t, workload.DefaultSweep(), plan.Points)
	assert.Equal(t, sim.DefaultSimConfig(), plan.Config)
}

func TestBuildSweepPlan_BundleThenFlags(t *testing.T) {
	// GIVEN a bundle setting the horizon and the scenarios
	path := filepath.Join(t.TempDir(), "bundle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scenarios: [none, token-bucket]
horizon: 20
server:
  service_rate: 2
workload:
  points:
    - legitimate: 3
      attack: 9
`), 0o644))

	// WHEN the user also overrides the horizon on the command line
	fs, f, scenarios := sweepFlagSet(t, "--horizon=30")
	plan, err := buildSweepPlan(fs, path, "", "", *scenarios, f)
	require.NoError(t, err)

	// THEN the flag wins over the bundle, and the bundle wins over defaults
	assert.Equal(t, 30.0, plan.Config.Horizon)
	assert.Equal(t, 2.0, plan.Config.ServiceRate)
	assert.Equal(t, []string{sim.ScenarioNone, sim.ScenarioTokenBucket}, plan.Scenarios)
	assert.Equal(t, []workload.RatePoint{{Legitimate: 3, Attack: 9}}, plan.Points)
}

func TestBuildSweepPlan_Preset(t *testing.T) {
	fs, f, scenarios := sweepFlagSet(t, "--scenarios=none")
	plan, err := buildSweepPlan(fs, "", "bursty-attack", "", *scenarios, f)
	require.NoError(t, err)
	assert.Equal(t, workload.ProcessGamma, plan.Config.AttackArrival.Process)
	assert.Equal(t, []string{sim.ScenarioNone}, plan.Scenarios)
}

func TestBuildSweepPlan_Errors(t *testing.T) {
	fs, f, scenarios := sweepFlagSet(t)
	_, err := buildSweepPlan(fs, filepath.Join(t.TempDir(), "missing.yaml"), "", "", *scenarios, f)
	assert.Error(t, err)
	_, err = buildSweepPlan(fs, "", "no-such-preset", "", *scenarios, f)
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("scenarios: [firewall]\n"), 0o644))
	_, err = buildSweepPlan(fs, bad, "", "", *scenarios, f)
	assert.Error(t, err)
}

func TestBuildSweepPlan_WorkloadSpecFile(t *testing.T) {
	// GIVEN a workload spec file with a weibull attack and two rate points
	path := filepath.Join(t.TempDir(), "workload.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "1"
legitimate:
  process: constant
attack:
  process: weibull
  cv: 2
points:
  - legitimate: 5
    attack: 40
  - legitimate: 5
    attack: 80
`), 0o644))

	// WHEN the plan is built from it, with an explicit horizon flag
	fs, f, scenarios := sweepFlagSet(t, "--horizon=50")
	plan, err := buildSweepPlan(fs, "", "", path, *scenarios, f)
	require.NoError(t, err)

	// THEN the arrival processes and points come from the file
	assert.Equal(t, workload.ProcessConstant, plan.Config.LegitimateArrival.Process)
	assert.Equal(t, workload.ProcessWeibull, plan.Config.AttackArrival.Process)
	require.NotNil(t, plan.Config.AttackArrival.CV)
	assert.Equal(t, 2.0, *plan.Config.AttackArrival.CV)
	assert.Equal(t, []workload.RatePoint{{Legitimate: 5, Attack: 40}, {Legitimate: 5, Attack: 80}}, plan.Points)

	// AND flags still layer on top
	assert.Equal(t, 50.0, plan.Config.Horizon)
	assert.Equal(t, sim.ComparedScenarios(), plan.Scenarios)
}

func TestBuildSweepPlan_WorkloadSpecFile_Rejected(t *testing.T) {
	fs, f, scenarios := sweepFlagSet(t)
	dir := t.TempDir()

	// Unknown keys fail strict parsing.
	typo := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(typo, []byte("atack:\n  process: poisson\n"), 0o644))
	_, err := buildSweepPlan(fs, "", "", typo, *scenarios, f)
	assert.Error(t, err)

	// A zero rate point fails validation.
	zero := filepath.Join(dir, "zero.yaml")
	require.NoError(t, os.WriteFile(zero, []byte("points:\n  - legitimate: 0\n    attack: 10\n"), 0o644))
	_, err = buildSweepPlan(fs, "", "", zero, *scenarios, f)
	assert.Error(t, err)

	_, err = buildSweepPlan(fs, "", "", filepath.Join(dir, "missing.yaml"), *scenarios, f)
	assert.Error(t, err)
}
