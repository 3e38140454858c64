package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	sim "github.com/inference-sim/ddos-sim/sim"
	"github.com/inference-sim/ddos-sim/sim/workload"
)

var (
	sweepConfigPath string   // YAML ScenarioBundle
	sweepPreset     string   // Built-in workload preset
	sweepSpecPath   string   // YAML WorkloadSpec
	sweepScenarios  []string // Scenarios to compare
	sweepJSONPath   string   // Optional JSON output path
	sweepPromPath   string   // Optional Prometheus textfile output path
	sweepFlags      simFlags // SimConfig flags of the sweep command
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare scenarios over a list of arrival-rate pairs",
	Long: "Run every scenario at every (legitimate, attack) rate pair and print one table per metric. " +
		"Without --config, --workload or --workload-spec the rate-limiting and adaptive-scaling scenarios are compared over the default four rate pairs.",
	Run: func(cmd *cobra.Command, args []string) {
		plan, err := buildSweepPlan(cmd.Flags(), sweepConfigPath, sweepPreset, sweepSpecPath, sweepScenarios, &sweepFlags)
		if err != nil {
			logrus.Fatalf("Invalid sweep configuration: %v", err)
		}
		logrus.Infof("Sweeping %d scenarios over %d rate points", len(plan.Scenarios), len(plan.Points))

		results, err := sim.RunSweep(plan.Scenarios, plan.Points, plan.Config)
		if err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		writeSweepReport(os.Stdout, results, plan.Scenarios, plan.Points)
		if sweepJSONPath != "" {
			if err := writeJSON(sweepJSONPath, newSweepReport(plan, results)); err != nil {
				logrus.Fatalf("Failed to write results: %v", err)
			}
			logrus.Infof("Results written to %s", sweepJSONPath)
		}
		if sweepPromPath != "" {
			report := newSweepReport(plan, results)
			if err := writePromTextfile(sweepPromPath, report.Results); err != nil {
				logrus.Fatalf("Failed to write metrics: %v", err)
			}
			logrus.Infof("Metrics written to %s", sweepPromPath)
		}
	},
}

// sweepPlan is the fully resolved input of a sweep.
type sweepPlan struct {
	Scenarios []string
	Points    []workload.RatePoint
	Config    sim.SimConfig
}

// buildSweepPlan layers the configuration: defaults, then the YAML bundle or
// workload preset or workload spec file, then flags the user set explicitly.
func buildSweepPlan(fs *pflag.FlagSet, configPath, preset, specPath string, scenarios []string, f *simFlags) (*sweepPlan, error) {
	plan := &sweepPlan{
		Scenarios: sim.ComparedScenarios(),
		Points:    workload.DefaultSweep(),
		Config:    sim.DefaultSimConfig(),
	}

	if configPath != "" {
		bundle, err := sim.LoadScenarioBundle(configPath)
		if err != nil {
			return nil, err
		}
		if err := bundle.Validate(); err != nil {
			return nil, err
		}
		bundle.ApplyTo(&plan.Config)
		plan.Scenarios = bundle.ScenarioList()
		plan.Points = bundle.SweepPoints()
	}
	if preset != "" {
		spec, err := workload.Preset(preset)
		if err != nil {
			return nil, err
		}
		plan.Config.LegitimateArrival = spec.Legitimate
		plan.Config.AttackArrival = spec.Attack
		plan.Points = spec.SweepPoints()
	}
	if specPath != "" {
		spec, err := workload.LoadWorkloadSpec(specPath)
		if err != nil {
			return nil, err
		}
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("workload spec %s: %w", specPath, err)
		}
		plan.Config.LegitimateArrival = spec.Legitimate
		plan.Config.AttackArrival = spec.Attack
		plan.Points = spec.SweepPoints()
	}
	if fs.Changed("scenarios") {
		plan.Scenarios = scenarios
	}
	applySimFlags(fs, f, &plan.Config)
	return plan, nil
}

func init() {
	sweepCmd.Flags().StringVar(&sweepConfigPath, "config", "", "Path to a YAML scenario bundle")
	sweepCmd.Flags().StringVar(&sweepPreset, "workload", "", "Built-in workload preset (attack-dominant, bursty-attack, steady-flood)")
	sweepCmd.Flags().StringVar(&sweepSpecPath, "workload-spec", "", "Path to a YAML workload spec (arrival processes and rate points)")
	sweepCmd.Flags().StringSliceVar(&sweepScenarios, "scenarios", sim.ComparedScenarios(), "Comma-separated scenarios to compare")
	sweepCmd.Flags().StringVar(&sweepJSONPath, "json", "", "Write all results as JSON to this path")
	sweepCmd.Flags().StringVar(&sweepPromPath, "prom-out", "", "Write all results as a Prometheus textfile to this path")
	addSimFlags(sweepCmd.Flags(), &sweepFlags)
	sweepCmd.MarkFlagsMutuallyExclusive("config", "workload", "workload-spec")

	rootCmd.AddCommand(sweepCmd)
}
