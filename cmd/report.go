package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	sim "github.com/inference-sim/ddos-sim/sim"
	"github.com/inference-sim/ddos-sim/sim/trace"
	"github.com/inference-sim/ddos-sim/sim/workload"
)

// barWidth is the length of the bar drawn for the largest value of a table.
const barWidth = 40

// reportMetric is one column of the comparison: a title and how to read it
// from a result.
type reportMetric struct {
	Title string
	Value func(*sim.Result) float64
	Int   bool
}

var reportMetrics = []reportMetric{
	{Title: "Average Response Time", Value: func(r *sim.Result) float64 { return r.AvgResponseTime }},
	{Title: "Processed Requests", Value: func(r *sim.Result) float64 { return float64(r.Processed) }, Int: true},
	{Title: "Dropped Requests", Value: func(r *sim.Result) float64 { return float64(r.Dropped) }, Int: true},
}

// bar returns a run of '#' proportional to value/maxValue.
func bar(value, maxValue float64) string {
	if maxValue <= 0 || value <= 0 {
		return ""
	}
	n := int(value / maxValue * barWidth)
	if n == 0 {
		n = 1
	}
	return strings.Repeat("#", n)
}

// writeSweepReport prints one table per metric. Rows follow the order of
// points, then scenarios, so output is stable across runs.
func writeSweepReport(w io.Writer, results sim.SweepResults, scenarios []string, points []workload.RatePoint) {
	labelWidth := 0
	for _, p := range points {
		labelWidth = max(labelWidth, len(p.Label()))
	}
	scenarioWidth := 0
	for _, s := range scenarios {
		scenarioWidth = max(scenarioWidth, len(s))
	}

	for i, metric := range reportMetrics {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "=== %s ===\n", metric.Title)

		maxValue := 0.0
		for _, s := range scenarios {
			for _, p := range points {
				if r := results[s][p.Label()]; r != nil {
					maxValue = max(maxValue, metric.Value(r))
				}
			}
		}
		for _, p := range points {
			for _, s := range scenarios {
				r := results[s][p.Label()]
				if r == nil {
					continue
				}
				v := metric.Value(r)
				value := fmt.Sprintf("%10.4f", v)
				if metric.Int {
					value = fmt.Sprintf("%10d", int(v))
				}
				fmt.Fprintf(w, "%-*s  %-*s %s %s\n", labelWidth, p.Label(), scenarioWidth, s, value, bar(v, maxValue))
			}
		}
	}
}

// writeResult prints a single run.
func writeResult(w io.Writer, res *sim.Result) {
	s := res.Summary
	fmt.Fprintf(w, "=== %s (User Rate: %g, Attack Rate: %g) ===\n", res.Scenario, res.LegitimateRate, res.AttackRate)
	fmt.Fprintf(w, "Legitimate Arrivals  : %d\n", s.LegitimateArrivals)
	fmt.Fprintf(w, "Processed Legitimate : %d\n", res.Processed)
	fmt.Fprintf(w, "Dropped Legitimate   : %d\n", res.Dropped)
	fmt.Fprintf(w, "Pending Legitimate   : %d\n", s.Pending)
	fmt.Fprintf(w, "Attack Arrivals      : %d (processed %d, dropped %d)\n", s.AttackArrivals, s.AttackProcessed, s.AttackDropped)
	fmt.Fprintf(w, "Average Response Time: %.4f\n", res.AvgResponseTime)
	if s.Samples > 0 {
		fmt.Fprintf(w, "P50 / P90 / P99      : %.4f / %.4f / %.4f\n", s.P50ResponseTime, s.P90ResponseTime, s.P99ResponseTime)
	}
	fmt.Fprintf(w, "Average Wait Time    : %.4f\n", s.AvgWaitTime)
	fmt.Fprintf(w, "Scale-ups            : %d (peak capacity %d)\n", s.ScaleUps, s.PeakCapacity)
	fmt.Fprintf(w, "Peak Queue Length    : %d\n", s.PeakQueueLength)
	if res.Trace != nil {
		fmt.Fprintf(w, "Trace                : %d decisions, %d rejected, %d overlapping scale-ups\n",
			res.Trace.TotalDecisions, res.Trace.RejectedCount, res.Trace.OverlappingScaleUps)
	}
}

// sweepReport is the JSON document written by `sweep --json`.
type sweepReport struct {
	Config  sim.SimConfig `json:"config"`
	Results []*sim.Result `json:"results"`
}

// newSweepReport flattens results in the order of the plan.
func newSweepReport(plan *sweepPlan, results sim.SweepResults) sweepReport {
	report := sweepReport{Config: plan.Config}
	for _, s := range plan.Scenarios {
		for _, p := range plan.Points {
			if r := results[s][p.Label()]; r != nil {
				report.Results = append(report.Results, r)
			}
		}
	}
	return report
}

// writeJSON writes v as indented JSON to path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// exportRunTrace writes the decision trace of res to <prefix>.yaml and
// <prefix>.csv. It returns the two paths.
func exportRunTrace(prefix string, cfg sim.SimConfig, res *sim.Result) (string, string, error) {
	if res.RawTrace == nil {
		return "", "", fmt.Errorf("result carries no decision trace")
	}
	header := &trace.TraceHeader{
		RunID:          uuid.NewString(),
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		TimeUnit:       "simulated",
		Scenario:       res.Scenario,
		Seed:           cfg.Seed,
		Horizon:        cfg.Horizon,
		LegitimateRate: res.LegitimateRate,
		AttackRate:     res.AttackRate,
	}
	headerPath, dataPath := prefix+".yaml", prefix+".csv"
	if err := trace.ExportTrace(header, res.RawTrace, headerPath, dataPath); err != nil {
		return "", "", err
	}
	return headerPath, dataPath, nil
}
