package cmd

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	sim "github.com/inference-sim/ddos-sim/sim"
)

// promNamespace prefixes every exported metric name.
const promNamespace = "ddos_sim"

// resultLabels identify one run within a sweep.
var resultLabels = []string{"scenario", "legitimate_rate", "attack_rate"}

// promGauge maps one MetricsSummary field onto a gauge.
type promGauge struct {
	name  string
	help  string
	value func(sim.MetricsSummary) float64
}

var promGauges = []promGauge{
	{"avg_response_time", "Mean response time of completed requests.", func(s sim.MetricsSummary) float64 { return s.AvgResponseTime }},
	{"p99_response_time", "99th percentile response time of completed requests.", func(s sim.MetricsSummary) float64 { return s.P99ResponseTime }},
	{"avg_wait_time", "Mean time completed requests spent waiting for a slot.", func(s sim.MetricsSummary) float64 { return s.AvgWaitTime }},
	{"legitimate_processed", "Legitimate requests that finished service.", func(s sim.MetricsSummary) float64 { return float64(s.Processed) }},
	{"legitimate_dropped", "Legitimate requests dropped by admission control.", func(s sim.MetricsSummary) float64 { return float64(s.Dropped) }},
	{"legitimate_pending", "Legitimate requests still queued or in service at the horizon.", func(s sim.MetricsSummary) float64 { return float64(s.Pending) }},
	{"attack_processed", "Attack requests that finished service.", func(s sim.MetricsSummary) float64 { return float64(s.AttackProcessed) }},
	{"scale_ups", "Scale windows opened.", func(s sim.MetricsSummary) float64 { return float64(s.ScaleUps) }},
	{"peak_capacity", "Highest server capacity reached.", func(s sim.MetricsSummary) float64 { return float64(s.PeakCapacity) }},
}

// newResultsRegistry returns a registry holding one gauge series per result
// and metric.
func newResultsRegistry(results []*sim.Result) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	for _, g := range promGauges {
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: promNamespace,
			Name:      g.name,
			Help:      g.help,
		}, resultLabels)
		if err := reg.Register(vec); err != nil {
			return nil, fmt.Errorf("registering %s: %w", g.name, err)
		}
		for _, r := range results {
			vec.WithLabelValues(
				r.Scenario,
				strconv.FormatFloat(r.LegitimateRate, 'g', -1, 64),
				strconv.FormatFloat(r.AttackRate, 'g', -1, 64),
			).Set(g.value(r.Summary))
		}
	}
	return reg, nil
}

// writePromTextfile writes results in the Prometheus text exposition format,
// suitable for the node_exporter textfile collector.
func writePromTextfile(path string, results []*sim.Result) error {
	reg, err := newResultsRegistry(results)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
