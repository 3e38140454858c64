// sim/metrics_utils.go
package sim

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CalculatePercentile returns the p-th percentile (0-100) of data, which must
// be sorted ascending. Returns 0 for empty data.
func CalculatePercentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(p/100.0, stat.Empirical, sorted, nil)
}

// CalculateMean returns the arithmetic mean of data, or 0 for empty data.
func CalculateMean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

func sortedCopy(data []float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	sort.Float64s(out)
	return out
}
