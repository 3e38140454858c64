package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_AvgResponseTime_EmptyIsZero(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, 0.0, m.AvgResponseTime())
	s := m.Summarize()
	assert.Equal(t, 0, s.Samples)
	assert.Equal(t, 0.0, s.P99ResponseTime)
	assert.Equal(t, 0.0, s.MaxResponseTime)
}

func TestMetrics_Summarize_CopiesCountersAndComputesPercentiles(t *testing.T) {
	// GIVEN ten response-time samples 1..10 recorded out of order
	m := NewMetrics()
	m.ResponseTimes = []float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5}
	m.Processed = 6
	m.Dropped = 3
	m.LegitimateInSystem = 1
	m.LegitimateArrivals = 10
	m.ScaleUps = 2

	// WHEN summarized
	s := m.Summarize()

	// THEN averages and quantiles are taken over the sorted samples
	assert.Equal(t, 5.5, s.AvgResponseTime)
	assert.Equal(t, 5.0, s.P50ResponseTime)
	assert.Equal(t, 10.0, s.MaxResponseTime)
	assert.Equal(t, 10, s.Samples)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 2, s.ScaleUps)
	// the recorded order is untouched
	assert.Equal(t, 10.0, m.ResponseTimes[0])
}
