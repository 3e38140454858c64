// Tracks per-run counters and response-time samples.

package sim

// Metrics aggregates statistics about one simulation run for final reporting.
// Processed and Dropped count legitimate requests only; ResponseTimes holds
// one sample for every request (either class) that finished service.
type Metrics struct {
	Processed     int       // legitimate requests that finished service
	Dropped       int       // legitimate requests rejected by admission
	ResponseTimes []float64 // completion - arrival, in completion order
	WaitTimes     []float64 // service start - arrival, same order as ResponseTimes

	LegitimateArrivals int // legitimate requests generated before the horizon
	AttackArrivals     int // attack requests generated before the horizon
	AttackProcessed    int // attack requests that finished service
	AttackDropped      int // attack requests rejected by admission
	LegitimateInSystem int // legitimate requests admitted but not finished (waiting or in service)

	ScaleUps        int // scale windows opened
	PeakQueueLength int // longest wait queue observed
	PeakInService   int // most slots in use at once
	PeakCapacity    int // largest capacity reached

	SimEndedTime float64 // clock value when the run stopped
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ResponseTimes: make([]float64, 0),
		WaitTimes:     make([]float64, 0),
	}
}

// AvgResponseTime returns the mean response time, or 0 when no request finished.
func (m *Metrics) AvgResponseTime() float64 {
	return CalculateMean(m.ResponseTimes)
}

// MetricsSummary is the serializable digest of a run.
type MetricsSummary struct {
	AvgResponseTime float64 `json:"avg_response_time"`
	P50ResponseTime float64 `json:"p50_response_time"`
	P90ResponseTime float64 `json:"p90_response_time"`
	P99ResponseTime float64 `json:"p99_response_time"`
	MaxResponseTime float64 `json:"max_response_time"`
	Samples         int     `json:"response_time_samples"`
	AvgWaitTime     float64 `json:"avg_wait_time"`

	Processed          int `json:"processed"`
	Dropped            int `json:"dropped"`
	Pending            int `json:"pending"`
	LegitimateArrivals int `json:"legitimate_arrivals"`
	AttackArrivals     int `json:"attack_arrivals"`
	AttackProcessed    int `json:"attack_processed"`
	AttackDropped      int `json:"attack_dropped"`

	ScaleUps        int `json:"scale_ups"`
	PeakQueueLength int `json:"peak_queue_length"`
	PeakInService   int `json:"peak_in_service"`
	PeakCapacity    int `json:"peak_capacity"`

	SimEndedTime float64 `json:"sim_ended_time"`
}

// Summarize computes the digest. Percentiles are 0 when there are no samples.
func (m *Metrics) Summarize() MetricsSummary {
	s := MetricsSummary{
		AvgResponseTime:    m.AvgResponseTime(),
		AvgWaitTime:        CalculateMean(m.WaitTimes),
		Samples:            len(m.ResponseTimes),
		Processed:          m.Processed,
		Dropped:            m.Dropped,
		Pending:            m.LegitimateInSystem,
		LegitimateArrivals: m.LegitimateArrivals,
		AttackArrivals:     m.AttackArrivals,
		AttackProcessed:    m.AttackProcessed,
		AttackDropped:      m.AttackDropped,
		ScaleUps:           m.ScaleUps,
		PeakQueueLength:    m.PeakQueueLength,
		PeakInService:      m.PeakInService,
		PeakCapacity:       m.PeakCapacity,
		SimEndedTime:       m.SimEndedTime,
	}
	if len(m.ResponseTimes) > 0 {
		sorted := sortedCopy(m.ResponseTimes)
		s.P50ResponseTime = CalculatePercentile(sorted, 50)
		s.P90ResponseTime = CalculatePercentile(sorted, 90)
		s.P99ResponseTime = CalculatePercentile(sorted, 99)
		s.MaxResponseTime = sorted[len(sorted)-1]
	}
	return s
}
