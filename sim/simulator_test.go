package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/ddos-sim/sim/trace"
)

// noAttack is a gap list that keeps attack traffic beyond every test horizon.
var noAttack = []float64{1000}

func TestSimulator_RateLimiting_AlternatesAdmitAndDrop(t *testing.T) {
	// GIVEN one slot, limit 1, legitimate arrivals every time unit and
	// service taking 1.5 units
	cfg := testConfig(ScenarioRateLimiting)
	cfg.Horizon = 10
	s := newScriptedSimulator(t, cfg, []float64{1}, noAttack, []float64{1.5})

	// WHEN the simulation runs
	s.Run()

	// THEN odd arrivals are served, even arrivals find the slot busy and are
	// dropped, and the arrival at t=9 is still in service at the horizon
	m := s.Metrics
	assert.Equal(t, 9, m.LegitimateArrivals)
	assert.Equal(t, 4, m.Processed)
	assert.Equal(t, 4, m.Dropped)
	assert.Equal(t, 1, m.LegitimateInSystem)
	assert.Equal(t, []float64{1.5, 1.5, 1.5, 1.5}, m.ResponseTimes)
	assert.Equal(t, 1.5, m.AvgResponseTime())
	assert.Equal(t, 0, m.PeakQueueLength, "the limiter never lets a legitimate request wait")
	assertConservation(t, m)
}

func TestSimulator_Baseline_ResponseTimeIncludesQueueing(t *testing.T) {
	// GIVEN no mitigation and a second request arriving while the first is served
	cfg := testConfig(ScenarioNone)
	cfg.Horizon = 10
	s := newScriptedSimulator(t, cfg, []float64{1, 0.5, 1000}, noAttack, []float64{2})

	// WHEN the simulation runs
	s.Run()

	// THEN the second request waited 1.5 units before its 2-unit service
	assert.Equal(t, []float64{2, 3.5}, s.Metrics.ResponseTimes)
	assert.Equal(t, []float64{0, 1.5}, s.Metrics.WaitTimes)
	assert.Equal(t, 1, s.Metrics.PeakQueueLength)
	assert.Equal(t, 2, s.Metrics.Processed)
	assertConservation(t, s.Metrics)
}

func TestSimulator_AttackIsServedButNotCountedAsProcessed(t *testing.T) {
	cfg := testConfig(ScenarioNone)
	cfg.Horizon = 10
	s := newScriptedSimulator(t, cfg, []float64{1000}, []float64{1, 1000}, []float64{2})

	s.Run()

	assert.Equal(t, 0, s.Metrics.Processed)
	assert.Equal(t, 1, s.Metrics.AttackProcessed)
	assert.Equal(t, []float64{2}, s.Metrics.ResponseTimes, "attack completions still produce samples")
}

// scalingRaceSimulator queues attack requests so that two scale windows
// overlap: with arrival-time checks, windows open at t=1 and t=2, each
// lasting 5 units.
func scalingRaceSimulator(t *testing.T, mode string) *Simulator {
	t.Helper()
	cfg := testConfig(ScenarioAdaptiveScaling)
	cfg.QueueThreshold = 2
	cfg.ScalingDuration = 5
	cfg.ScalingMode = mode
	cfg.ScaleCheck = ScaleCheckArrival
	cfg.TraceLevel = string(trace.TraceLevelDecisions)
	cfg.Horizon = 6.5
	// attack arrivals at t=1, 1, 1, 2; all service takes 10 units
	return newScriptedSimulator(t, cfg, noAttack, []float64{1, 0, 0, 1, 1000}, []float64{10})
}

func TestSimulator_AdaptiveScaling_IndependentWindowsResetToBase(t *testing.T) {
	// GIVEN overlapping windows in independent mode
	s := scalingRaceSimulator(t, ScalingModeIndependent)

	// WHEN the first window has ended but the second is still open
	s.Run()

	// THEN capacity is already back to base
	assert.Equal(t, 2, s.Metrics.ScaleUps)
	assert.Equal(t, 3, s.Metrics.PeakCapacity)
	assert.Equal(t, 1, s.Pool.Capacity())
	assert.Equal(t, 1, s.Scaling.ActiveWindows())
	// requests already in service are not evicted
	assert.Equal(t, 3, s.Pool.Count())
	assert.Equal(t, 1, s.Pool.QueueLength())

	summary := trace.Summarize(s.Trace)
	assert.Equal(t, 2, summary.ScaleUps)
	assert.Equal(t, 1, summary.ScaleDowns)
	assert.Equal(t, 1, summary.OverlappingScaleUps)
}

func TestSimulator_AdaptiveScaling_CountedWindowsKeepCapacity(t *testing.T) {
	// GIVEN the same arrivals in counted mode
	s := scalingRaceSimulator(t, ScalingModeCounted)

	s.Run()

	// THEN the still-open window keeps its slot
	assert.Equal(t, 2, s.Pool.Capacity())
	assert.Equal(t, 1, s.Scaling.ActiveWindows())
}

// queuedBehindLegitimate scripts a closed-loop run where an attack request
// waits behind a long legitimate one: legitimate arrives at t=1, attack at
// t=2, both need 10 units of service, and one queued request reaches the
// scale threshold.
func queuedBehindLegitimate(t *testing.T, check string) *Simulator {
	t.Helper()
	cfg := testConfig(ScenarioAdaptiveScaling)
	cfg.ArrivalMode = ArrivalModeClosed
	cfg.QueueThreshold = 1
	cfg.ScaleCheck = check
	cfg.Horizon = 30
	return newScriptedSimulator(t, cfg, []float64{1, 1000}, []float64{2, 1000}, []float64{10})
}

func TestSimulator_AdaptiveScaling_ChecksQueueAfterCompletion(t *testing.T) {
	// GIVEN an attack request queued behind a legitimate one
	s := queuedBehindLegitimate(t, ScaleCheckCompletion)

	// WHEN the run completes
	s.Run()

	// THEN the check at t=11 sees the waiter already handed the freed slot:
	// no window opens and the attack request waits out the full service
	assert.Equal(t, 0, s.Metrics.ScaleUps)
	assert.Equal(t, []float64{10, 19}, s.Metrics.ResponseTimes)
	assert.Equal(t, 1, s.Metrics.PeakCapacity)
}

func TestSimulator_AdaptiveScaling_DefaultChecksAfterCompletion(t *testing.T) {
	s := queuedBehindLegitimate(t, "")
	s.Run()
	assert.Equal(t, 0, s.Metrics.ScaleUps)
	assert.Equal(t, ScaleCheckCompletion, DefaultSimConfig().ScaleCheck)
}

func TestSimulator_AdaptiveScaling_ArrivalCheckScalesOnEnqueue(t *testing.T) {
	// GIVEN the same script with the check at arrival
	s := queuedBehindLegitimate(t, ScaleCheckArrival)

	s.Run()

	// THEN the queued attack request opens a window at t=2 and starts at once
	assert.Equal(t, 1, s.Metrics.ScaleUps)
	assert.Equal(t, []float64{10, 10}, s.Metrics.ResponseTimes)
	assert.Equal(t, 2, s.Metrics.PeakCapacity)
}

func TestSimulator_AdaptiveScaling_CompletionCheckSeesRemainingQueue(t *testing.T) {
	// GIVEN three attack requests at t=1 with threshold 1: one served, two queued
	cfg := testConfig(ScenarioAdaptiveScaling)
	cfg.QueueThreshold = 1
	cfg.Horizon = 12
	s := newScriptedSimulator(t, cfg, noAttack, []float64{1, 0, 0, 1000}, []float64{10})

	// WHEN the first completes at t=11
	s.Run()

	// THEN the freed slot goes to the next waiter, the one still queued opens
	// a window and is granted the new slot
	assert.Equal(t, 1, s.Metrics.ScaleUps)
	assert.Equal(t, 2, s.Pool.Capacity())
	assert.Equal(t, 2, s.Pool.Count())
	assert.Equal(t, 0, s.Pool.QueueLength())
}

func TestSimulator_AdaptiveScalingCounted_InServiceNeverOutgrowsCapacity(t *testing.T) {
	// GIVEN a stochastic counted-mode run under heavy attack load
	cfg := testConfig(ScenarioAdaptiveScaling)
	cfg.LegitimateRate = 5
	cfg.AttackRate = 50
	cfg.ScalingMode = ScalingModeCounted
	cfg.MaxCapacity = 6
	cfg.Horizon = 100
	s, err := NewSimulator(cfg)
	require.NoError(t, err)
	s.scheduleArrival(ClassLegitimate)
	s.scheduleArrival(ClassAttack)

	// WHEN it is stepped one timestamp at a time
	prevCount := s.Pool.Count()
	for s.EventQueue.Len() > 0 && s.EventQueue.Peek().Timestamp() < cfg.Horizon {
		s.RunUntil(math.Nextafter(s.EventQueue.Peek().Timestamp(), math.Inf(1)))

		// THEN slots in use stay within capacity, except after a window closed
		// on busy slots; that excess only drains and is never refilled
		count, capacity := s.Pool.Count(), s.Pool.Capacity()
		if count > capacity {
			require.LessOrEqual(t, count, prevCount, "t=%.4f: granted a slot while over capacity", s.Clock)
		}
		require.LessOrEqual(t, capacity, cfg.MaxCapacity, "t=%.4f", s.Clock)
		require.Equal(t, cfg.InitialCapacity+s.Scaling.ActiveWindows(), capacity, "t=%.4f", s.Clock)
		prevCount = count
	}
	assert.Greater(t, s.Metrics.ScaleUps, 0)
	assertConservation(t, s.Metrics)
}

func TestSimulator_TokenBucket_ThrottlesLegitimateArrivals(t *testing.T) {
	// GIVEN a one-token bucket refilling one token per unit and arrivals every half unit
	cfg := testConfig(ScenarioTokenBucket)
	cfg.BucketSize = 1
	cfg.RefillRate = 1
	cfg.Horizon = 3.9
	s := newScriptedSimulator(t, cfg, []float64{0.5}, noAttack, []float64{0.1})

	s.Run()

	// THEN every other arrival finds the bucket empty
	assert.Equal(t, 7, s.Metrics.LegitimateArrivals)
	assert.Equal(t, 4, s.Metrics.Processed)
	assert.Equal(t, 3, s.Metrics.Dropped)
	assertConservation(t, s.Metrics)
}

func TestSimulator_ClosedArrivals_NeverQueueMoreThanOnePerClass(t *testing.T) {
	// GIVEN closed arrival loops under heavy load
	cfg := testConfig(ScenarioAdaptiveScaling)
	cfg.ArrivalMode = ArrivalModeClosed
	cfg.LegitimateRate = 100
	cfg.AttackRate = 50
	cfg.Horizon = 50
	s, err := NewSimulator(cfg)
	require.NoError(t, err)

	s.Run()

	// THEN each class has at most one request in the system, so the queue
	// never reaches the scale threshold
	assert.LessOrEqual(t, s.Metrics.PeakQueueLength, 1)
	assert.Equal(t, 0, s.Metrics.ScaleUps)
	assert.LessOrEqual(t, s.Metrics.LegitimateInSystem, 1)
	assertConservation(t, s.Metrics)
}

func TestSimulator_Trace_RecordsEveryAdmissionDecision(t *testing.T) {
	cfg := testConfig(ScenarioRateLimiting)
	cfg.Horizon = 10
	cfg.TraceLevel = string(trace.TraceLevelDecisions)
	s := newScriptedSimulator(t, cfg, []float64{1}, noAttack, []float64{1.5})

	s.Run()

	require.NotNil(t, s.Trace)
	assert.Len(t, s.Trace.Admissions, s.Metrics.LegitimateArrivals+s.Metrics.AttackArrivals)
	summary := trace.Summarize(s.Trace)
	assert.Equal(t, 4, summary.RejectedByClass[string(ClassLegitimate)])
	assert.Equal(t, 4, summary.RejectReasons["rate limit"])
}

func TestSimulator_TraceOff_HasNoTrace(t *testing.T) {
	s, err := NewSimulator(testConfig(ScenarioNone))
	require.NoError(t, err)
	assert.Nil(t, s.Trace)
}

func TestSimulator_HorizonZero_ExecutesNothing(t *testing.T) {
	cfg := testConfig(ScenarioRateLimiting)
	cfg.Horizon = 0
	s, err := NewSimulator(cfg)
	require.NoError(t, err)

	s.Run()

	assert.Equal(t, 0, s.EventCount)
	assert.Equal(t, 0.0, s.Metrics.AvgResponseTime())
	assert.Equal(t, 0.0, s.Clock)
}

func TestSimulator_RunUntil_StopsBeforeEventAtHorizon(t *testing.T) {
	// GIVEN events at t=1 and exactly at the horizon t=2
	var log []string
	s, err := NewSimulator(testConfig(ScenarioNone))
	require.NoError(t, err)
	s.Schedule(&recordingEvent{at: 1, name: "before", log: &log})
	s.Schedule(&recordingEvent{at: 2, name: "at-horizon", log: &log})

	// WHEN run until t=2
	s.RunUntil(2)

	// THEN only the earlier event ran and the clock stands at the horizon
	assert.Equal(t, []string{"before"}, log)
	assert.Equal(t, 2.0, s.Clock)
	assert.Equal(t, 1, s.EventQueue.Len())
}

func TestSimulator_Schedule_InThePast_Panics(t *testing.T) {
	var log []string
	s, err := NewSimulator(testConfig(ScenarioNone))
	require.NoError(t, err)
	s.Schedule(&recordingEvent{at: 5, name: "a", log: &log})
	s.RunUntil(10)
	assert.Panics(t, func() { s.Schedule(&recordingEvent{at: 1, name: "late", log: &log}) })
}

func TestSimulator_Run_Twice_Panics(t *testing.T) {
	cfg := testConfig(ScenarioNone)
	cfg.Horizon = 1
	s, err := NewSimulator(cfg)
	require.NoError(t, err)
	s.Run()
	assert.Panics(t, func() { s.Run() })
}

func TestNewSimulator_InvalidConfig_ReturnsError(t *testing.T) {
	cfg := testConfig(ScenarioNone)
	cfg.LegitimateRate = 0
	_, err := NewSimulator(cfg)
	assert.Error(t, err)
}
