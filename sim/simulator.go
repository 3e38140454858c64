// sim/simulator.go
package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/ddos-sim/sim/trace"
	"github.com/inference-sim/ddos-sim/sim/workload"
)

// Simulator is the core object that holds simulation time, server state, and the event loop.
type Simulator struct {
	Clock   float64
	Horizon float64
	// EventQueue has all pending events: arrivals, service completions, scale-downs
	EventQueue *EventHeap
	Pool       *ResourcePool
	Admission  AdmissionPolicy
	Scaling    ScalingPolicy // nil when the scenario does not scale
	Metrics    *Metrics
	Trace      *trace.SimulationTrace // nil when tracing is off

	// Samplers draw inter-arrival gaps per class and service times. They are
	// built from the config and may be replaced before Run for deterministic tests.
	LegitimateGaps workload.Sampler
	AttackGaps     workload.Sampler
	ServiceTimes   workload.Sampler

	config     SimConfig
	rng        *PartitionedRNG
	arrivalSeq map[RequestClass]int
	EventCount int
	started    bool
}

// NewSimulator validates cfg and builds a simulator ready to Run.
func NewSimulator(cfg SimConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	serviceTimes, err := workload.NewServiceSampler(cfg.ServiceDist, cfg.ServiceRate)
	if err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	s := &Simulator{
		Clock:          0,
		Horizon:        cfg.Horizon,
		EventQueue:     NewEventHeap(),
		Admission:      NewAdmissionPolicy(cfg),
		Scaling:        NewScalingPolicy(cfg),
		Metrics:        NewMetrics(),
		LegitimateGaps: workload.NewArrivalSampler(cfg.LegitimateArrival, cfg.LegitimateRate),
		AttackGaps:     workload.NewArrivalSampler(cfg.AttackArrival, cfg.AttackRate),
		ServiceTimes:   serviceTimes,
		config:         cfg,
		rng:            NewPartitionedRNG(cfg.Seed),
		arrivalSeq:     make(map[RequestClass]int),
	}
	s.Pool = NewResourcePool(cfg.InitialCapacity, s.startService)
	s.Metrics.PeakCapacity = cfg.InitialCapacity
	if trace.TraceLevel(cfg.TraceLevel).Enabled() {
		s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(cfg.TraceLevel)})
	}
	return s, nil
}

// Schedule pushes an event into the simulator's EventQueue.
// Panics if the event lies in the simulated past.
func (sim *Simulator) Schedule(ev Event) {
	if ev.Timestamp() < sim.Clock {
		panic(fmt.Sprintf("Schedule: %T at %.6f is before the clock (%.6f)", ev, ev.Timestamp(), sim.Clock))
	}
	sim.EventQueue.Schedule(ev)
}

// RunUntil executes events in time order until the queue is empty or the next
// event is at or beyond horizon. Events at exactly horizon are not executed.
// Processes with pending events (e.g. the arrival loops) are simply never resumed.
func (sim *Simulator) RunUntil(horizon float64) {
	for sim.EventQueue.Len() > 0 {
		if sim.EventQueue.Peek().Timestamp() >= horizon {
			sim.Clock = max(sim.Clock, horizon)
			break
		}
		// get the next event to be simulated
		ev := sim.EventQueue.PopNext()
		// advance the clock
		sim.Clock = ev.Timestamp()
		sim.EventCount++
		logrus.Debugf("[t=%.4f] Executing %T", sim.Clock, ev)
		// process the event
		ev.Execute(sim)
	}
}

// Run starts both arrival loops and runs to the configured horizon.
// A Simulator can only be run once.
func (sim *Simulator) Run() {
	if sim.started {
		panic("Simulator.Run: already run")
	}
	sim.started = true

	sim.scheduleArrival(ClassLegitimate)
	sim.scheduleArrival(ClassAttack)

	sim.RunUntil(sim.Horizon)
	sim.Metrics.SimEndedTime = min(sim.Clock, sim.Horizon)
	logrus.Infof("[t=%.4f] Simulation ended after %d events", sim.Clock, sim.EventCount)
}

// state snapshots what admission policies may look at.
func (sim *Simulator) state() ServerState {
	return ServerState{
		Clock:       sim.Clock,
		InService:   sim.Pool.Count(),
		Capacity:    sim.Pool.Capacity(),
		QueueLength: sim.Pool.QueueLength(),
	}
}

func (sim *Simulator) gapSampler(class RequestClass) (workload.Sampler, *rand.Rand) {
	rng := sim.rng.For(ArrivalStream(class))
	if class == ClassLegitimate {
		return sim.LegitimateGaps, rng
	}
	return sim.AttackGaps, rng
}

// scheduleArrival draws the next gap for class and schedules its arrival.
func (sim *Simulator) scheduleArrival(class RequestClass) {
	sampler, rng := sim.gapSampler(class)
	gap := sampler.Sample(rng)
	sim.Schedule(&ArrivalEvent{time: sim.Clock + gap, Class: class})
}

func (sim *Simulator) closedLoop() bool {
	return sim.config.ArrivalMode == ArrivalModeClosed
}

// handleArrival runs the admission pipeline for a new request of class:
// admit or drop, then acquire a slot or queue. With ScaleCheckArrival the
// scaler is consulted here as well.
func (sim *Simulator) handleArrival(class RequestClass) {
	sim.arrivalSeq[class]++
	req := NewRequest(class, sim.arrivalSeq[class], sim.Clock)
	if req.IsLegitimate() {
		sim.Metrics.LegitimateArrivals++
	} else {
		sim.Metrics.AttackArrivals++
	}

	if !sim.closedLoop() {
		sim.scheduleArrival(class)
	}

	state := sim.state()
	admitted, reason := sim.Admission.Admit(req, state)
	sim.recordAdmission(req, state, admitted, reason)
	if !admitted {
		logrus.Debugf("[t=%.4f] %s dropped: %s", sim.Clock, req.ID, reason)
		if req.IsLegitimate() {
			sim.Metrics.Dropped++
		} else {
			sim.Metrics.AttackDropped++
		}
		if sim.closedLoop() {
			sim.scheduleArrival(class)
		}
		return
	}

	if req.IsLegitimate() {
		sim.Metrics.LegitimateInSystem++
	}
	if sim.Pool.TryAcquire(req) {
		sim.startService(req)
	} else {
		logrus.Debugf("[t=%.4f] %s queued (position %d)", sim.Clock, req.ID, sim.Pool.QueueLength())
	}
	sim.Metrics.PeakQueueLength = max(sim.Metrics.PeakQueueLength, sim.Pool.QueueLength())

	if sim.config.ScaleCheck == ScaleCheckArrival {
		sim.scaleCheck()
	}
}

// startService is called once a request holds a slot, either straight from
// TryAcquire or as the pool's grant callback for a queued request.
func (sim *Simulator) startService(req *Request) {
	req.AdmitTime = sim.Clock
	sim.Metrics.PeakInService = max(sim.Metrics.PeakInService, sim.Pool.Count())
	serviceTime := sim.ServiceTimes.Sample(sim.rng.For(StreamService))
	sim.Schedule(&ServiceCompleteEvent{time: sim.Clock + serviceTime, Request: req})
}

// completeService records the response time and frees the request's slot.
// This is the only place response-time samples are produced.
func (sim *Simulator) completeService(req *Request) {
	responseTime := sim.Clock - req.ArrivalTime
	sim.Metrics.ResponseTimes = append(sim.Metrics.ResponseTimes, responseTime)
	sim.Metrics.WaitTimes = append(sim.Metrics.WaitTimes, req.AdmitTime-req.ArrivalTime)
	if req.IsLegitimate() {
		sim.Metrics.Processed++
		sim.Metrics.LegitimateInSystem--
	} else {
		sim.Metrics.AttackProcessed++
	}
	logrus.Debugf("[t=%.4f] %s processed (response time %.4f)", sim.Clock, req.ID, responseTime)

	sim.Pool.Release()
	if sim.config.ScaleCheck != ScaleCheckArrival {
		sim.scaleCheck()
	}

	if sim.closedLoop() {
		sim.scheduleArrival(req.Class)
	}
}

// scaleCheck lets the scaling policy look at the queue, if the scenario scales.
func (sim *Simulator) scaleCheck() {
	if sim.Scaling != nil {
		sim.openScaleWindow()
	}
}

func (sim *Simulator) openScaleWindow() {
	from := sim.Pool.Capacity()
	if !sim.Scaling.ScaleUp(sim.Pool) {
		return
	}
	sim.Metrics.ScaleUps++
	sim.Metrics.PeakCapacity = max(sim.Metrics.PeakCapacity, sim.Pool.Capacity())
	logrus.Debugf("[t=%.4f] Scaling up resources: capacity %d -> %d", sim.Clock, from, sim.Pool.Capacity())
	sim.recordScaling(trace.ScaleUp, from)
	sim.Schedule(&ScaleDownEvent{time: sim.Clock + sim.Scaling.WindowDuration()})
}

func (sim *Simulator) closeScaleWindow() {
	from := sim.Pool.Capacity()
	sim.Scaling.ScaleDown(sim.Pool)
	logrus.Debugf("[t=%.4f] Scaling down resources: capacity %d -> %d", sim.Clock, from, sim.Pool.Capacity())
	sim.recordScaling(trace.ScaleDown, from)
}

func (sim *Simulator) recordAdmission(req *Request, state ServerState, admitted bool, reason string) {
	if sim.Trace == nil {
		return
	}
	sim.Trace.RecordAdmission(trace.AdmissionRecord{
		RequestID: req.ID,
		Class:     string(req.Class),
		Clock:     sim.Clock,
		Admitted:  admitted,
		Reason:    reason,
		InService: state.InService,
		Queued:    state.QueueLength,
	})
}

func (sim *Simulator) recordScaling(dir trace.ScalingDirection, from int) {
	if sim.Trace == nil {
		return
	}
	sim.Trace.RecordScaling(trace.ScalingRecord{
		Clock:         sim.Clock,
		Direction:     dir,
		FromCapacity:  from,
		ToCapacity:    sim.Pool.Capacity(),
		QueueLength:   sim.Pool.QueueLength(),
		ActiveWindows: sim.Scaling.ActiveWindows(),
	})
}
