package sim

import "github.com/sirupsen/logrus"

// Event defines the interface for all simulation events.
// Each event must have a Timestamp (in simulation time units) and an Execute
// method that advances simulation state when invoked. An event is the resume
// point of a suspended process; executing it may schedule the next one.
type Event interface {
	Timestamp() float64
	Execute(*Simulator)
}

// ArrivalEvent represents the arrival of a new request of one traffic class.
// Each class has exactly one pending ArrivalEvent while its arrival loop is live.
type ArrivalEvent struct {
	time  float64      // Simulation time of arrival
	Class RequestClass // Traffic class of the arriving request
}

// Timestamp returns the scheduled time of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() float64 {
	return e.time
}

// Execute creates the request and hands it to the admission pipeline.
func (e *ArrivalEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< Arrival: %s at %.4f", e.Class, e.time)
	sim.handleArrival(e.Class)
}

// ServiceCompleteEvent represents the end of service for an admitted request.
type ServiceCompleteEvent struct {
	time    float64  // Scheduled completion time
	Request *Request // The request leaving the server
}

// Timestamp returns the scheduled time of the ServiceCompleteEvent.
func (e *ServiceCompleteEvent) Timestamp() float64 {
	return e.time
}

// Execute records the response time and releases the request's slot.
func (e *ServiceCompleteEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< ServiceComplete: %s at %.4f", e.Request.ID, e.time)
	sim.completeService(e.Request)
}

// ScaleDownEvent closes a scale window opened by the scaling policy.
type ScaleDownEvent struct {
	time float64 // End of the scale window
}

// Timestamp returns the scheduled time of the ScaleDownEvent.
func (e *ScaleDownEvent) Timestamp() float64 {
	return e.time
}

// Execute lets the scaling policy shrink the pool.
func (e *ScaleDownEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< ScaleDown at %.4f", e.time)
	sim.closeScaleWindow()
}
