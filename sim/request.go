// Defines the Request struct that models a single client request in the simulation.
// Tracks traffic class, arrival time and the time it was granted a server slot.

package sim

import (
	"fmt"
)

// RequestClass tags the origin of a request.
type RequestClass string

const (
	ClassLegitimate RequestClass = "legitimate"
	ClassAttack     RequestClass = "attack"
)

// Request models a single request's lifecycle in the simulation.
// Class, ID and ArrivalTime are fixed at creation. AdmitTime is written once,
// by the simulator, when the request is granted a server slot.
type Request struct {
	ID          string       // Unique identifier, e.g. "legitimate_12"
	Class       RequestClass // legitimate or attack
	ArrivalTime float64      // Simulation time at which the request arrived
	AdmitTime   float64      // Simulation time at which service started (valid once admitted)
}

// NewRequest creates a request of the given class arriving at now.
func NewRequest(class RequestClass, seq int, now float64) *Request {
	return &Request{
		ID:          fmt.Sprintf("%s_%d", class, seq),
		Class:       class,
		ArrivalTime: now,
	}
}

// IsLegitimate reports whether the request comes from a legitimate user.
func (req *Request) IsLegitimate() bool {
	return req.Class == ClassLegitimate
}

// This function formats the request for logging.
func (req Request) String() string {
	return fmt.Sprintf("Request: (ID: %s, Class: %s, ArrivalTime: %.4f)", req.ID, req.Class, req.ArrivalTime)
}
