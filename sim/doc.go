// Package sim provides the discrete-event simulation engine used to compare
// DDoS mitigation strategies for a single server.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - request.go: Request classes (legitimate, attack) and their timestamps
//   - event.go: Events that drive the simulation (Arrival, ServiceComplete, ScaleDown)
//   - simulator.go: The event loop and the acquire/serve/release lifecycle
//   - resource.go: The finite-capacity server with its FIFO wait queue
//
// # Architecture
//
// A run is built from one ResourcePool, one AdmissionPolicy and an optional
// ScalingPolicy. Scenarios (scenario.go) name the supported combinations:
//   - rate-limiting: drop legitimate requests when the server is busy
//   - adaptive-scaling: admit everything, add capacity when the queue builds up
//   - token-bucket: throttle legitimate requests by arrival rate
//   - none: admit everything, no mitigation (baseline)
//
// Sub-packages hold code with no dependency on sim/:
//   - sim/workload/: inter-arrival and service time samplers, sweep definitions
//   - sim/trace/: admission and scaling decision records
//
// # Concurrency
//
// The engine is single-threaded. "Concurrent" requests are modelled by
// suspension points (waiting for a slot, waiting for service to finish,
// waiting for a scale window to end), each of which is an event on the heap.
// Independent Simulators share no state and may run in parallel.
package sim
