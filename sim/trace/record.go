// Package trace provides decision-trace recording for mitigation policy analysis.
// It has no dependencies on sim/ and stores pure data types.
package trace

// AdmissionRecord captures a single admission policy decision.
type AdmissionRecord struct {
	RequestID string
	Class     string // "legitimate" or "attack"
	Clock     float64
	Admitted  bool
	Reason    string
	InService int // slots in use when the decision was made
	Queued    int // wait queue length when the decision was made
}

// ScalingDirection tells whether a scaling record opened or closed a window.
type ScalingDirection string

const (
	ScaleUp   ScalingDirection = "up"
	ScaleDown ScalingDirection = "down"
)

// ScalingRecord captures one capacity change made by a scaling policy.
type ScalingRecord struct {
	Clock         float64
	Direction     ScalingDirection
	FromCapacity  int
	ToCapacity    int
	QueueLength   int
	ActiveWindows int // windows still open after this change
}
