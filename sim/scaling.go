package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ScalingPolicy adds temporary capacity when the server falls behind.
// ScaleUp is consulted after every service completion (or after every admitted
// arrival with ScaleCheckArrival); when it returns true the
// simulator schedules a ScaleDownEvent WindowDuration() later, which calls
// ScaleDown exactly once for that window.
type ScalingPolicy interface {
	ScaleUp(pool *ResourcePool) bool
	ScaleDown(pool *ResourcePool)
	WindowDuration() float64
	// ActiveWindows returns the number of windows opened and not yet closed.
	ActiveWindows() int
}

// QueueThresholdScaler opens a one-slot scale window whenever the wait queue
// reaches threshold.
//
// In ScalingModeIndependent each window is unaware of the others: opening one
// adds a slot to whatever the capacity currently is, and closing one resets
// capacity to base even while other windows are open. Overlapping windows can
// therefore both over-scale (capacity base+N while N windows overlap) and
// under-scale (capacity back to base while windows are still open).
//
// In ScalingModeCounted capacity is always base + open windows.
type QueueThresholdScaler struct {
	threshold   int
	duration    float64
	base        int
	maxCapacity int // 0 = unbounded
	mode        string
	active      int
}

// NewQueueThresholdScaler creates a scaler restoring capacity to base.
// An empty mode means ScalingModeIndependent.
func NewQueueThresholdScaler(threshold int, duration float64, base, maxCapacity int, mode string) *QueueThresholdScaler {
	if mode == "" {
		mode = ScalingModeIndependent
	}
	if !ValidScalingModes[mode] {
		panic(fmt.Sprintf("NewQueueThresholdScaler: unknown scaling mode %q", mode))
	}
	return &QueueThresholdScaler{
		threshold:   threshold,
		duration:    duration,
		base:        base,
		maxCapacity: maxCapacity,
		mode:        mode,
	}
}

// ScaleUp opens a window if the queue has reached the threshold and the
// capacity ceiling allows it.
func (s *QueueThresholdScaler) ScaleUp(pool *ResourcePool) bool {
	if pool.QueueLength() < s.threshold {
		return false
	}
	next := pool.Capacity() + 1
	if s.mode == ScalingModeCounted {
		next = s.base + s.active + 1
	}
	if s.maxCapacity > 0 && next > s.maxCapacity {
		logrus.Debugf("scale-up skipped: capacity %d at ceiling %d", pool.Capacity(), s.maxCapacity)
		return false
	}
	s.active++
	pool.SetCapacity(next)
	return true
}

// ScaleDown closes one window.
func (s *QueueThresholdScaler) ScaleDown(pool *ResourcePool) {
	if s.active <= 0 {
		panic("QueueThresholdScaler.ScaleDown: no open window")
	}
	s.active--
	if s.mode == ScalingModeCounted {
		pool.SetCapacity(s.base + s.active)
		return
	}
	pool.SetCapacity(s.base)
}

func (s *QueueThresholdScaler) WindowDuration() float64 { return s.duration }

func (s *QueueThresholdScaler) ActiveWindows() int { return s.active }
