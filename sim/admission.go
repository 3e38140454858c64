package sim

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// ServerState is the read-only view of the server an admission policy decides on.
type ServerState struct {
	Clock       float64
	InService   int
	Capacity    int
	QueueLength int
}

// AdmissionPolicy decides whether an arriving request may enter the server
// (be served now or wait in its queue). A rejected request is dropped.
type AdmissionPolicy interface {
	Admit(req *Request, state ServerState) (admitted bool, reason string)
}

// AlwaysAdmit admits all requests unconditionally.
type AlwaysAdmit struct{}

func (a *AlwaysAdmit) Admit(_ *Request, _ ServerState) (bool, string) {
	return true, ""
}

// RateLimitAdmission is a concurrency cap on legitimate traffic: a legitimate
// request is dropped when Limit or more slots are already in use, regardless
// of how long the wait queue is. Attack traffic is never limited, so it can
// still fill the queue the limiter does not look at.
type RateLimitAdmission struct {
	Limit int
}

// NewRateLimitAdmission creates a limiter. Panics if limit < 1.
func NewRateLimitAdmission(limit int) *RateLimitAdmission {
	if limit < 1 {
		panic(fmt.Sprintf("NewRateLimitAdmission: limit must be >= 1, got %d", limit))
	}
	return &RateLimitAdmission{Limit: limit}
}

func (rl *RateLimitAdmission) Admit(req *Request, state ServerState) (bool, string) {
	if req.IsLegitimate() && state.InService >= rl.Limit {
		return false, "rate limit"
	}
	return true, ""
}

// simEpoch anchors simulated time on the wall-clock axis the limiter expects.
// One simulation time unit maps to one second.
var simEpoch = time.Unix(0, 0).UTC()

func simTimeToWall(clock float64) time.Time {
	return simEpoch.Add(time.Duration(clock * float64(time.Second)))
}

// TokenBucket throttles legitimate arrivals by rate: each admitted legitimate
// request takes one token; tokens refill at refillRate per time unit up to
// bucketSize. Like RateLimitAdmission it cannot tell attack traffic apart and
// leaves it alone.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a TokenBucket that starts full.
func NewTokenBucket(bucketSize int, refillRate float64) *TokenBucket {
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(refillRate), bucketSize)}
}

// Admit checks whether a token is available at the request's arrival time.
func (tb *TokenBucket) Admit(req *Request, state ServerState) (bool, string) {
	if !req.IsLegitimate() {
		return true, ""
	}
	if tb.limiter.AllowN(simTimeToWall(state.Clock), 1) {
		return true, ""
	}
	return false, "insufficient tokens"
}
