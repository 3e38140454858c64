package sim

import (
	"hash/fnv"
	"math/rand"
)

// Stream names one independent source of randomness within a run.
type Stream string

const (
	// StreamLegitimate draws legitimate inter-arrival gaps. It is seeded with
	// the run seed itself.
	StreamLegitimate Stream = "legitimate"
	// StreamAttack draws attack inter-arrival gaps.
	StreamAttack Stream = "attack"
	// StreamService draws service times for both classes.
	StreamService Stream = "service"
)

// ArrivalStream returns the stream that feeds arrivals of class.
func ArrivalStream(class RequestClass) Stream {
	if class == ClassLegitimate {
		return StreamLegitimate
	}
	return StreamAttack
}

// PartitionedRNG hands out one *rand.Rand per Stream, all derived from a
// single seed. Draws on one stream never shift another, so raising the attack
// rate leaves the legitimate arrival times of a run unchanged and scenarios
// stay comparable point by point.
//
// Seeds: StreamLegitimate uses the run seed; every other stream uses
// seed XOR fnv1a64(name).
//
// Not safe for concurrent use; each Simulator owns its own.
type PartitionedRNG struct {
	seed    int64
	streams map[Stream]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG for seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:    seed,
		streams: make(map[Stream]*rand.Rand, 3),
	}
}

// For returns the generator of stream s, creating it on first use.
// Repeated calls return the same instance.
func (p *PartitionedRNG) For(s Stream) *rand.Rand {
	if rng, ok := p.streams[s]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.streamSeed(s)))
	p.streams[s] = rng
	return rng
}

func (p *PartitionedRNG) streamSeed(s Stream) int64 {
	if s == StreamLegitimate {
		return p.seed
	}
	return p.seed ^ fnv1a64(string(s))
}

// fnv1a64 computes a 64-bit FNV-1a hash of s.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}
