package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// GrantFunc is invoked when a queued request is handed a server slot.
// The pool has already counted the slot as in use when it is called.
type GrantFunc func(req *Request)

// ResourcePool models a server with a fixed number of concurrent slots and a
// FIFO queue of requests waiting for one.
//
// Invariants:
//   - count <= capacity, except right after SetCapacity shrinks the pool; the
//     surplus drains through Release, which never grants while count >= capacity.
//   - every slot handed out (TryAcquire returning true, or a grant) is released
//     exactly once. A release with no slot in use panics.
//
// Not thread-safe: all calls happen from the single event loop.
type ResourcePool struct {
	capacity int
	count    int
	waitQ    *WaitQueue
	onGrant  GrantFunc
}

// NewResourcePool creates a pool with the given initial capacity.
// Panics if capacity is negative.
func NewResourcePool(capacity int, onGrant GrantFunc) *ResourcePool {
	if capacity < 0 {
		panic(fmt.Sprintf("NewResourcePool: capacity must be >= 0, got %d", capacity))
	}
	return &ResourcePool{
		capacity: capacity,
		waitQ:    &WaitQueue{},
		onGrant:  onGrant,
	}
}

// TryAcquire takes a slot for req if one is free and returns true.
// Otherwise req joins the back of the wait queue and false is returned; the
// grant callback fires once a slot frees up for it.
func (p *ResourcePool) TryAcquire(req *Request) bool {
	if p.count < p.capacity {
		p.count++
		return true
	}
	p.waitQ.Enqueue(req)
	logrus.Tracef("%s waits for a slot; queue %v", req.ID, p.waitQ)
	return false
}

// Release frees one slot and grants queued requests in FIFO order while
// slots are available.
func (p *ResourcePool) Release() {
	if p.count <= 0 {
		panic("ResourcePool.Release: no slot in use")
	}
	p.count--
	p.grantWaiting()
}

// SetCapacity changes the number of slots. Growing the pool grants queued
// requests immediately; shrinking it never evicts requests already in service.
// Panics on a negative capacity.
func (p *ResourcePool) SetCapacity(n int) {
	if n < 0 {
		panic(fmt.Sprintf("ResourcePool.SetCapacity: capacity must be >= 0, got %d", n))
	}
	logrus.Debugf("pool capacity %d -> %d (in service %d, waiting %d)", p.capacity, n, p.count, p.waitQ.Len())
	p.capacity = n
	p.grantWaiting()
}

func (p *ResourcePool) grantWaiting() {
	for p.count < p.capacity && p.waitQ.Len() > 0 {
		next := p.waitQ.Dequeue()
		p.count++
		if p.onGrant != nil {
			p.onGrant(next)
		}
	}
}

// Capacity returns the current number of slots.
func (p *ResourcePool) Capacity() int { return p.capacity }

// Count returns the number of slots in use.
func (p *ResourcePool) Count() int { return p.count }

// QueueLength returns the number of requests waiting for a slot.
func (p *ResourcePool) QueueLength() int { return p.waitQ.Len() }
