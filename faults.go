package integrator

import (
	"sync"
	"time"
)

// Fault is one recorded failure: a rejected configuration or a failed
// channel write.
type Fault struct {
	// Time is when the fault was recorded.
	Time time.Time

	// Channel identifies the failing channel, or "" for validation faults.
	Channel string

	// Err is the underlying error.
	Err error
}

// faultRing is a thread-safe ring buffer of recent faults.
type faultRing struct {
	mu     sync.RWMutex
	faults []Fault
	size   int
	head   int
	count  int
}

// newFaultRing creates a fault ring with the given capacity.
// If size is 0, the ring is disabled.
func newFaultRing(size int) *faultRing {
	if size <= 0 {
		return nil
	}
	return &faultRing{
		faults: make([]Fault, size),
		size:   size,
	}
}

// push records a fault, evicting the oldest when full.
func (r *faultRing) push(f Fault) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.faults[r.head] = f
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// clear removes all recorded faults.
func (r *faultRing) clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.faults {
		r.faults[i] = Fault{}
	}
	r.head = 0
	r.count = 0
}

// all returns the recorded faults, oldest first.
func (r *faultRing) all() []Fault {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}

	result := make([]Fault, r.count)
	start := (r.head - r.count + r.size) % r.size
	for i := 0; i < r.count; i++ {
		result[i] = r.faults[(start+i)%r.size]
	}
	return result
}
