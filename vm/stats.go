package vm

import (
	"sync"
	"sync/atomic"
)

// Stats accumulates per-address-space virtual-memory counters: how many
// faults, evictions, and swap transfers it has handled. The counter
// methods and the locked Snapshot pattern follow the kernel's own
// resource-accounting style, redirected from user/system CPU time onto
// page-fault and eviction bookkeeping.
type Stats struct {
	Faults     int64
	Evictions  int64
	SwapIns    int64
	SwapOuts   int64
	FileWrites int64

	mu sync.Mutex
}

func (s *Stats) addFault()     { atomic.AddInt64(&s.Faults, 1) }
func (s *Stats) addEviction()  { atomic.AddInt64(&s.Evictions, 1) }
func (s *Stats) addSwapIn()    { atomic.AddInt64(&s.SwapIns, 1) }
func (s *Stats) addSwapOut()   { atomic.AddInt64(&s.SwapOuts, 1) }
func (s *Stats) addFileWrite() { atomic.AddInt64(&s.FileWrites, 1) }

// Counters is a lock-free point-in-time copy of Stats's counters, the
// value Snapshot hands back so a caller never holds (or copies) Stats's
// own mutex.
type Counters struct {
	Faults     int64
	Evictions  int64
	SwapIns    int64
	SwapOuts   int64
	FileWrites int64
}

// Snapshot returns a consistent copy of the counters, locking to produce a
// stable view rather than reading each field separately.
func (s *Stats) Snapshot() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counters{
		Faults:     atomic.LoadInt64(&s.Faults),
		Evictions:  atomic.LoadInt64(&s.Evictions),
		SwapIns:    atomic.LoadInt64(&s.SwapIns),
		SwapOuts:   atomic.LoadInt64(&s.SwapOuts),
		FileWrites: atomic.LoadInt64(&s.FileWrites),
	}
}

// Add merges another address space's counters into this one, the way a
// child's usage gets rolled into its parent's.
func (s *Stats) Add(n *Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	atomic.AddInt64(&s.Faults, atomic.LoadInt64(&n.Faults))
	atomic.AddInt64(&s.Evictions, atomic.LoadInt64(&n.Evictions))
	atomic.AddInt64(&s.SwapIns, atomic.LoadInt64(&n.SwapIns))
	atomic.AddInt64(&s.SwapOuts, atomic.LoadInt64(&n.SwapOuts))
	atomic.AddInt64(&s.FileWrites, atomic.LoadInt64(&n.FileWrites))
}
