package vm

import (
	"container/list"
	"sync"

	"pintosvm/diag"
	"pintosvm/errno"
	"pintosvm/pool"
)

// FrameTable is the global registry of frames lent to resident user
// pages: an insertion-ordered ring over the pool's physical frames,
// walked clock-style (second chance) to pick an eviction victim. It is
// shared by every address space that claims frames from the same pool, the
// way a kernel's frame table is one system-wide structure.
type FrameTable struct {
	mu   sync.Mutex
	ring *list.List // of *Frame
	pool pool.Pool

	// oomWarn dedups the out-of-memory log line across repeated failed
	// eviction attempts from the same call chain.
	oomWarn diag.DistinctCaller
}

// NewFrameTable creates a frame table drawing frames from p.
func NewFrameTable(p pool.Pool) *FrameTable {
	return &FrameTable{ring: list.New(), pool: p}
}

// GetFrame obtains a free frame, evicting a victim if the pool is
// momentarily exhausted: it evicts one victim and retries Alloc once,
// reporting ENOMEM if no victim can be evicted or the pool is still empty
// after that single retry.
func (ft *FrameTable) GetFrame() (*Frame, errno.Errno) {
	kva, ok := ft.pool.Alloc()
	if !ok {
		if !ft.evictOne() {
			ft.oomWarn.WarnOnce("vm: out of frames and no evictable victim")
			return nil, errno.ENOMEM
		}
		kva, ok = ft.pool.Alloc()
		if !ok {
			ft.oomWarn.WarnOnce("vm: pool still exhausted after eviction")
			return nil, errno.ENOMEM
		}
	}
	f := &Frame{KVA: kva}
	ft.mu.Lock()
	ft.ring.PushBack(f)
	ft.mu.Unlock()
	return f, errno.Ok
}

// Release detaches f from the ring and returns its frame to the pool. The
// caller must already have cleared the owning page's translation.
func (ft *FrameTable) Release(f *Frame) {
	ft.mu.Lock()
	ft.removeLocked(f)
	ft.mu.Unlock()
	ft.pool.Free(f.KVA)
}

func (ft *FrameTable) removeLocked(f *Frame) {
	for e := ft.ring.Front(); e != nil; e = e.Next() {
		if e.Value.(*Frame) == f {
			ft.ring.Remove(e)
			return
		}
	}
}

// Bytes returns the backing byte slice of f's physical frame.
func (ft *FrameTable) Bytes(f *Frame) []byte {
	return ft.pool.Bytes(f.KVA)
}

// evictOne runs the second-chance clock: walk the ring from the front,
// clearing and skipping any frame whose owning page was recently accessed,
// and evict the first one found untouched. Every frame is visited at most
// twice, since the first pass clears every Accessed bit it sees.
//
// ft.mu is held from victim selection through ring removal so two threads
// hitting memory pressure at once can never pick the same victim: without
// that, both could select the same frame, both call swapOut on it (leaking
// a swap slot, since the second Reserve overwrites Anon.SwapSlot), and both
// end up calling pool.Free on the same KVA, handing one physical frame to
// two pages.
func (ft *FrameTable) evictOne() bool {
	ft.mu.Lock()
	victim := ft.selectVictimLocked()
	if victim == nil {
		ft.mu.Unlock()
		return false
	}
	page := victim.Page
	as := page.Owner
	if err := as.swapOut(page); err != errno.Ok {
		if err == errno.EIO {
			diag.IOFault("swap_out", "vm.(*FrameTable).evictOne")
		}
		ft.mu.Unlock()
		return false
	}
	as.Stats.addEviction()
	as.PageTable.Clear(page.VA)
	page.Frame = nil
	victim.Page = nil
	if as.FrameBudget != nil {
		as.FrameBudget.Give()
	}
	ft.removeLocked(victim)
	ft.mu.Unlock()
	ft.pool.Free(victim.KVA)
	return true
}

// selectVictimLocked requires ft.mu held by the caller; the lock stays
// held until the victim is fully evicted, not just until one is chosen.
func (ft *FrameTable) selectVictimLocked() *Frame {
	n := ft.ring.Len()
	if n == 0 {
		return nil
	}
	e := ft.ring.Front()
	for i := 0; i < 2*n; i++ {
		f := e.Value.(*Frame)
		next := e.Next()
		if next == nil {
			next = ft.ring.Front()
		}
		if f.Page != nil {
			as := f.Page.Owner
			if as.PageTable.IsAccessed(f.Page.VA) {
				as.PageTable.SetAccessed(f.Page.VA, false)
				ft.ring.MoveToBack(e)
				e = next
				continue
			}
			return f
		}
		e = next
	}
	return nil
}
