package vm

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"pintosvm/config"
	"pintosvm/pagetable"
	"pintosvm/pool"
	"pintosvm/swap"
)

// AddressSpace ties one process's supplemental page table to the hardware
// page table, the shared frame table, and the swap backend, bundling them
// the way a kernel's per-process memory-map struct bundles its region list
// and page-map handle under one mutex. Here the SPT is its own lock domain
// (see SPT); AddressSpace's own lock instead guards Claim and Destroy, the
// operations that must not race each other over the same page's frame
// binding.
type AddressSpace struct {
	mu sync.Mutex

	SPT       SPT
	PageTable pagetable.Table
	Frames    *FrameTable
	Swap      *swap.Backend

	// SavedRSP is the kernel-mode fall-back stack pointer a syscall path
	// records before it can fault on user memory.
	SavedRSP uintptr

	stackBottom uintptr

	// Stats counts this address space's faults, evictions, and swap
	// transfers.
	Stats Stats

	// FrameBudget, if set, caps how many frames this address space may
	// hold resident at once; Claim spends one unit and Destroy/eviction
	// refund it. Nil means unbounded (besides the shared pool's own size).
	FrameBudget *pool.Budget

	// faultGroup collapses concurrent faults on the same address onto one
	// Claim, so a second thread faulting the same page while the first is
	// still reading it from disk waits for that read instead of racing it.
	faultGroup singleflight.Group
}

// NewAddressSpace creates an address space over the given hardware page
// table, shared frame table, and swap backend.
func NewAddressSpace(pt pagetable.Table, frames *FrameTable, sw *swap.Backend) *AddressSpace {
	as := &AddressSpace{
		PageTable:   pt,
		Frames:      frames,
		Swap:        sw,
		stackBottom: config.UserStack,
	}
	as.SPT.Init()
	return as
}

// Kill tears down every page the address space still owns, invoked at
// process exit.
func (as *AddressSpace) Kill() {
	as.SPT.Kill()
}
