// Package pagetable describes the hardware page-table primitive that the
// virtual-memory subsystem consumes but does not implement:
// install/lookup/clear/dirty-bit query. A real kernel drives an x86 PML4;
// this package also ships an in-memory Map implementation of the same
// interface so the rest of the subsystem can be exercised without one.
package pagetable

import "sync"

// PTE permission bits, named and valued the way the kernel's mem package
// names its page-table-entry bits (PTE_P, PTE_W, PTE_U, ...).
const (
	PTE_P uintptr = 1 << 0 // present
	PTE_W uintptr = 1 << 1 // writable
	PTE_U uintptr = 1 << 2 // user-accessible
	PTE_D uintptr = 1 << 6 // dirty
	PTE_A uintptr = 1 << 5 // accessed
)

// Table is the hardware page-table handle the kernel threads on behalf of
// one address space. Install installs a translation from va to kva with
// the given permissions and reports whether it succeeded (e.g. false if
// the kernel is out of page-table pages). Lookup returns the kva mapped at
// va, or (0, false) if none. Clear removes any translation for va.
// IsDirty/SetDirty read and write the hardware dirty bit for va.
// IsAccessed/SetAccessed do the same for the accessed bit, used by a
// clock/second-chance eviction policy.
type Table interface {
	Install(va uintptr, kva uintptr, writable bool) bool
	Lookup(va uintptr) (kva uintptr, ok bool)
	Clear(va uintptr)
	IsDirty(va uintptr) bool
	SetDirty(va uintptr, dirty bool)
	IsAccessed(va uintptr) bool
	SetAccessed(va uintptr, accessed bool)
}

type entry struct {
	kva      uintptr
	writable bool
	dirty    bool
	accessed bool
}

// Map is a software stand-in for a real PML4: a process's hardware
// translations kept in an ordinary map instead of radix-tree page-table
// pages. It implements Table and is safe for concurrent use, matching the
// pmap lock discipline the real address space (vm.Vm_t.Lock_pmap) imposes
// around every translation change.
type Map struct {
	mu  sync.Mutex
	ptr map[uintptr]*entry
}

// NewMap returns an empty software page table.
func NewMap() *Map {
	return &Map{ptr: make(map[uintptr]*entry)}
}

func (m *Map) Install(va, kva uintptr, writable bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ptr[va]; ok {
		return false
	}
	m.ptr[va] = &entry{kva: kva, writable: writable}
	return true
}

func (m *Map) Lookup(va uintptr) (uintptr, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.ptr[va]
	if !ok {
		return 0, false
	}
	return e.kva, true
}

func (m *Map) Clear(va uintptr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ptr, va)
}

func (m *Map) IsDirty(va uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.ptr[va]
	return ok && e.dirty
}

func (m *Map) SetDirty(va uintptr, dirty bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.ptr[va]; ok {
		e.dirty = dirty
	}
}

func (m *Map) IsAccessed(va uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.ptr[va]
	return ok && e.accessed
}

func (m *Map) SetAccessed(va uintptr, accessed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.ptr[va]; ok {
		e.accessed = accessed
	}
}
