// Package vm implements the page-lifecycle machinery at the heart of the
// virtual-memory subsystem: the page descriptor and its Uninit/Anon/File
// variants, the frame table and eviction, the supplemental page table,
// claim, the page-fault handler, and fork's eager copy. It collapses what
// a C kernel would split across several translation units into one Go
// package, the way a kernel's page and frame structs often live in one
// header rather than several.
package vm

import (
	"fmt"

	"pintosvm/errno"
	"pintosvm/filebacked"
	"pintosvm/swap"
)

// Kind tags which variant a page descriptor currently is. A page is born
// Uninit and transmutes to Anon or File on first access.
type Kind int

const (
	KindUninit Kind = iota
	KindAnon
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindUninit:
		return "uninit"
	case KindAnon:
		return "anon"
	case KindFile:
		return "file"
	default:
		return "kind?"
	}
}

// Marker carries auxiliary bits layered on top of Kind — independent of
// the three-way kind tag — so the loader can flag a page (e.g. the
// initial stack page) without stealing one of Kind's own values.
type Marker uint8

const (
	MarkerNone  Marker = 0
	MarkerStack Marker = 1 << 0
)

// InitFn is invoked once, after a page's type-specific initializer has run,
// to load its initial contents — the stored (file, offset, read_bytes)
// loader. aux is the opaque context supplied at registration.
type InitFn func(p *Page, aux any) errno.Errno

// UninitPayload is the per-kind data carried while a page has not yet been
// touched.
type UninitPayload struct {
	TargetKind Kind
	Aux        any
	InitFn     InitFn
}

// AnonPayload is the per-kind data for an anonymous page.
type AnonPayload struct {
	// SwapSlot is swap.NoSlot when the page is resident or has never been
	// swapped.
	SwapSlot int
}

// FilePayload is the per-kind data for a file-backed page.
type FilePayload struct {
	File      filebacked.File
	Offset    int64
	ReadBytes int
	// MapID groups the pages registered by one mmap call, so munmap knows
	// where one mapping's run of pages ends and rollback can undo a
	// partially-registered mapping.
	MapID int
}

// Page is the descriptor for one user virtual page. VA is the
// page-aligned key unique per SPT; Owner names the address space that
// allocated it, letting the frame table's evictor and a page's own Destroy
// reach back into the right page table, swap backend, and frame pool
// without a separate lookup table.
type Page struct {
	VA       uintptr
	Writable bool
	Frame    *Frame
	Kind     Kind
	Marker   Marker
	Owner    *AddressSpace

	Uninit UninitPayload
	Anon   AnonPayload
	File   FilePayload
}

// Frame represents one physical page lent to a resident user page. KVA
// is the kernel-virtual address backing it; Page is the weak
// back-reference the frame table clears at detach.
type Frame struct {
	KVA  uintptr
	Page *Page
}

// destroyPage releases whatever resources p holds: its frame (if resident),
// its swap slot (if an evicted anon page), and its file handle (if a file
// page). It does not write back dirty file contents — only an explicit
// Munmap or an eviction's swap_out does that; see DESIGN.md for why
// generic destroy stays silent here.
func destroyPage(p *Page) {
	as := p.Owner
	as.mu.Lock()
	defer as.mu.Unlock()
	if p.Marker == MarkerStack {
		fmt.Printf("vm: tearing down stack bottom page va=%#x\n", p.VA)
	}
	if p.Frame != nil {
		as.PageTable.Clear(p.VA)
		as.releaseFrame(p.Frame)
		p.Frame = nil
	}
	if p.Kind == KindAnon && p.Anon.SwapSlot != swap.NoSlot {
		as.Swap.Free(p.Anon.SwapSlot)
		p.Anon.SwapSlot = swap.NoSlot
	}
	if p.Kind == KindFile && p.File.File != nil {
		p.File.File.Close()
	}
}
