package vm

import (
	"pintosvm/config"
	"pintosvm/errno"
	"pintosvm/filebacked"
	"pintosvm/swap"
)

// AllocWithInitializer registers a lazily-materialized page: it
// stores kind, init, and aux without touching the hardware page table or
// allocating a frame. kind must be the page's eventual Anon or File kind,
// never KindUninit.
func (as *AddressSpace) AllocWithInitializer(kind Kind, upage uintptr, writable bool, init InitFn, aux any) errno.Errno {
	if kind == KindUninit {
		panic("vm: alloc target kind must not be Uninit")
	}
	va := config.RoundDownPage(upage)
	p := &Page{
		VA:       va,
		Writable: writable,
		Kind:     KindUninit,
		Owner:    as,
		Uninit:   UninitPayload{TargetKind: kind, Aux: aux, InitFn: init},
	}
	if !as.SPT.Insert(p) {
		return errno.EEXIST
	}
	return errno.Ok
}

// Claim materializes p: obtains a frame, installs the translation, and
// loads the page's contents. Calling Claim on an already
// resident page is a no-op that returns Ok (the fault handler never calls
// Claim on a resident page).
func (as *AddressSpace) Claim(p *Page) errno.Errno {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.claimLocked(p)
}

func (as *AddressSpace) claimLocked(p *Page) errno.Errno {
	if p.Frame != nil {
		return errno.Ok
	}
	if as.FrameBudget != nil && !as.FrameBudget.Take() {
		return errno.ENOMEM
	}
	f, err := as.Frames.GetFrame()
	if err != errno.Ok {
		if as.FrameBudget != nil {
			as.FrameBudget.Give()
		}
		return err
	}
	f.Page = p
	p.Frame = f
	if !as.PageTable.Install(p.VA, f.KVA, p.Writable) {
		p.Frame = nil
		f.Page = nil
		as.releaseFrame(f)
		return errno.ENOMEM
	}
	if err := as.swapIn(p, f); err != errno.Ok {
		as.PageTable.Clear(p.VA)
		p.Frame = nil
		f.Page = nil
		as.releaseFrame(f)
		return err
	}
	return errno.Ok
}

// releaseFrame returns f to the shared pool and refunds this address
// space's frame budget, if it has one.
func (as *AddressSpace) releaseFrame(f *Frame) {
	as.Frames.Release(f)
	if as.FrameBudget != nil {
		as.FrameBudget.Give()
	}
}

// swapIn loads p's contents into its newly-bound frame f, transmuting an
// Uninit page to its stored target kind first, rewriting the variant
// payload before invoking the stored init_fn, if present.
func (as *AddressSpace) swapIn(p *Page, f *Frame) errno.Errno {
	buf := as.Frames.Bytes(f)
	switch p.Kind {
	case KindUninit:
		target, initFn, aux := p.Uninit.TargetKind, p.Uninit.InitFn, p.Uninit.Aux
		switch target {
		case KindAnon:
			p.Kind = KindAnon
			p.Anon = AnonPayload{SwapSlot: swap.NoSlot}
		case KindFile:
			p.Kind = KindFile
			p.File = FilePayload{}
		default:
			panic("vm: bad uninit target kind")
		}
		if initFn != nil {
			return initFn(p, aux)
		}
		return errno.Ok
	case KindAnon:
		if p.Anon.SwapSlot != swap.NoSlot {
			if err := as.Swap.Read(p.Anon.SwapSlot, buf); err != errno.Ok {
				return err
			}
			as.Swap.Free(p.Anon.SwapSlot)
			p.Anon.SwapSlot = swap.NoSlot
			as.Stats.addSwapIn()
			return errno.Ok
		}
		return errno.Ok
	case KindFile:
		return filebacked.ReadPage(p.File.File, p.File.Offset, p.File.ReadBytes, buf)
	default:
		panic("vm: bad page kind")
	}
}

// swapOut evicts p's resident contents out of its frame: to the swap
// backend for an anon page, or back to its file if dirty for a file page.
// The caller (the frame table's evictor) clears the translation and
// releases the frame itself afterward.
func (as *AddressSpace) swapOut(p *Page) errno.Errno {
	buf := as.Frames.Bytes(p.Frame)
	switch p.Kind {
	case KindAnon:
		slot, err := as.Swap.Reserve()
		if err != errno.Ok {
			return err
		}
		if err := as.Swap.Write(slot, buf); err != errno.Ok {
			as.Swap.Free(slot)
			return err
		}
		p.Anon.SwapSlot = slot
		as.Stats.addSwapOut()
		return errno.Ok
	case KindFile:
		if as.PageTable.IsDirty(p.VA) {
			if err := filebacked.WritePage(p.File.File, p.File.Offset, p.File.ReadBytes, buf); err != errno.Ok {
				return err
			}
			as.PageTable.SetDirty(p.VA, false)
			as.Stats.addFileWrite()
		}
		return errno.Ok
	default:
		panic("vm: uninit pages are never eviction victims")
	}
}

// WritebackIfDirty writes a resident File page's contents back to its file
// if the hardware dirty bit is set, the write-back munmap performs on each
// of its pages.
func (as *AddressSpace) WritebackIfDirty(p *Page) errno.Errno {
	if p.Kind != KindFile || p.Frame == nil {
		return errno.Ok
	}
	if !as.PageTable.IsDirty(p.VA) {
		return errno.Ok
	}
	buf := as.Frames.Bytes(p.Frame)
	if err := filebacked.WritePage(p.File.File, p.File.Offset, p.File.ReadBytes, buf); err != errno.Ok {
		return err
	}
	as.PageTable.SetDirty(p.VA, false)
	as.Stats.addFileWrite()
	return errno.Ok
}

// FileLoadAux is the aux value paired with LoadFile for a File page's
// init_fn: it carries the (file, offset, read_bytes) that will
// be bound into the page once it transmutes out of Uninit.
type FileLoadAux struct {
	File      filebacked.File
	Offset    int64
	ReadBytes int
	MapID     int
}

// LoadFile is the stock init_fn for File pages: it binds the aux's file
// range onto the now-materialized page and reads its bytes.
func LoadFile(p *Page, aux any) errno.Errno {
	a := aux.(*FileLoadAux)
	p.File.File = a.File
	p.File.Offset = a.Offset
	p.File.ReadBytes = a.ReadBytes
	p.File.MapID = a.MapID
	buf := p.Owner.Frames.Bytes(p.Frame)
	return filebacked.ReadPage(a.File, a.Offset, a.ReadBytes, buf)
}

// SetupStack registers and eagerly claims the process's initial stack
// page, reusing the same alloc+claim path as any other anonymous page
// rather than a separate code path.
func (as *AddressSpace) SetupStack() errno.Errno {
	va := config.UserStack - config.PageSize
	if err := as.AllocWithInitializer(KindAnon, va, true, nil, nil); err != errno.Ok {
		return err
	}
	p, _ := as.SPT.Find(va)
	p.Marker = MarkerStack
	if err := as.Claim(p); err != errno.Ok {
		return err
	}
	as.stackBottom = va
	return errno.Ok
}
