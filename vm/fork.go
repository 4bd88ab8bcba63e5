package vm

import (
	"pintosvm/errno"
	"pintosvm/swap"
)

// Copy replicates every page of src into dst as part of fork: an Uninit
// page is re-registered lazily with the same initializer, while a
// materialized Anon or File page is claimed fresh in dst and its resident
// bytes are copied over — an eager copy, not copy-on-write (see DESIGN.md
// for why this departs from copy-on-write fork).
func Copy(dst, src *AddressSpace) errno.Errno {
	for _, va := range src.SPT.sortedVAs() {
		p, ok := src.SPT.Find(va)
		if !ok {
			continue
		}
		if err := forkPage(dst, p); err != errno.Ok {
			return err
		}
	}
	return errno.Ok
}

func forkPage(dst *AddressSpace, src *Page) errno.Errno {
	switch src.Kind {
	case KindUninit:
		return dst.AllocWithInitializer(src.Uninit.TargetKind, src.VA, src.Writable, src.Uninit.InitFn, src.Uninit.Aux)

	case KindAnon, KindFile:
		cp := &Page{VA: src.VA, Writable: src.Writable, Kind: src.Kind, Owner: dst, Marker: src.Marker}
		switch src.Kind {
		case KindAnon:
			cp.Anon.SwapSlot = swap.NoSlot
		case KindFile:
			nf, err := src.File.File.Reopen()
			if err != nil {
				return errno.EIO
			}
			cp.File = FilePayload{File: nf, Offset: src.File.Offset, ReadBytes: src.File.ReadBytes, MapID: src.File.MapID}
		}
		if !dst.SPT.Insert(cp) {
			return errno.EEXIST
		}
		if err := dst.Claim(cp); err != errno.Ok {
			return err
		}
		if src.Frame == nil {
			if err := src.Owner.Claim(src); err != errno.Ok {
				return err
			}
		}
		copy(dst.Frames.Bytes(cp.Frame), src.Owner.Frames.Bytes(src.Frame))
		return errno.Ok

	default:
		panic("vm: bad page kind")
	}
}
