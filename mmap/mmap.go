// Package mmap implements the mmap/munmap syscalls on top of the vm
// package's alloc-with-initializer and supplemental page table: a mapping
// is nothing more than a run of File pages sharing one MapID, so
// registration, rollback, and unmapping all reduce to walking that run.
package mmap

import (
	"sync/atomic"

	"pintosvm/config"
	"pintosvm/errno"
	"pintosvm/filebacked"
	"pintosvm/vm"
)

var nextMapID int64

func newMapID() int {
	return int(atomic.AddInt64(&nextMapID, 1))
}

// Mmap maps length bytes of file starting at offset into as at addr,
// returning addr on success. It validates addr and offset alignment, a
// non-zero length, that the whole range lies in user space, and that no
// page in the range is already registered; a failure midway through
// registration rolls back every page it placed.
func Mmap(as *vm.AddressSpace, addr uintptr, length int, writable bool, file filebacked.File, offset int64) (uintptr, errno.Errno) {
	if addr == 0 || !config.IsPageAligned(addr) || length <= 0 || offset < 0 || offset%config.PageSize != 0 {
		return 0, errno.EINVAL
	}
	npages := (length + config.PageSize - 1) / config.PageSize
	span := uintptr(npages) * config.PageSize
	if addr >= config.KernelBase || span > config.KernelBase-addr {
		return 0, errno.EINVAL
	}
	for i := 0; i < npages; i++ {
		if _, exists := as.SPT.Find(addr + uintptr(i)*config.PageSize); exists {
			return 0, errno.EINVAL
		}
	}
	fsize, err := file.Size()
	if err != nil {
		return 0, errno.EINVAL
	}
	readBytes := int64(length)
	if offset >= fsize {
		readBytes = 0
	} else if offset+readBytes > fsize {
		readBytes = fsize - offset
	}
	mapID := newMapID()
	off := offset
	remaining := readBytes
	for i := 0; i < npages; i++ {
		pageReadBytes := remaining
		if pageReadBytes > config.PageSize {
			pageReadBytes = config.PageSize
		}
		if pageReadBytes < 0 {
			pageReadBytes = 0
		}
		reopened, err := file.Reopen()
		if err != nil {
			Munmap(as, addr)
			return 0, errno.EINVAL
		}
		aux := &vm.FileLoadAux{File: reopened, Offset: off, ReadBytes: int(pageReadBytes), MapID: mapID}
		e := as.AllocWithInitializer(vm.KindFile, addr+uintptr(i)*config.PageSize, writable, vm.LoadFile, aux)
		if e != errno.Ok {
			reopened.Close()
			Munmap(as, addr)
			return 0, errno.EINVAL
		}
		remaining -= pageReadBytes
		off += pageReadBytes
	}
	return addr, errno.Ok
}

// mapIDOf reports the MapID of a mapping's page whether or not it has been
// claimed yet: a not-yet-faulted page still carries it in its Uninit aux.
func mapIDOf(p *vm.Page) (int, bool) {
	switch p.Kind {
	case vm.KindFile:
		return p.File.MapID, true
	case vm.KindUninit:
		if aux, ok := p.Uninit.Aux.(*vm.FileLoadAux); ok {
			return aux.MapID, true
		}
	}
	return 0, false
}

// Munmap writes back every dirty page of the mapping starting at addr and
// removes its descriptors. It is a no-op if no mapped page starts exactly
// at addr; given a later page of a mapping, it unmaps from that page to
// the end of the mapping.
func Munmap(as *vm.AddressSpace, addr uintptr) {
	first, ok := as.SPT.Find(addr)
	if !ok || first.VA != addr {
		return
	}
	mapID, ok := mapIDOf(first)
	if !ok {
		return
	}
	va := addr
	for {
		p, ok := as.SPT.Find(va)
		if !ok {
			break
		}
		id, isMapping := mapIDOf(p)
		if !isMapping || id != mapID {
			break
		}
		as.WritebackIfDirty(p)
		as.SPT.Remove(p)
		va += config.PageSize
	}
}
