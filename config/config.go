// Package config holds the compile-time tunables of the virtual-memory
// subsystem, the way limits.Syslimit_t groups the kernel's system-wide
// numeric limits in one place rather than scattering magic numbers.
package config

import (
	"golang.org/x/mod/semver"

	"pintosvm/util"
)

// Version identifies this build of the vm subsystem. Checked for
// well-formedness at init, the same defensive habit the toolchain applies
// to its own version strings.
const Version = "v0.1.0"

func init() {
	if !semver.IsValid(Version) {
		panic("config: malformed version string " + Version)
	}
}

const (
	// PageShift is the base-2 exponent of the page size.
	PageShift = 12

	// PageSize is the size of a single page in bytes (4 KiB).
	PageSize = 1 << PageShift

	// PageMask isolates the offset bits within a page.
	PageMask = PageSize - 1

	// SectorSize is the size of one swap/disk sector in bytes.
	SectorSize = 512

	// SectorsPerPage is the number of disk sectors backing one page:
	// 8 for 4 KiB pages on 512-byte sectors.
	SectorsPerPage = PageSize / SectorSize

	// UserStack is the address one past the top of the user stack.
	UserStack = 0x4747_7000 + (1 << 20)

	// StackLimit bounds how far below UserStack automatic stack growth
	// will allocate pages: 1 MiB by default.
	StackLimit = 1 << 20

	// KernelBase is the first address of kernel space; a fault at or above
	// it, or at address 0, is never resolvable by this subsystem.
	KernelBase = 1 << 47
)

// RoundDownPage aligns va down to the start of its containing page.
func RoundDownPage(va uintptr) uintptr {
	return util.Rounddown(va, uintptr(PageSize))
}

// PageOffset returns the byte offset of va within its page.
func PageOffset(va uintptr) uintptr {
	return va - RoundDownPage(va)
}

// IsPageAligned reports whether va falls exactly on a page boundary.
func IsPageAligned(va uintptr) bool {
	return PageOffset(va) == 0
}
