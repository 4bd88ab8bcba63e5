// Package errno defines the kernel-style error codes returned across the
// virtual-memory subsystem. Functions that can fail return (T, errno.Errno)
// with Ok meaning success, the same convention the rest of the kernel uses
// for its Err_t.
package errno

import "fmt"

// Errno is a negative error code, or Ok (zero) on success.
type Errno int

// Error kinds surfaced by the virtual-memory core.
const (
	Ok Errno = 0

	// EFAULT: null or kernel VA in a user request, or SPT lookup miss on
	// fault. Surfaces to the fault handler's caller as "kill the process".
	EFAULT Errno = -14

	// EACCES: write fault against a page mapped read-only.
	EACCES Errno = -13

	// ENOMEM: frame pool exhausted and no evictable victim was found.
	ENOMEM Errno = -12

	// ENOSPC: the swap bitmap has no free run of SectorsPerPage sectors.
	ENOSPC Errno = -28

	// EIO: a disk read or write failed. Kernel-internal bug in this scope;
	// callers are expected to panic rather than propagate it further.
	EIO Errno = -5

	// EINVAL: bad mmap argument (alignment, overlap, zero length, closed fd).
	EINVAL Errno = -22

	// EEXIST: duplicate VA on insert, e.g. alloc-with-initializer racing a
	// prior registration of the same page.
	EEXIST Errno = -17
)

var names = map[Errno]string{
	Ok:      "ok",
	EFAULT:  "EFAULT",
	EACCES:  "EACCES",
	ENOMEM:  "ENOMEM",
	ENOSPC:  "ENOSPC",
	EIO:     "EIO",
	EINVAL:  "EINVAL",
	EEXIST:  "EEXIST",
}

// Error implements the error interface so an Errno can be returned or
// wrapped wherever idiomatic Go expects one, without disturbing the Err_t
// style call sites that just compare against zero.
func (e Errno) Error() string {
	if s, ok := names[e]; ok {
		return s
	}
	return fmt.Sprintf("errno(%d)", int(e))
}

// IsOk reports whether e represents success.
func (e Errno) IsOk() bool {
	return e == Ok
}
