// Package filebacked implements the file backend: reading and writing
// page-sized ranges of an open file at an offset, with write-back on
// dirty.
package filebacked

import (
	"os"

	"pintosvm/errno"
)

// File is the backing-file handle a File page consumes. A page must
// reopen/duplicate it at registration time so its lifetime is independent
// of the handle that created the mapping. It deliberately does not expose
// a path or directory entry — the filesystem proper is out of scope here.
type File interface {
	ReadAt(buf []byte, off int64) (int, error)
	WriteAt(buf []byte, off int64) (int, error)
	Size() (int64, error)
	// Reopen duplicates the handle so the returned File survives the
	// original being closed.
	Reopen() (File, error)
	Close() error
}

// OSFile implements File over a real *os.File, the concrete backing a test
// or an mmap syscall would hand the subsystem.
type OSFile struct {
	f    *os.File
	path string
}

// Open opens path for reading and writing.
func Open(path string) (*OSFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &OSFile{f: f, path: path}, nil
}

func (o *OSFile) ReadAt(buf []byte, off int64) (int, error)  { return o.f.ReadAt(buf, off) }
func (o *OSFile) WriteAt(buf []byte, off int64) (int, error) { return o.f.WriteAt(buf, off) }

func (o *OSFile) Size() (int64, error) {
	fi, err := o.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Reopen opens an independent handle to the same path.
func (o *OSFile) Reopen() (File, error) {
	return Open(o.path)
}

func (o *OSFile) Close() error { return o.f.Close() }

// ReadPage reads readBytes bytes of f starting at offset into the front of
// page, zero-filling the remainder.
func ReadPage(f File, offset int64, readBytes int, page []byte) errno.Errno {
	if readBytes < 0 || readBytes > len(page) {
		panic("filebacked: readBytes out of range")
	}
	if readBytes > 0 {
		n, err := f.ReadAt(page[:readBytes], offset)
		if err != nil || n != readBytes {
			return errno.EIO
		}
	}
	for i := readBytes; i < len(page); i++ {
		page[i] = 0
	}
	return errno.Ok
}

// WritePage writes the first readBytes bytes of page back to f at offset.
// A read-only mapping or an unmodified page never reaches this call.
func WritePage(f File, offset int64, readBytes int, page []byte) errno.Errno {
	if readBytes == 0 {
		return errno.Ok
	}
	n, err := f.WriteAt(page[:readBytes], offset)
	if err != nil || n != readBytes {
		return errno.EIO
	}
	return errno.Ok
}
