package swap

import (
	"os"

	"golang.org/x/sys/unix"

	"pintosvm/config"
)

// FileDisk backs the swap device with a real file, mapped into this
// process with unix.Mmap so reads and writes are plain memory copies
// instead of syscalls per sector, and Sync can push dirty sectors back
// with unix.Msync.
type FileDisk struct {
	f        *os.File
	data     []byte
	nsectors int
}

// OpenFileDisk creates (or truncates) path to hold the requested number of
// sectors and maps it MAP_SHARED so writes are visible to any other process
// that maps the same file.
func OpenFileDisk(path string, sectors int) (*FileDisk, error) {
	size := sectors * config.SectorSize
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, err
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &FileDisk{f: f, data: data, nsectors: sectors}, nil
}

func (d *FileDisk) Size() int { return d.nsectors }

func (d *FileDisk) ReadAt(sector int, buf []byte) error {
	off := sector * config.SectorSize
	copy(buf, d.data[off:off+config.SectorSize])
	return nil
}

func (d *FileDisk) WriteAt(sector int, buf []byte) error {
	off := sector * config.SectorSize
	copy(d.data[off:off+config.SectorSize], buf)
	return nil
}

// Sync flushes the mapped region back to the underlying file.
func (d *FileDisk) Sync() error {
	return unix.Msync(d.data, unix.MS_SYNC)
}

// Close unmaps the swap file and closes its descriptor.
func (d *FileDisk) Close() error {
	if err := unix.Munmap(d.data); err != nil {
		return err
	}
	return d.f.Close()
}
