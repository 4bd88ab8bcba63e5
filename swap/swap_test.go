package swap

import (
	"bytes"
	"testing"

	"pintosvm/config"
	"pintosvm/errno"
)

type memDisk struct {
	sectors [][]byte
}

func newMemDisk(n int) *memDisk {
	d := &memDisk{sectors: make([][]byte, n)}
	for i := range d.sectors {
		d.sectors[i] = make([]byte, config.SectorSize)
	}
	return d
}

func (d *memDisk) Size() int { return len(d.sectors) }

func (d *memDisk) ReadAt(sector int, buf []byte) error {
	copy(buf, d.sectors[sector])
	return nil
}

func (d *memDisk) WriteAt(sector int, buf []byte) error {
	copy(d.sectors[sector], buf)
	return nil
}

func TestReserveFreeReuse(t *testing.T) {
	b := NewBackend(newMemDisk(2 * config.SectorsPerPage))

	s1, err := b.Reserve()
	if err != errno.Ok || s1 != 0 {
		t.Fatalf("Reserve = (%d, %v), want (0, Ok)", s1, err)
	}
	s2, err := b.Reserve()
	if err != errno.Ok || s2 != 1 {
		t.Fatalf("Reserve = (%d, %v), want (1, Ok)", s2, err)
	}
	if _, err := b.Reserve(); err != errno.ENOSPC {
		t.Errorf("Reserve on a full bitmap = %v, want ENOSPC", err)
	}
	b.Free(s1)
	s3, err := b.Reserve()
	if err != errno.Ok || s3 != s1 {
		t.Errorf("Reserve after Free = (%d, %v), want (%d, Ok)", s3, err, s1)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	b := NewBackend(newMemDisk(config.SectorsPerPage))
	slot, _ := b.Reserve()

	page := make([]byte, config.PageSize)
	for i := range page {
		page[i] = byte(i)
	}
	if err := b.Write(slot, page); err != errno.Ok {
		t.Fatalf("Write failed: %v", err)
	}

	got := make([]byte, config.PageSize)
	if err := b.Read(slot, got); err != errno.Ok {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, page) {
		t.Error("Read did not return what Write stored")
	}
}

func TestUsed(t *testing.T) {
	b := NewBackend(newMemDisk(2 * config.SectorsPerPage))
	if b.Used() != 0 {
		t.Fatalf("Used = %d, want 0", b.Used())
	}
	slot, _ := b.Reserve()
	if b.Used() != 1 {
		t.Fatalf("Used = %d, want 1", b.Used())
	}
	b.Free(slot)
	if b.Used() != 0 {
		t.Fatalf("Used after Free = %d, want 0", b.Used())
	}
}
