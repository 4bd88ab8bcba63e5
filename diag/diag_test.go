package diag

import (
	"bytes"
	"testing"

	"golang.org/x/text/language"

	"pintosvm/pool"
	"pintosvm/swap"
)

type memDisk struct{ sectors [][]byte }

func newMemDisk(n int) *memDisk {
	d := &memDisk{sectors: make([][]byte, n)}
	for i := range d.sectors {
		d.sectors[i] = make([]byte, 512)
	}
	return d
}

func (d *memDisk) Size() int                            { return len(d.sectors) }
func (d *memDisk) ReadAt(s int, b []byte) error          { copy(b, d.sectors[s]); return nil }
func (d *memDisk) WriteAt(s int, b []byte) error         { copy(d.sectors[s], b); return nil }

func TestTakeAndReport(t *testing.T) {
	pl := pool.NewFreeList(4, 0x1000)
	pl.Alloc()
	sw := swap.NewBackend(newMemDisk(8))
	sw.Reserve()

	snap := Take(pl, sw)
	if snap.FramesAvailable != 3 {
		t.Errorf("FramesAvailable = %d, want 3", snap.FramesAvailable)
	}
	if snap.SwapUsed != 1 {
		t.Errorf("SwapUsed = %d, want 1", snap.SwapUsed)
	}

	var buf bytes.Buffer
	Report(&buf, language.English, snap, 4)
	if buf.Len() == 0 {
		t.Error("Report should write a non-empty summary")
	}
}

func TestProfileSampleValue(t *testing.T) {
	snap := Snapshot{FramesAvailable: 1}
	prof := snap.Profile(4)
	if len(prof.Sample) != 1 {
		t.Fatalf("len(Sample) = %d, want 1", len(prof.Sample))
	}
	if prof.Sample[0].Value[0] != 3 {
		t.Errorf("frames_in_use = %d, want 3", prof.Sample[0].Value[0])
	}
}

func TestDemangleSymbolFallsBackOnFailure(t *testing.T) {
	if got := DemangleSymbol("not a mangled symbol!!"); got != "not a mangled symbol!!" {
		t.Errorf("DemangleSymbol on an undecodable name should return it unchanged, got %q", got)
	}
}

func TestIOFaultPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("IOFault should panic")
		}
	}()
	IOFault("swap_out", "bad_symbol")
}
