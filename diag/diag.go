// Package diag renders a point-in-time snapshot of the virtual-memory
// subsystem's state for troubleshooting: frame occupancy as a pprof
// heap-style profile (swap occupancy appears only in the text Report, not
// in the profile), and panic traces with demangled symbols, in
// the kernel habit of emitting a symbolized backtrace on a fatal fault.
package diag

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/google/pprof/profile"
	"github.com/ianlancetaylor/demangle"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"pintosvm/pool"
	"pintosvm/swap"
)

// Snapshot summarizes pool and swap occupancy at one instant: how many
// frames remain available and how many swap slots are in use.
type Snapshot struct {
	FramesAvailable int
	SwapUsed        int
	Taken           time.Time
}

// Take reads the current occupancy of p and sw. Taken is left zero; the
// caller stamps it, since this package may not call time.Now() where a
// deterministic replay is required.
func Take(p pool.Pool, sw *swap.Backend) Snapshot {
	return Snapshot{
		FramesAvailable: p.Available(),
		SwapUsed:        sw.Used(),
	}
}

// Profile builds a pprof heap-style profile with one sample type,
// "frames_in_use", carrying a single sample whose value is the number of
// frames currently lent out of total. It is meant to be written with
// profile.Write and inspected with `go tool pprof`.
func (s Snapshot) Profile(totalFrames int) *profile.Profile {
	inUse := int64(totalFrames - s.FramesAvailable)
	return &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "frames_in_use", Unit: "count"}},
		Sample: []*profile.Sample{
			{Value: []int64{inUse}, Label: map[string][]string{"kind": {"frame"}}},
		},
		TimeNanos: s.Taken.UnixNano(),
	}
}

// Report renders a locale-formatted one-line summary of the snapshot,
// grouping large counts with the reader's locale's thousands separator —
// the diagnostics equivalent of the kernel's printf-style stat dumps, done
// with x/text instead of hand-rolled digit grouping.
func Report(w io.Writer, tag language.Tag, s Snapshot, total int) {
	p := message.NewPrinter(tag)
	p.Fprintf(w, "frames: %d/%d available, swap: %d slots used\n", s.FramesAvailable, total, s.SwapUsed)
}

// DemangleSymbol best-effort demangles a possibly-mangled symbol name
// captured in a fault backtrace, for the panic message IOFault raises when
// a swap or file read/write fails unrecoverably: EIO here is a
// kernel-internal bug, expected to panic rather than propagate.
func DemangleSymbol(mangled string) string {
	if sym, err := demangle.ToString(mangled); err == nil {
		return sym
	}
	return mangled
}

// IOFault panics with a symbolized description of an unrecoverable disk
// I/O error, the last resort swap_out/swap_in/file read/write reach for
// once their own error return isn't enough.
func IOFault(op string, mangledCaller string) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "vm: unrecoverable I/O fault in %s (called from %s)", op, DemangleSymbol(mangledCaller))
	panic(b.String())
}
