package diag

import (
	"fmt"
	"runtime"
	"sync"
)

// DistinctCaller tracks which call chains have already reported a given
// warning, so a hot fault-handler path that backs off and retries doesn't
// flood the log with the same trace on every retry (adapted from the
// kernel's caller.Distinct_caller_t, redirected from debugging duplicate
// lock acquisitions onto deduplicating VM warnings).
type DistinctCaller struct {
	mu  sync.Mutex
	did map[uintptr]bool
}

func pchash(pcs []uintptr) uintptr {
	var ret uintptr
	for _, pc := range pcs {
		pc = pc*1103515245 + 12345
		ret ^= pc
	}
	return ret
}

// Seen reports whether the caller two frames up (the caller of the
// function invoking Seen) has already been recorded, and records it if
// not. The caller formats its own message; Seen only answers "is this new".
func (dc *DistinctCaller) Seen() bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.did == nil {
		dc.did = make(map[uintptr]bool)
	}
	pcs := make([]uintptr, 8)
	n := runtime.Callers(3, pcs)
	if n == 0 {
		return false
	}
	h := pchash(pcs[:n])
	seen := dc.did[h]
	dc.did[h] = true
	return seen
}

// WarnOnce logs msg via fmt.Println the first time it is reached from a
// given call chain, and is silent on every subsequent identical chain.
func (dc *DistinctCaller) WarnOnce(msg string) {
	if !dc.Seen() {
		fmt.Println(msg)
	}
}
