package vm

import (
	"sort"
	"sync"

	"pintosvm/config"
)

// SPT is the supplemental page table: a per-process
// va → page-descriptor map, keyed on the page-aligned address. It is its
// own lock domain, independent of an address space's claim/fault path, so
// a lookup never blocks behind a frame being claimed.
type SPT struct {
	mu    sync.Mutex
	pages map[uintptr]*Page
}

// Init prepares an empty table.
func (s *SPT) Init() {
	s.pages = make(map[uintptr]*Page)
}

// Find looks up the page covering va, rounding down to its page boundary.
func (s *SPT) Find(va uintptr) (*Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[config.RoundDownPage(va)]
	return p, ok
}

// Insert adds p, keyed on its own VA (already page-aligned by the caller).
// Reports false if an entry already occupies that address.
func (s *SPT) Insert(p *Page) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pages == nil {
		s.pages = make(map[uintptr]*Page)
	}
	if _, exists := s.pages[p.VA]; exists {
		return false
	}
	s.pages[p.VA] = p
	return true
}

// Remove drops p's entry and invokes its destroy.
func (s *SPT) Remove(p *Page) {
	s.mu.Lock()
	delete(s.pages, p.VA)
	s.mu.Unlock()
	destroyPage(p)
}

// Kill tears down every remaining page, destroying each one. It does not
// need to serialize against a concurrent claim on the same process's
// pages beyond what destroy itself guards, since process teardown is only
// ever driven by the process's own exit path.
func (s *SPT) Kill() {
	s.mu.Lock()
	victims := make([]*Page, 0, len(s.pages))
	for _, p := range s.pages {
		victims = append(victims, p)
	}
	s.pages = make(map[uintptr]*Page)
	s.mu.Unlock()
	for _, p := range victims {
		destroyPage(p)
	}
}

// Len reports how many pages the table currently holds.
func (s *SPT) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// sortedVAs returns every registered VA in ascending order, the iteration
// order fork's Copy relies on.
func (s *SPT) sortedVAs() []uintptr {
	s.mu.Lock()
	vas := make([]uintptr, 0, len(s.pages))
	for va := range s.pages {
		vas = append(vas, va)
	}
	s.mu.Unlock()
	sort.Slice(vas, func(i, j int) bool { return vas[i] < vas[j] })
	return vas
}
