package pagetable

import "testing"

func TestInstallLookupClear(t *testing.T) {
	m := NewMap()
	if !m.Install(0x1000, 0x8000, true) {
		t.Fatal("Install on fresh va should succeed")
	}
	if m.Install(0x1000, 0x9000, true) {
		t.Error("Install should reject a duplicate va")
	}
	kva, ok := m.Lookup(0x1000)
	if !ok || kva != 0x8000 {
		t.Errorf("Lookup = (%#x, %v), want (0x8000, true)", kva, ok)
	}
	m.Clear(0x1000)
	if _, ok := m.Lookup(0x1000); ok {
		t.Error("Lookup after Clear should miss")
	}
	if !m.Install(0x1000, 0xa000, false) {
		t.Error("Install after Clear should succeed again")
	}
}

func TestDirtyAndAccessedBits(t *testing.T) {
	m := NewMap()
	m.Install(0x2000, 0x9000, true)

	if m.IsDirty(0x2000) || m.IsAccessed(0x2000) {
		t.Error("freshly installed entry should be clean and unaccessed")
	}
	m.SetDirty(0x2000, true)
	m.SetAccessed(0x2000, true)
	if !m.IsDirty(0x2000) || !m.IsAccessed(0x2000) {
		t.Error("bits should stick after being set")
	}
	m.SetDirty(0x2000, false)
	if m.IsDirty(0x2000) {
		t.Error("dirty bit should clear")
	}
}

func TestBitsOnMissingEntry(t *testing.T) {
	m := NewMap()
	if m.IsDirty(0x3000) || m.IsAccessed(0x3000) {
		t.Error("queries against an unmapped va should report false, not panic")
	}
	m.SetDirty(0x3000, true) // must not panic
}
