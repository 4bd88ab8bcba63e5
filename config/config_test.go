package config

import "testing"

func TestRoundDownPage(t *testing.T) {
	cases := []struct{ va, want uintptr }{
		{0, 0},
		{1, 0},
		{PageSize - 1, 0},
		{PageSize, PageSize},
		{PageSize + 17, PageSize},
		{UserStack - 1, RoundDownPage(UserStack - 1)},
	}
	for _, c := range cases {
		if got := RoundDownPage(c.va); got != c.want {
			t.Errorf("RoundDownPage(%#x) = %#x, want %#x", c.va, got, c.want)
		}
	}
}

func TestPageOffset(t *testing.T) {
	if got := PageOffset(PageSize + 42); got != 42 {
		t.Errorf("PageOffset = %d, want 42", got)
	}
}

func TestIsPageAligned(t *testing.T) {
	if !IsPageAligned(2 * PageSize) {
		t.Error("2*PageSize should be page-aligned")
	}
	if IsPageAligned(2*PageSize + 1) {
		t.Error("2*PageSize+1 should not be page-aligned")
	}
}

func TestSectorsPerPage(t *testing.T) {
	if SectorsPerPage*SectorSize != PageSize {
		t.Errorf("SectorsPerPage*SectorSize = %d, want PageSize %d", SectorsPerPage*SectorSize, PageSize)
	}
}
