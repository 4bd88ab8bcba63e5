package pool

import "testing"

func TestAllocFreeRoundTrip(t *testing.T) {
	fl := NewFreeList(4, 0x1000)
	if fl.Available() != 4 {
		t.Fatalf("Available = %d, want 4", fl.Available())
	}
	var got []uintptr
	for i := 0; i < 4; i++ {
		kva, ok := fl.Alloc()
		if !ok {
			t.Fatalf("Alloc %d failed", i)
		}
		got = append(got, kva)
	}
	if fl.Available() != 0 {
		t.Fatalf("Available after draining = %d, want 0", fl.Available())
	}
	if _, ok := fl.Alloc(); ok {
		t.Error("Alloc on an exhausted pool should fail")
	}
	fl.Free(got[0])
	if fl.Available() != 1 {
		t.Fatalf("Available after one Free = %d, want 1", fl.Available())
	}
	kva, ok := fl.Alloc()
	if !ok || kva != got[0] {
		t.Errorf("Alloc after Free = (%#x, %v), want (%#x, true)", kva, ok, got[0])
	}
}

func TestFreeZeroesBuffer(t *testing.T) {
	fl := NewFreeList(1, 0x2000)
	kva, _ := fl.Alloc()
	buf := fl.Bytes(kva)
	buf[0] = 0xff
	fl.Free(kva)
	kva2, _ := fl.Alloc()
	if kva2 != kva {
		t.Fatalf("single-slot pool should reuse the same kva")
	}
	if fl.Bytes(kva2)[0] != 0 {
		t.Error("Free should zero the buffer before it is reused")
	}
}
