package filebacked

import (
	"os"
	"path/filepath"
	"testing"

	"pintosvm/errno"
)

func tempFile(t *testing.T, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backing")
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenReopenIndependent(t *testing.T) {
	path := tempFile(t, []byte("hello world"))
	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	g, err := f.Reopen()
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 5)
	if n, err := g.ReadAt(buf, 0); err != nil || n != 5 {
		t.Fatalf("ReadAt on reopened handle after original closed: n=%d err=%v", n, err)
	}
	if string(buf) != "hello" {
		t.Errorf("ReadAt = %q, want %q", buf, "hello")
	}
}

func TestReadPageZeroFills(t *testing.T) {
	path := tempFile(t, []byte("abc"))
	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	page := make([]byte, 8)
	for i := range page {
		page[i] = 0xff
	}
	if e := ReadPage(f, 0, 3, page); e != errno.Ok {
		t.Fatalf("ReadPage: %v", e)
	}
	want := []byte{'a', 'b', 'c', 0, 0, 0, 0, 0}
	for i := range want {
		if page[i] != want[i] {
			t.Fatalf("page = %v, want %v", page, want)
		}
	}
}

func TestWritePageRoundTrip(t *testing.T) {
	path := tempFile(t, []byte("0123456789"))
	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	page := []byte("XYZ")
	if e := WritePage(f, 2, 3, page); e != errno.Ok {
		t.Fatalf("WritePage: %v", e)
	}
	got := make([]byte, 10)
	f.ReadAt(got, 0)
	if string(got) != "01XYZ56789" {
		t.Errorf("file contents = %q, want %q", got, "01XYZ56789")
	}
}

func TestWritePageNoopOnZeroReadBytes(t *testing.T) {
	path := tempFile(t, []byte("unchanged"))
	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if e := WritePage(f, 0, 0, []byte{}); e != errno.Ok {
		t.Fatalf("WritePage: %v", e)
	}
	got := make([]byte, 9)
	f.ReadAt(got, 0)
	if string(got) != "unchanged" {
		t.Errorf("file should be unchanged, got %q", got)
	}
}
