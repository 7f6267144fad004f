package bcio

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.svm")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadPrimitives(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0xAB, 0xCD, 0xEF, 0x12, 0x34, 0x56, 'h', 'i'}
	r, err := Open(writeTemp(t, data), 4) // tiny buffer to exercise refills
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	b, err := r.ReadByte()
	if err != nil || b != 0x01 {
		t.Fatalf("ReadByte = %v, %v", b, err)
	}
	u16, err := r.ReadU16()
	if err != nil || u16 != 0x0203 {
		t.Fatalf("ReadU16 = %x, %v", u16, err)
	}
	u32, err := r.ReadU32()
	if err != nil || u32 != 0xABCDEF12 {
		t.Fatalf("ReadU32 = %x, %v", u32, err)
	}
	raw, err := r.ReadBytes(3)
	if err != nil || string(raw) != "\x34\x56h" {
		t.Fatalf("ReadBytes = %x, %v", raw, err)
	}
	raw2, err := r.ReadBytes(1)
	if err != nil || raw2[0] != 'i' {
		t.Fatalf("ReadBytes tail = %x, %v", raw2, err)
	}
	if _, err := r.ReadByte(); err == nil {
		t.Fatal("expected EOF error past end of file")
	}
}

func TestSeekRoundTrip(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	r, err := Open(writeTemp(t, data), 3)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := r.ReadBytes(5); err != nil {
		t.Fatal(err)
	}
	off := r.GetOffset()
	first, err := r.ReadBytes(3)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.SetOffset(off); err != nil {
		t.Fatal(err)
	}
	if r.GetOffset() != off {
		t.Fatalf("GetOffset after SetOffset(%d) = %d", off, r.GetOffset())
	}
	second, err := r.ReadBytes(3)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("re-reading the same range differs: %x vs %x", first, second)
	}
}

func TestSetOffsetNoOp(t *testing.T) {
	data := []byte{9, 8, 7, 6, 5}
	r, err := Open(writeTemp(t, data), DefaultBufferSize)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.SetOffset(r.GetOffset()); err != nil {
		t.Fatal(err)
	}
	b, err := r.ReadByte()
	if err != nil || b != 9 {
		t.Fatalf("ReadByte after no-op seek = %v, %v", b, err)
	}
}
