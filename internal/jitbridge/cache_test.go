package jitbridge

import "testing"

func TestDiskCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	program := []byte("fake bytecode content")

	c1, err := OpenDiskCache(dir, program)
	if err != nil {
		t.Fatal(err)
	}
	c1.MarkPromoted(3)
	c1.MarkPromoted(3) // idempotent
	c1.MarkPromoted(7)

	c2, err := OpenDiskCache(dir, program)
	if err != nil {
		t.Fatal(err)
	}
	warm := c2.WarmFunctions()
	if len(warm) != 2 {
		t.Fatalf("WarmFunctions = %v, want 2 entries", warm)
	}

	other, err := OpenDiskCache(dir, []byte("different program"))
	if err != nil {
		t.Fatal(err)
	}
	if len(other.WarmFunctions()) != 0 {
		t.Fatal("different program content must not share cache entries")
	}
}
