package objmodel

import "testing"

func TestLinkAssignmentProtocol(t *testing.T) {
	a := NewScalar(TagI32, EncodeI32(1))
	b := NewScalar(TagI32, EncodeI32(2))

	var l Link
	l.Set(a)
	if a.LinkCount != 1 {
		t.Fatalf("a.LinkCount = %d, want 1", a.LinkCount)
	}

	l.Set(a) // same object twice: net +1 only
	if a.LinkCount != 1 {
		t.Fatalf("after repeat assign, a.LinkCount = %d, want 1", a.LinkCount)
	}

	l.Set(b) // replace: a drops, b gains
	if a.LinkCount != 0 {
		t.Fatalf("a.LinkCount after replace = %d, want 0", a.LinkCount)
	}
	if b.LinkCount != 1 {
		t.Fatalf("b.LinkCount after replace = %d, want 1", b.LinkCount)
	}

	l.Clear()
	if b.LinkCount != 0 {
		t.Fatalf("b.LinkCount after clear = %d, want 0", b.LinkCount)
	}

	var null Link
	null.Set(nil) // null-to-null is a no-op
	if null.Get() != nil {
		t.Fatal("null Link should remain nil")
	}
}

func TestStackPushPopLinkCounts(t *testing.T) {
	obj := NewScalar(TagString, []byte("hi"))
	var s Stack
	s.Push(obj)
	s.Push(obj)
	if obj.LinkCount != 2 {
		t.Fatalf("LinkCount after two pushes = %d, want 2", obj.LinkCount)
	}
	if s.Pop() != obj || obj.LinkCount != 1 {
		t.Fatalf("LinkCount after one pop = %d, want 1", obj.LinkCount)
	}
	s.Pop()
	if obj.LinkCount != 0 {
		t.Fatalf("LinkCount after both pops = %d, want 0", obj.LinkCount)
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		name string
		obj  *Object
		want bool
	}{
		{"zero i32", NewScalar(TagI32, EncodeI32(0)), false},
		{"nonzero i32", NewScalar(TagI32, EncodeI32(1)), true},
		{"empty array", NewArray(0), false},
		{"nonempty array", NewArray(3), true},
		{"empty string", NewScalar(TagString, nil), false},
		{"nonzero byte string", NewScalar(TagString, []byte{0, 0, 1}), true},
	}
	for _, c := range cases {
		if got := Truthy(c.obj); got != c.want {
			t.Errorf("%s: Truthy = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestMaxTag(t *testing.T) {
	if MaxTag(TagI32, TagUSize) != TagUSize {
		t.Fatal("USIZE should outrank I32")
	}
	if MaxTag(TagUSize, TagString) != TagString {
		t.Fatal("STRING should outrank USIZE")
	}
	if MaxTag(TagString, TagI32) != TagString {
		t.Fatal("STRING should outrank I32")
	}
}

func TestEqual(t *testing.T) {
	a := NewScalar(TagI32, EncodeI32(5))
	b := NewScalar(TagI32, EncodeI32(5))
	c := NewScalar(TagUSize, EncodeU32(5))
	if !a.Equal(b) {
		t.Fatal("equal payload+tag should compare equal")
	}
	if a.Equal(c) {
		t.Fatal("same bytes, different tag should not compare equal")
	}
}
