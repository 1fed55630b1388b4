package compiler

import "testing"

func TestFrameTable_MonotonicOffsets(t *testing.T) {
	f := NewFrameTable(8)
	f.EnterFunction()

	names := []string{"a", "b", "c"}
	prev := 0
	for i, name := range names {
		off, existed := f.Bind(name)
		if existed {
			t.Errorf("Bind(%q) reported an existing slot on first bind", name)
		}
		if off != -(i+1)*8 {
			t.Errorf("Bind(%q) = %d, want %d", name, off, -(i+1)*8)
		}
		if off >= prev {
			t.Errorf("Bind(%q) = %d, not strictly below previous offset %d", name, off, prev)
		}
		prev = off
	}
}

func TestFrameTable_RebindReusesSlot(t *testing.T) {
	f := NewFrameTable(4)
	f.EnterFunction()

	first, _ := f.Bind("x")
	second, existed := f.Bind("x")
	if !existed {
		t.Error("second Bind(\"x\") did not report an existing slot")
	}
	if first != second {
		t.Errorf("rebind moved x from %d to %d", first, second)
	}

	next, _ := f.Bind("y")
	if next != first-4 {
		t.Errorf("Bind(\"y\") = %d, want %d (rebind must not consume a slot)", next, first-4)
	}
}

func TestFrameTable_FunctionReset(t *testing.T) {
	f := NewFrameTable(8)
	f.EnterFunction()
	f.Bind("stale")

	f.EnterFunction()
	if _, ok := f.Lookup("stale"); ok {
		t.Error("name from previous function still resolvable after EnterFunction")
	}
	off, _ := f.Bind("fresh")
	if off != -8 {
		t.Errorf("first slot of new function = %d, want -8", off)
	}
}

func TestFrameTable_WordStride(t *testing.T) {
	for _, word := range []int{4, 8} {
		f := NewFrameTable(word)
		f.EnterFunction()
		a, _ := f.Bind("a")
		b, _ := f.Bind("b")
		if a != -word || b != -2*word {
			t.Errorf("word %d: offsets (%d, %d), want (%d, %d)", word, a, b, -word, -2*word)
		}
	}
}
