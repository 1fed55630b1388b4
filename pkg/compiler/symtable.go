package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// FrameTable maps variable names to byte offsets relative to the frame
// base pointer. Offsets grow downward: each new name takes the next slot
// at stride = word size. Re-binding a known name reuses its slot; entries
// are never removed within a function.
type FrameTable struct {
	offsets map[string]int
	next    int // next free slot, decremented by word per new name
	word    int // slot stride in bytes (4 or 8)
}

func NewFrameTable(wordSize int) *FrameTable {
	return &FrameTable{
		offsets: make(map[string]int),
		word:    wordSize,
	}
}

// EnterFunction starts a fresh frame: the running offset returns to zero
// and every previous binding is discarded. Names never leak from one
// function into the next.
func (f *FrameTable) EnterFunction() {
	f.offsets = make(map[string]int)
	f.next = 0
}

// Bind allocates a slot for name, or returns the existing one.
// The second result reports whether the name was already bound.
func (f *FrameTable) Bind(name string) (int, bool) {
	if off, ok := f.offsets[name]; ok {
		return off, true
	}
	f.next -= f.word
	f.offsets[name] = f.next
	return f.next, false
}

// Lookup returns the offset bound to name and whether it was found.
func (f *FrameTable) Lookup(name string) (int, bool) {
	off, ok := f.offsets[name]
	return off, ok
}

// String returns a deterministically ordered dump of the frame layout.
func (f *FrameTable) String() string {
	var sb strings.Builder
	names := make([]string, 0, len(f.offsets))
	for name := range f.offsets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "  %-20s %d\n", name, f.offsets[name])
	}
	return sb.String()
}
