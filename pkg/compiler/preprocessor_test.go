package compiler

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{
			name:     "Line Comment Stripped",
			src:      "mem x 5; // the answer\n",
			expected: "mem x 5;",
		},
		{
			name:     "Comment Marker Inside String Survives",
			src:      `"http://example";`,
			expected: `"http://example";`,
		},
		{
			name:     "Whitespace Runs Collapse",
			src:      "mem    x \t 5;",
			expected: "mem x 5;",
		},
		{
			name:     "Spacing Around Structure Removed",
			src:      "f a b { mem x 5; ret x; }",
			expected: "f a b {mem x 5;ret x;}",
		},
		{
			name:     "Lines Join Without Separator",
			src:      "loop {\nbrk;\n}",
			expected: "loop {brk;}",
		},
		{
			name:     "Close Paren Spacing Removed",
			src:      "( a )",
			expected: "( a)",
		},
		{
			name:     "Empty Input",
			src:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.src)
			if got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.src, got, tt.expected)
			}
		})
	}
}
