package compiler

import (
	"errors"
	"strings"
	"testing"
)

func TestTranslate(t *testing.T) {
	src := `
// entry point
main a b {
    mem counter 0;      // induction variable
    loop {
        counter + 1;
        counter == 10 -> { brk; }
    }
    ret counter;
}
`
	code, err := Translate(src, Options{})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	assertContains(t, code, "main:")
	assertContains(t, code, "    push rbp")
	assertContains(t, code, "    ; arg a at [rbp-8]")
	assertContains(t, code, "    ; arg b at [rbp-16]")
	assertContains(t, code, ".loop_start0:")
	assertContains(t, code, "    add rax, rbx")
	assertContains(t, code, "    mov [rbp-24], rax")
	assertContains(t, code, "    jmp .loop_end0")
	assertContains(t, code, ".loop_end0:")
	assertContains(t, code, "    leave")
	if strings.Contains(code, "induction") {
		t.Errorf("Comment text leaked into the output.\nCode:\n%s", code)
	}
}

func TestTranslate_MalformedInput(t *testing.T) {
	if _, err := Translate(`"abc`, Options{}); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("Translate(unterminated string) error = %v, want ErrMalformedInput", err)
	}
}

func TestTranslate_PureAcrossInvocations(t *testing.T) {
	src := `loop {brk;}1 -> {2;}`
	first, err := Translate(src, Options{})
	if err != nil {
		t.Fatalf("first Translate failed: %v", err)
	}
	second, err := Translate(src, Options{})
	if err != nil {
		t.Fatalf("second Translate failed: %v", err)
	}
	if first != second {
		t.Errorf("Translate is not deterministic:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
	// The label counter starts fresh per invocation.
	assertContains(t, second, ".loop_start0:")
}

func TestTranslate_StrictMode(t *testing.T) {
	if _, err := Translate("ref missing;", Options{Strict: true}); err == nil {
		t.Error("strict Translate accepted an unbound variable")
	}
	if _, err := Translate("ref missing;", Options{}); err != nil {
		t.Errorf("lenient Translate failed: %v", err)
	}
}

func BenchmarkTranslate(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("main {")
	for i := 0; i < 200; i++ {
		sb.WriteString("mem v 0;loop {v + 1;v == 100 -> {brk;}}")
	}
	sb.WriteString("ret v;}")
	src := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Translate(src, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
