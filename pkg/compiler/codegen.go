package compiler

import (
	"fmt"
	"strings"
)

// Options configure one translation run.
type Options struct {
	// WordSize selects the operand width: 4 or 8 bytes. It changes the
	// register spellings and the per-slot frame stride uniformly, not the
	// instruction selection. Zero means 8.
	WordSize int
	// Strict surfaces unbound variable reads and missing mandatory
	// operands as errors instead of silently emitting nothing.
	Strict bool
}

type scopeKind int

const (
	scopeLoop scopeKind = iota
	scopeCond
)

// scope is a pending control-flow construct awaiting its closing brace.
// A single stack holds both kinds so a closing brace resolves the
// innermost open construct regardless of kind.
type scope struct {
	kind  scopeKind
	start string // loop entry label; empty for conditionals
	end   string
}

// valueKind notes what occupies the accumulator register after the most
// recent emission. The then arrow branches on it; strict mode rejects an
// arrow emitted with nothing in the accumulator.
type valueKind int

const (
	valNone  valueKind = iota
	valScalar          // immediate, variable load, or arithmetic result
	valBool            // 0/1 left by a comparison
)

// CodeGen walks a flat token sequence and emits x86-64 assembly text in
// one forward pass, with no syntax tree in between. The cursor advances
// by one or more tokens per construct and reads one token behind itself
// to resolve binary operators.
type CodeGen struct {
	out    strings.Builder
	toks   []Token
	pos    int
	word   int
	strict bool

	frame     *FrameTable
	scopes    []scope
	nextLabel int // shared counter for loop/if/string labels, never reset
	current   valueKind
}

func newCodeGen(tokens []Token, opts Options) *CodeGen {
	return &CodeGen{
		toks:   tokens,
		word:   opts.WordSize,
		strict: opts.Strict,
		frame:  NewFrameTable(opts.WordSize),
	}
}

// Register spellings for the selected word size. regA is the accumulator
// that carries every expression result, regB the secondary operand.
func (cg *CodeGen) regA() string {
	if cg.word == 4 {
		return "eax"
	}
	return "rax"
}

func (cg *CodeGen) regB() string {
	if cg.word == 4 {
		return "ebx"
	}
	return "rbx"
}

func (cg *CodeGen) regBase() string {
	if cg.word == 4 {
		return "ebp"
	}
	return "rbp"
}

func (cg *CodeGen) regStack() string {
	if cg.word == 4 {
		return "esp"
	}
	return "rsp"
}

// signExtend widens the accumulator into the high half before idiv.
func (cg *CodeGen) signExtend() string {
	if cg.word == 4 {
		return "cdq"
	}
	return "cqo"
}

// slot formats a frame-relative memory operand, e.g. [rbp-8].
func (cg *CodeGen) slot(off int) string {
	return fmt.Sprintf("[%s%d]", cg.regBase(), off)
}

func (cg *CodeGen) line(format string, args ...any) {
	fmt.Fprintf(&cg.out, format+"\n", args...)
}

// newLabel returns a fresh ".<prefix><N>" label from the shared counter.
func (cg *CodeGen) newLabel(prefix string) string {
	l := fmt.Sprintf(".%s%d", prefix, cg.nextLabel)
	cg.nextLabel++
	return l
}

// newLoopLabels returns the start/end pair for one loop; both share the
// same counter value, mirroring the .loop_startN / .loop_endN convention.
func (cg *CodeGen) newLoopLabels() (string, string) {
	n := cg.nextLabel
	cg.nextLabel++
	return fmt.Sprintf(".loop_start%d", n), fmt.Sprintf(".loop_end%d", n)
}

// tok returns the token at index i, if in range.
func (cg *CodeGen) tok(i int) (Token, bool) {
	if i < 0 || i >= len(cg.toks) {
		return Token{}, false
	}
	return cg.toks[i], true
}

func (cg *CodeGen) errAt(format string, args ...any) error {
	return fmt.Errorf(format+" at token %d", append(args, cg.pos)...)
}

// Generate consumes the full token sequence and returns the assembly
// text. All state is local to the call; nothing persists across runs.
func Generate(tokens []Token, opts Options) (string, error) {
	if opts.WordSize == 0 {
		opts.WordSize = 8
	}
	if opts.WordSize != 4 && opts.WordSize != 8 {
		return "", fmt.Errorf("unsupported word size %d (want 4 or 8)", opts.WordSize)
	}

	cg := newCodeGen(tokens, opts)
	for cg.pos < len(cg.toks) {
		if err := cg.step(); err != nil {
			return "", err
		}
	}
	return cg.out.String(), nil
}

// step handles the token under the cursor and advances it.
func (cg *CodeGen) step() error {
	tok := cg.toks[cg.pos]
	switch tok.Type {
	case IDENTIFIER:
		return cg.genIdentifier(tok.Text)
	case OPERATION:
		return cg.genOperation(tok.Text)
	case RBRACE:
		cg.genBraceClose()
		cg.pos++
	case NUMBER:
		// A number adjacent to a binary operator is that operator's
		// operand; the operator loads it itself. Only a freestanding
		// number moves an immediate into the accumulator.
		if next, ok := cg.tok(cg.pos + 1); !ok || next.Type != OPERATION || !isBinaryOp(next.Text) {
			cg.line("    mov %s, %s", cg.regA(), tok.Text)
			cg.current = valScalar
		}
		cg.pos++
	case STRING:
		// Static null-terminated data under a fresh label. This is a
		// declaration only; nothing references the label automatically.
		label := cg.newLabel("str")
		cg.line("%s: db '%s', 0", label, tok.Text)
		cg.pos++
	default:
		cg.pos++
	}
	return nil
}

func isBinaryOp(op string) bool {
	switch op {
	case "+", "-", "*", "/", "==", "!=", "<", ">", "<=", ">=":
		return true
	}
	return false
}

// genIdentifier dispatches the reserved names before the generic path,
// which recognizes function definitions.
func (cg *CodeGen) genIdentifier(name string) error {
	switch name {
	case "ret":
		return cg.genRet()
	case "mem":
		return cg.genMem()
	case "ref":
		return cg.genRef()
	case "loop":
		start, end := cg.newLoopLabels()
		cg.scopes = append(cg.scopes, scope{kind: scopeLoop, start: start, end: end})
		cg.line("%s:", start)
		cg.pos++
		return nil
	case "brk":
		// Jump to the innermost open loop's end; a brk outside any loop
		// emits nothing.
		for i := len(cg.scopes) - 1; i >= 0; i-- {
			if cg.scopes[i].kind == scopeLoop {
				cg.line("    jmp %s", cg.scopes[i].end)
				break
			}
		}
		cg.pos++
		return nil
	case "jump":
		if next, ok := cg.tok(cg.pos + 1); ok && next.Type == IDENTIFIER {
			cg.line("    jmp %s", next.Text)
			cg.pos += 2
			return nil
		}
		if cg.strict {
			return cg.errAt("jump requires a label name")
		}
		cg.pos++
		return nil
	case "imp":
		if next, ok := cg.tok(cg.pos + 1); ok && next.Type == IDENTIFIER {
			cg.line("    ; import %s", next.Text)
			cg.pos += 2
			return nil
		}
		if cg.strict {
			return cg.errAt("imp requires an import path")
		}
		cg.pos++
		return nil
	case "asm":
		cg.genAsmEscape()
		return nil
	}
	return cg.genFunctionOrBare(name)
}

// genRet loads the return value, if one follows, then emits the
// epilogue. The follow-on token is optional.
func (cg *CodeGen) genRet() error {
	skip := 1
	if next, ok := cg.tok(cg.pos + 1); ok {
		switch next.Type {
		case NUMBER:
			cg.line("    mov %s, %s", cg.regA(), next.Text)
			skip = 2
		case IDENTIFIER:
			if off, ok := cg.frame.Lookup(next.Text); ok {
				cg.line("    mov %s, %s", cg.regA(), cg.slot(off))
			} else if cg.strict {
				return cg.errAt("ret reads unbound variable %q", next.Text)
			}
			skip = 2
		}
	}
	cg.line("    leave")
	cg.line("    ret")
	cg.current = valNone
	cg.pos += skip
	return nil
}

// genMem binds a frame slot for the named variable and, when a literal
// follows, stores it through the accumulator as scratch.
func (cg *CodeGen) genMem() error {
	next, ok := cg.tok(cg.pos + 1)
	if !ok || next.Type != IDENTIFIER {
		if cg.strict {
			return cg.errAt("mem requires a variable name")
		}
		cg.pos++
		return nil
	}
	off, _ := cg.frame.Bind(next.Text)
	if lit, ok := cg.tok(cg.pos + 2); ok && lit.Type == NUMBER {
		cg.line("    mov %s, %s", cg.regA(), lit.Text)
		cg.line("    mov %s, %s", cg.slot(off), cg.regA())
		cg.current = valScalar
		cg.pos += 3
		return nil
	}
	cg.pos += 2
	return nil
}

// genRef loads the named variable's slot into the accumulator. The
// reference is symbolic, resolved through the frame table at generation
// time; no pointer is materialized.
func (cg *CodeGen) genRef() error {
	next, ok := cg.tok(cg.pos + 1)
	if !ok || next.Type != IDENTIFIER {
		if cg.strict {
			return cg.errAt("ref requires a variable name")
		}
		cg.pos++
		return nil
	}
	if off, ok := cg.frame.Lookup(next.Text); ok {
		cg.line("    mov %s, %s", cg.regA(), cg.slot(off))
		cg.current = valScalar
	} else if cg.strict {
		return cg.errAt("ref reads unbound variable %q", next.Text)
	}
	cg.pos += 2
	return nil
}

// genAsmEscape copies identifier and number tokens verbatim into the
// output up to the next semicolon. Structural and operator tokens inside
// the escape are skipped silently.
func (cg *CodeGen) genAsmEscape() {
	j := cg.pos + 1
	for ; j < len(cg.toks); j++ {
		tok := cg.toks[j]
		if tok.Type == SEMICOLON {
			break
		}
		if tok.Type == IDENTIFIER || tok.Type == NUMBER {
			cg.out.WriteString(tok.Text)
			cg.out.WriteString(" ")
		}
	}
	cg.out.WriteString("\n")
	cg.pos = j + 1
}

// genFunctionOrBare handles any non-reserved identifier. A contiguous
// run of identifiers followed by an opening brace is a function
// definition; anything else is a bare name and emits nothing.
func (cg *CodeGen) genFunctionOrBare(name string) error {
	var params []string
	j := cg.pos + 1
	for {
		tok, ok := cg.tok(j)
		if !ok || tok.Type != IDENTIFIER {
			break
		}
		params = append(params, tok.Text)
		j++
	}
	if tok, ok := cg.tok(j); ok && tok.Type == LBRACE {
		cg.line("%s:", name)
		cg.line("    push %s", cg.regBase())
		cg.line("    mov %s, %s", cg.regBase(), cg.regStack())
		cg.frame.EnterFunction()
		for _, p := range params {
			off, _ := cg.frame.Bind(p)
			cg.line("    ; arg %s at %s", p, cg.slot(off))
		}
		cg.current = valNone
		cg.pos = j + 1
		return nil
	}
	cg.pos++
	return nil
}

var setInstr = map[string]string{
	"==": "sete",
	"!=": "setne",
	"<":  "setl",
	">":  "setg",
	"<=": "setle",
	">=": "setge",
}

func (cg *CodeGen) genOperation(op string) error {
	switch op {
	case "+", "-", "*", "/":
		return cg.genArith(op)
	case "==", "!=", "<", ">", "<=", ">=":
		return cg.genCompare(op)
	case "->":
		return cg.genThenArrow()
	case "!->":
		cg.genElseArrow()
		return nil
	}
	// Remaining operators are reserved words without semantics yet.
	cg.pos++
	return nil
}

// loadOperand moves a binary operand into reg: a bound variable from its
// frame slot, a number as an immediate. Anything else loads nothing; in
// strict mode an unbound variable is an error.
func (cg *CodeGen) loadOperand(tok Token, reg string) error {
	switch tok.Type {
	case IDENTIFIER:
		if off, ok := cg.frame.Lookup(tok.Text); ok {
			cg.line("    mov %s, %s", reg, cg.slot(off))
		} else if cg.strict {
			return cg.errAt("operand reads unbound variable %q", tok.Text)
		}
	case NUMBER:
		cg.line("    mov %s, %s", reg, tok.Text)
	}
	return nil
}

// genArith emits lhs OP rhs with accumulate-into-left semantics: the
// result lands in the accumulator and, when the left operand is a bound
// variable, is stored back into its slot. There is no third destination.
func (cg *CodeGen) genArith(op string) error {
	lhs, okL := cg.tok(cg.pos - 1)
	rhs, okR := cg.tok(cg.pos + 1)
	if !okL || !okR {
		if cg.strict {
			return cg.errAt("operator %q missing an operand", op)
		}
		cg.pos++
		return nil
	}

	var lhsOff int
	lhsBound := false
	if lhs.Type == IDENTIFIER {
		lhsOff, lhsBound = cg.frame.Lookup(lhs.Text)
	}

	if err := cg.loadOperand(lhs, cg.regA()); err != nil {
		return err
	}
	if err := cg.loadOperand(rhs, cg.regB()); err != nil {
		return err
	}

	switch op {
	case "+":
		cg.line("    add %s, %s", cg.regA(), cg.regB())
	case "-":
		cg.line("    sub %s, %s", cg.regA(), cg.regB())
	case "*":
		cg.line("    imul %s, %s", cg.regA(), cg.regB())
	case "/":
		cg.line("    %s", cg.signExtend())
		cg.line("    idiv %s", cg.regB())
	}

	if lhsBound {
		cg.line("    mov %s, %s", cg.slot(lhsOff), cg.regA())
	}
	cg.current = valScalar
	cg.pos += 2
	return nil
}

// genCompare emits lhs OP rhs leaving a 0/1 boolean in the accumulator.
// Nothing is written back to either operand.
func (cg *CodeGen) genCompare(op string) error {
	lhs, okL := cg.tok(cg.pos - 1)
	rhs, okR := cg.tok(cg.pos + 1)
	if !okL || !okR {
		if cg.strict {
			return cg.errAt("operator %q missing an operand", op)
		}
		cg.pos++
		return nil
	}

	if err := cg.loadOperand(lhs, cg.regA()); err != nil {
		return err
	}
	if err := cg.loadOperand(rhs, cg.regB()); err != nil {
		return err
	}

	cg.line("    cmp %s, %s", cg.regA(), cg.regB())
	cg.line("    %s al", setInstr[op])
	cg.line("    movzx %s, al", cg.regA())
	cg.current = valBool
	cg.pos += 2
	return nil
}

// genThenArrow opens a conditional scope. The condition has already left
// its boolean in the accumulator; the arrow only emits the branch.
func (cg *CodeGen) genThenArrow() error {
	if cg.strict && cg.current == valNone {
		return cg.errAt("then arrow with no condition value")
	}
	end := cg.newLabel("if_end")
	cg.scopes = append(cg.scopes, scope{kind: scopeCond, end: end})
	cg.line("    cmp %s, 0", cg.regA())
	cg.line("    je %s", end)
	cg.pos++
	return nil
}

// genElseArrow resolves the conditional scope on top of the stack: a
// jump over the else body for control falling out of the then branch,
// then the end label so the condition's false branch lands at the else
// body. When the innermost scope is not a conditional — no open
// conditional at all, or a loop opened since — the arrow is a silent
// no-op; it never reaches past a loop to resolve an outer conditional.
// An "else if" needs nothing extra here: the following condition and
// then-arrow are handled by the ordinary paths and open a fresh scope.
func (cg *CodeGen) genElseArrow() {
	if n := len(cg.scopes); n > 0 && cg.scopes[n-1].kind == scopeCond {
		end := cg.scopes[n-1].end
		cg.scopes = cg.scopes[:n-1]
		cg.line("    jmp %s", end)
		cg.line("%s:", end)
		cg.current = valNone
	}
	cg.pos++
}

// genBraceClose resolves exactly one innermost open scope, loop or
// conditional. When the innermost scope is a conditional and the brace
// is immediately followed by the else arrow it emits nothing: the arrow
// takes over resolving the conditional so the skip jump lands before
// the end label. A loop scope always resolves here — an else arrow
// after a loop body has no conditional to claim. An unmatched brace
// emits nothing at all.
func (cg *CodeGen) genBraceClose() {
	if len(cg.scopes) == 0 {
		return
	}
	top := cg.scopes[len(cg.scopes)-1]
	if top.kind == scopeCond {
		if next, ok := cg.tok(cg.pos + 1); ok && next.Type == OPERATION && next.Text == "!->" {
			return
		}
	}
	cg.scopes = cg.scopes[:len(cg.scopes)-1]
	cg.line("%s:", top.end)
}
