package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	// Literals
	IDENTIFIER TokenType = iota // variable / function / keyword name
	NUMBER                      // decimal digit run, no sign
	STRING                      // string literal "..."
	CHAR                        // char literal 'c'

	OPERATION // operator, 1-3 chars; see the dispatch table in lexer.go
	SYMBOL    // fallback for any unrecognized single character

	// Structural markers
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
)

var tokenNames = [...]string{
	IDENTIFIER: "IDENTIFIER",
	NUMBER:     "NUMBER",
	STRING:     "STRING",
	CHAR:       "CHAR",
	OPERATION:  "OPERATION",
	SYMBOL:     "SYMBOL",
	SEMICOLON:  "SEMICOLON",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	LBRACKET:   "LBRACKET",
	RBRACKET:   "RBRACKET",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by Lex.
//
// NUMBER tokens hold only ASCII digit runs: a negative value is spelled
// with a separate preceding OPERATION token, never inside the literal.
// IDENTIFIER tokens hold letter/underscore runs, except include paths
// ("<...>") which keep their angle brackets in the text.
type Token struct {
	Type TokenType
	Text string // the matched source text; operator spelling for OPERATION
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %q", t.Type, t.Text)
}
