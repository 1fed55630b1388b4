package compiler

import (
	"errors"
	"fmt"
	"unicode"
)

// ErrMalformedInput marks lexer failures caused by input that ends in the
// middle of a construct: an unterminated string or char literal. Callers
// test for it with errors.Is.
var ErrMalformedInput = errors.New("malformed input")

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src []rune
	pos int // index of the next rune to consume
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src)}
}

// peek returns the rune at the current position without advancing, or 0
// at end of input.
func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

// peekAt returns the rune n positions ahead, or 0 past end of input.
func (l *Lexer) peekAt(n int) rune {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	return r
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

// scanIdent collects a full identifier: a run of letters and underscores.
// The first rune must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentRune(l.peek()) {
		l.advance()
	}
	return Token{Type: IDENTIFIER, Text: string(l.src[start:l.pos])}
}

// scanNumber collects a run of ASCII digits. Signs are separate OPERATION
// tokens, never part of the literal.
func (l *Lexer) scanNumber() Token {
	start := l.pos
	for l.pos < len(l.src) && l.peek() >= '0' && l.peek() <= '9' {
		l.advance()
	}
	return Token{Type: NUMBER, Text: string(l.src[start:l.pos])}
}

// scanString collects a string literal "...". A backslash suppresses a
// closing quote, and stays in the token text verbatim; the generator
// copies string data into the output as-is.
func (l *Lexer) scanString() (Token, error) {
	open := l.pos
	l.advance() // consume opening "
	start := l.pos
	for l.pos < len(l.src) {
		if l.peek() == '"' && l.src[l.pos-1] != '\\' {
			text := string(l.src[start:l.pos])
			l.advance() // consume closing "
			return Token{Type: STRING, Text: text}, nil
		}
		l.advance()
	}
	return Token{}, fmt.Errorf("%w: unterminated string literal at offset %d", ErrMalformedInput, open)
}

// scanChar collects a char literal 'c'. Both the character and the
// closing quote are required.
func (l *Lexer) scanChar() (Token, error) {
	open := l.pos
	l.advance() // consume opening '
	if l.pos >= len(l.src) {
		return Token{}, fmt.Errorf("%w: unterminated char literal at offset %d", ErrMalformedInput, open)
	}
	r := l.advance()
	if l.peek() != '\'' {
		return Token{}, fmt.Errorf("%w: unterminated char literal at offset %d", ErrMalformedInput, open)
	}
	l.advance() // consume closing '
	return Token{Type: CHAR, Text: string(r)}, nil
}

// scanIncludeOrLess disambiguates '<'. It first tries to consume an
// include path "<...>" through the next '>', emitting it as an IDENTIFIER
// with the brackets kept in the text. The attempt is abandoned — and the
// cursor backtracked to read '<' as a comparison operator instead — at
// end of input or at the first rune that cannot appear in a path
// (whitespace or a structural character).
func (l *Lexer) scanIncludeOrLess() Token {
	start := l.pos
	l.advance() // consume '<'
	for l.pos < len(l.src) {
		r := l.peek()
		if r == '>' {
			l.advance()
			return Token{Type: IDENTIFIER, Text: string(l.src[start:l.pos])}
		}
		if unicode.IsSpace(r) || isStructural(r) {
			break
		}
		l.advance()
	}
	// Not an include path: backtrack and emit the operator.
	l.pos = start + 1
	if l.peek() == '=' {
		l.advance()
		return Token{Type: OPERATION, Text: "<="}
	}
	return Token{Type: OPERATION, Text: "<"}
}

func isStructural(r rune) bool {
	switch r {
	case '(', ')', '{', '}', ';', '[', ']':
		return true
	}
	return false
}

// op emits a single-character OPERATION unless the next rune is one of
// the listed continuations, in which case the two merge.
func (l *Lexer) op(first rune, continuations ...rune) Token {
	next := l.peek()
	for _, c := range continuations {
		if next == c {
			l.advance()
			return Token{Type: OPERATION, Text: string(first) + string(next)}
		}
	}
	return Token{Type: OPERATION, Text: string(first)}
}

// Lex tokenizes src and returns the full token sequence. It is total
// over well-formed input; an unterminated string or char literal returns
// an error wrapping ErrMalformedInput rather than reading out of bounds.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token

	for l.pos < len(l.src) {
		ch := l.peek()
		switch {
		case ch == '(':
			l.advance()
			tokens = append(tokens, Token{Type: LPAREN, Text: "("})
		case ch == ')':
			l.advance()
			tokens = append(tokens, Token{Type: RPAREN, Text: ")"})
		case ch == '{':
			l.advance()
			tokens = append(tokens, Token{Type: LBRACE, Text: "{"})
		case ch == '}':
			l.advance()
			tokens = append(tokens, Token{Type: RBRACE, Text: "}"})
		case ch == ';':
			l.advance()
			tokens = append(tokens, Token{Type: SEMICOLON, Text: ";"})
		case ch == '[':
			l.advance()
			tokens = append(tokens, Token{Type: LBRACKET, Text: "["})
		case ch == ']':
			l.advance()
			tokens = append(tokens, Token{Type: RBRACKET, Text: "]"})

		case ch == '"':
			tok, err := l.scanString()
			if err != nil {
				return tokens, err
			}
			tokens = append(tokens, tok)
		case ch == '\'':
			tok, err := l.scanChar()
			if err != nil {
				return tokens, err
			}
			tokens = append(tokens, tok)

		case ch == '<':
			tokens = append(tokens, l.scanIncludeOrLess())
		case ch == '>':
			l.advance()
			tokens = append(tokens, l.op('>', '='))
		case ch == '-':
			l.advance()
			tokens = append(tokens, l.op('-', '=', '>'))
		case ch == '+':
			l.advance()
			tokens = append(tokens, l.op('+', '='))
		case ch == '*':
			l.advance()
			tokens = append(tokens, l.op('*', '='))
		case ch == '/':
			l.advance()
			tokens = append(tokens, l.op('/', '='))
		case ch == '=':
			l.advance()
			tokens = append(tokens, l.op('=', '='))
		case ch == '!':
			l.advance()
			// The three-character else arrow outranks != and bare !.
			if l.peek() == '-' && l.peekAt(1) == '>' {
				l.advance()
				l.advance()
				tokens = append(tokens, Token{Type: OPERATION, Text: "!->"})
			} else {
				tokens = append(tokens, l.op('!', '='))
			}
		case ch == '&':
			l.advance()
			tokens = append(tokens, l.op('&', '&'))
		case ch == '|':
			l.advance()
			tokens = append(tokens, l.op('|', '|'))
		case ch == ':':
			l.advance()
			if l.peek() == '=' {
				l.advance()
				tokens = append(tokens, Token{Type: OPERATION, Text: ":="})
			} else {
				tokens = append(tokens, Token{Type: SYMBOL, Text: ":"})
			}

		case unicode.IsSpace(ch):
			l.advance()

		case isIdentRune(ch):
			tokens = append(tokens, l.scanIdent())
		case ch >= '0' && ch <= '9':
			tokens = append(tokens, l.scanNumber())

		default:
			l.advance()
			tokens = append(tokens, Token{Type: SYMBOL, Text: string(ch)})
		}
	}

	return tokens, nil
}
