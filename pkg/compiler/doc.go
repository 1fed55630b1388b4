// Package compiler translates FMBY source into x86-64 assembly text.
//
// Pipeline: FMBY source → Clean → Lex → Generate → x86-64 assembly text
//
// The generator is deliberately AST-free: it walks the flat token
// sequence in a single forward pass, resolving nesting with a scope
// stack and variable storage with a frame offset table.
package compiler
