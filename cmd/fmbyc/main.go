package main

import (
	"flag"
	"fmt"
	"os"

	"fmby/pkg/compiler"
)

func main() {
	compat := flag.Bool("compat", false, "use the 4-byte word size instead of 8")
	strict := flag.Bool("strict", false, "fail on unbound variables and missing operands")
	showTokens := flag.Bool("tokens", false, "dump the token stream to stderr")
	outPath := flag.String("o", "", "output assembly file path (default: stdout)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: fmbyc [flags] <source file>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	inPath := flag.Arg(0)

	source, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", inPath, err)
		os.Exit(1)
	}

	wordSize := 8
	if *compat {
		wordSize = 4
	}

	if *showTokens {
		tokens, err := compiler.Lex(compiler.Clean(string(source)))
		if err != nil {
			fmt.Fprintf(os.Stderr, "lex error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Tokens (%d)\n", len(tokens))
		for _, tok := range tokens {
			fmt.Fprintln(os.Stderr, " ", tok)
		}
	}

	asm, err := compiler.Translate(string(source), compiler.Options{
		WordSize: wordSize,
		Strict:   *strict,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "translation failed: %v\n", err)
		os.Exit(1)
	}

	if *outPath == "" {
		fmt.Print(asm)
		return
	}
	if err := os.WriteFile(*outPath, []byte(asm), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write output file %q: %v\n", *outPath, err)
		os.Exit(1)
	}
}
