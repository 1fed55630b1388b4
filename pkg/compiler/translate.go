package compiler

// Translate runs the full pipeline over one source unit:
//
//	source text → Clean → Lex → Generate → assembly text
//
// It is a one-shot pure function; all generator state is created for the
// call and discarded with it. A failure anywhere aborts the whole
// translation — there is no partial output.
func Translate(src string, opts Options) (string, error) {
	tokens, err := Lex(Clean(src))
	if err != nil {
		return "", err
	}
	return Generate(tokens, opts)
}
