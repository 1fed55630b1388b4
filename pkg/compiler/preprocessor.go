package compiler

import "strings"

// Clean strips line comments and collapses the source into a single dense
// string before lexing. It removes everything from "//" to end-of-line
// (unless the "//" sits inside a string or char literal), joins the lines,
// squeezes whitespace runs to a single space, and drops the incidental
// spacing the lexer never wants to see: after ';' and '{', before '}' and
// ')'.
//
// Clean is total: any input produces some output.
func Clean(src string) string {
	lines := strings.Split(src, "\n")

	var joined strings.Builder
	for _, line := range lines {
		joined.WriteString(stripLineComment(line))
	}

	collapsed := collapseWhitespace(joined.String())

	collapsed = strings.ReplaceAll(collapsed, "; ", ";")
	collapsed = strings.ReplaceAll(collapsed, "{ ", "{")
	collapsed = strings.ReplaceAll(collapsed, " }", "}")
	collapsed = strings.ReplaceAll(collapsed, " )", ")")
	return collapsed
}

// stripLineComment returns line up to (not including) the first "//" that
// is outside a string or char literal.
func stripLineComment(line string) string {
	inString := false
	inChar := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inString:
			if c == '\\' {
				i++ // escaped character cannot close the literal
			} else if c == '"' {
				inString = false
			}
		case inChar:
			if c == '\'' {
				inChar = false
			}
		case c == '"':
			inString = true
		case c == '\'':
			inChar = true
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return line[:i]
		}
	}
	return line
}

// collapseWhitespace squeezes every run of two or more whitespace
// characters down to a single space. Single spaces pass through; tabs and
// other lone whitespace become a space as well.
func collapseWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inRun := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\v' || r == '\f' {
			if !inRun {
				sb.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		sb.WriteRune(r)
	}
	return sb.String()
}
