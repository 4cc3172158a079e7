package gateway

import "strings"

// Split breaks raw SQL text into trimmed, non-empty statements in source
// order. Semicolons inside quoted literals do not terminate a statement,
// and line comments (-- and #) as well as block comments are dropped.
// This is deliberately not a full SQL tokenizer; dollar-quoted bodies and
// other dialect extensions are out of scope.
func Split(text string) []string {
	var statements []string
	var current strings.Builder

	flush := func() {
		statement := strings.TrimSpace(current.String())
		current.Reset()
		if statement != "" {
			statements = append(statements, statement)
		}
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = copyQuoted(&current, runes, i, c)
		case c == '-' && peek(runes, i+1) == '-':
			i = skipLineComment(runes, i)
			current.WriteRune('\n')
		case c == '#':
			i = skipLineComment(runes, i)
			current.WriteRune('\n')
		case c == '/' && peek(runes, i+1) == '*':
			i = skipBlockComment(runes, i)
			current.WriteRune(' ')
		case c == ';':
			flush()
		default:
			current.WriteRune(c)
		}
	}
	flush()

	return statements
}

// copyQuoted copies a quoted literal starting at runes[start] into out and
// returns the index of the closing quote. A doubled quote character inside
// the literal is an escaped quote, and a backslash escapes the next rune.
func copyQuoted(out *strings.Builder, runes []rune, start int, quote rune) int {
	out.WriteRune(quote)
	i := start + 1
	for i < len(runes) {
		c := runes[i]
		out.WriteRune(c)
		switch {
		case c == '\\' && i+1 < len(runes):
			out.WriteRune(runes[i+1])
			i += 2
			continue
		case c == quote && peek(runes, i+1) == quote:
			out.WriteRune(quote)
			i += 2
			continue
		case c == quote:
			return i
		}
		i++
	}
	// unterminated literal: consume to end of input
	return len(runes)
}

func skipLineComment(runes []rune, start int) int {
	i := start
	for i < len(runes) && runes[i] != '\n' {
		i++
	}
	return i
}

func skipBlockComment(runes []rune, start int) int {
	i := start + 2
	for i < len(runes) {
		if runes[i] == '*' && peek(runes, i+1) == '/' {
			return i + 1
		}
		i++
	}
	return len(runes) - 1
}

func peek(runes []rune, i int) rune {
	if i < 0 || i >= len(runes) {
		return 0
	}
	return runes[i]
}
