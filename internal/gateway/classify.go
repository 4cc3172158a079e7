package gateway

import (
	"strings"
	"unicode"
)

// Classify assigns a category to one statement from its first significant
// keyword. Leading whitespace and parenthesized prefixes are tolerated;
// comments are assumed to have been stripped by Split.
func Classify(text string) (Statement, error) {
	keyword := leadingKeyword(text)
	if keyword == "" {
		return Statement{}, &ClassificationError{Text: text}
	}

	keyword = strings.ToUpper(keyword)
	return Statement{
		Text:        text,
		Category:    categoryForKeyword(keyword),
		ReturnsRows: rowReturningKeywords[keyword],
	}, nil
}

// ClassifyAll classifies every statement in the batch, failing on the
// first statement that cannot be categorized.
func ClassifyAll(texts []string) ([]Statement, error) {
	statements := make([]Statement, 0, len(texts))
	for _, text := range texts {
		statement, err := Classify(text)
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)
	}
	return statements, nil
}

func leadingKeyword(text string) string {
	start := 0
	for start < len(text) {
		c := rune(text[start])
		if unicode.IsSpace(c) || c == '(' {
			start++
			continue
		}
		break
	}

	end := start
	for end < len(text) {
		c := rune(text[end])
		if !unicode.IsLetter(c) && c != '_' {
			break
		}
		end++
	}
	return text[start:end]
}
