package search

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var separators = regexp.MustCompile(`[,\s]+`)

// Query is a normalized search request.
type Query struct {
	// Raw is the trimmed query as the user typed it.
	Raw string
	// Lower is Raw lower-cased, used for keyword containment checks.
	Lower string
	// Tokens are the lower-cased words of Raw longer than two characters.
	Tokens []string
}

// ParseQuery normalizes raw. It returns ErrEmptyQuery when nothing but
// whitespace was given.
func ParseQuery(raw string) (Query, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Query{}, ErrEmptyQuery
	}
	return Query{
		Raw:    trimmed,
		Lower:  strings.ToLower(trimmed),
		Tokens: Tokenize(trimmed),
	}, nil
}

// Tokenize splits query on commas and whitespace, lower-cases the parts
// and drops those of two characters or fewer.
func Tokenize(query string) []string {
	var tokens []string
	for _, part := range separators.Split(strings.ToLower(query), -1) {
		part = strings.TrimSpace(part)
		if utf8.RuneCountInString(part) > 2 {
			tokens = append(tokens, part)
		}
	}
	return tokens
}
