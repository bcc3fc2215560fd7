package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Tokenize splits s on anything that is not a letter or digit and case-folds
// each token.
func Tokenize(s string) []string {
	folded := cases.Fold().String(s)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Query is an analyzed phrase-prefix query.
type Query struct {
	tokens []string
}

// ParseQuery analyzes raw query text.
func ParseQuery(raw string) Query {
	return Query{tokens: Tokenize(raw)}
}

// Empty reports whether the query has no searchable tokens.
func (q Query) Empty() bool {
	return len(q.tokens) == 0
}

// Matches reports whether the query tokens occur consecutively in text, with
// the final query token matching a prefix of its counterpart.
func (q Query) Matches(text string) bool {
	if q.Empty() {
		return false
	}
	field := Tokenize(text)
	last := len(q.tokens) - 1
	for start := 0; start+last < len(field); start++ {
		if matchAt(field[start:], q.tokens, last) {
			return true
		}
	}
	return false
}

func matchAt(field, query []string, last int) bool {
	for j := 0; j < last; j++ {
		if field[j] != query[j] {
			return false
		}
	}
	return strings.HasPrefix(field[last], query[last])
}
