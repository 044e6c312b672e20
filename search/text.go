package search

import (
	"strings"
	"unicode"
)

// stopWords are common words that carry no signal for verbatim matching.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "be": {}, "is": {}, "are": {},
	"was": {}, "to": {}, "of": {}, "and": {}, "in": {}, "that": {},
	"have": {}, "it": {}, "for": {}, "not": {}, "on": {}, "with": {},
	"as": {}, "you": {}, "do": {}, "at": {}, "this": {}, "but": {},
	"by": {}, "from": {},
}

// tokenize lowercases s, splits on anything that is not a letter or digit,
// and drops stop words.
func tokenize(s string) []string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	kept := words[:0]
	for _, word := range words {
		if _, stop := stopWords[word]; !stop {
			kept = append(kept, word)
		}
	}
	return kept
}

// containsAllQueryWords reports whether every token of the query appears in
// the text. A query with no tokens left after filtering matches nothing.
func containsAllQueryWords(text, query string) bool {
	queryWords := tokenize(query)
	if len(queryWords) == 0 {
		return false
	}

	have := make(map[string]struct{})
	for _, word := range tokenize(text) {
		have[word] = struct{}{}
	}
	for _, word := range queryWords {
		if _, ok := have[word]; !ok {
			return false
		}
	}
	return true
}
