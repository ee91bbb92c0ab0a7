// Package sparse derives a deterministic sparse term representation of a
// query string: token-weight pairs with hashed term indices, suitable for
// sparse-vector retrieval against the document index.
package sparse

import (
	"hash/fnv"
	"sort"
	"strings"
	"unicode"
)

// Weighting selects how term weights are assigned.
type Weighting string

const (
	// WeightingUniform gives every distinct term weight 1.
	WeightingUniform Weighting = "uniform"

	// WeightingFrequency weights each term by its occurrence count.
	WeightingFrequency Weighting = "frequency"
)

// Term is one sparse dimension: a hashed token index and its weight.
type Term struct {
	Index  uint32
	Weight float32
}

// Encode tokenizes the query and produces its sparse terms. The encoding is
// a pure function of the input string and weighting scheme: same query,
// same terms, in ascending index order.
//
// Tokens split on non-letter/digit boundaries; runs of CJK characters are
// additionally broken into character bigrams, since the corpus language is
// unsegmented.
func Encode(query string, weighting Weighting) []Term {
	counts := make(map[uint32]float32)

	for _, token := range Tokenize(query) {
		idx := termIndex(token)
		switch weighting {
		case WeightingUniform:
			counts[idx] = 1
		default:
			counts[idx]++
		}
	}

	terms := make([]Term, 0, len(counts))
	for idx, weight := range counts {
		terms = append(terms, Term{Index: idx, Weight: weight})
	}

	sort.Slice(terms, func(i, j int) bool { return terms[i].Index < terms[j].Index })
	return terms
}

// Tokenize splits text into lowercased terms. Exported for the in-memory
// index, which matches on the same token stream.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		runes := []rune(field)
		if !containsCJK(runes) {
			tokens = append(tokens, field)
			continue
		}
		tokens = append(tokens, cjkBigrams(runes)...)
	}
	return tokens
}

func containsCJK(runes []rune) bool {
	for _, r := range runes {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// cjkBigrams emits overlapping two-character grams; a lone character is
// emitted as-is.
func cjkBigrams(runes []rune) []string {
	if len(runes) == 1 {
		return []string{string(runes)}
	}

	grams := make([]string, 0, len(runes)-1)
	for i := 0; i+1 < len(runes); i++ {
		grams = append(grams, string(runes[i:i+2]))
	}
	return grams
}

func termIndex(token string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(token))
	return h.Sum32()
}
