package text

import (
	"strings"
	"unicode"
)

// Tokenize lowercases s and returns every run of two or more word characters
// (letters, numbers, underscore). Combining marks break a token. Single-character runs are discarded.
func Tokenize(s string) []string {
	s = strings.ToLower(s)

	var tokens []string
	start := -1
	runes := 0
	flush := func(end int) {
		if start >= 0 && runes >= 2 {
			tokens = append(tokens, s[start:end])
		}
		start = -1
		runes = 0
	}

	for i, r := range s {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			runes++
			continue
		}
		flush(i)
	}
	flush(len(s))

	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// NGrams drops stop words from tokens and builds every n-gram for n in
// [minN, maxN], joining the parts of multi-word grams with a single space.
func NGrams(tokens []string, minN, maxN int, stop map[string]struct{}) []string {
	if len(stop) > 0 {
		kept := tokens[:0:0]
		for _, tok := range tokens {
			if _, ok := stop[tok]; !ok {
				kept = append(kept, tok)
			}
		}
		tokens = kept
	}

	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}

	var grams []string
	if minN == 1 {
		grams = append(grams, tokens...)
		minN = 2
	}
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}
