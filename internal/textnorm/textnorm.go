// Package textnorm canonicalizes free-text metadata (artist names, track
// and album titles) and computes string similarity for fuzzy matching.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes Unicode text (NFKD) and drops combining marks,
// so "Björk" folds to "Bjork" before the ASCII filter.
var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Normalize canonicalizes a string for comparison: ASCII-fold diacritics,
// lower-case, collapse runs of non-alphanumerics into single spaces, trim.
// It is pure and total; any input (including empty) yields a valid result.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		// Fold failures leave the input usable as-is
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true // suppress leading space
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Similarity returns the Ratcliff/Obershelp ratio between two strings:
// twice the number of matching characters divided by the total length.
// Identical non-empty strings score 1.0; an empty input always scores 0.0.
// Inputs are compared as-is; callers normalize first when they want
// case- and punctuation-insensitive comparison.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	ra := []rune(a)
	rb := []rune(b)
	matched := matchingRunes(ra, rb)
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingRunes counts matched characters: the longest common block, plus
// recursively the matches to the left and right of it.
func matchingRunes(a, b []rune) int {
	size, ai, bj := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a[:ai], b[:bj]) +
		matchingRunes(a[ai+size:], b[bj+size:])
}

// longestCommonBlock finds the longest run of runes common to a and b.
// Ties resolve to the earliest position in a, then in b, which keeps the
// overall ratio deterministic.
func longestCommonBlock(a, b []rune) (size, ai, bj int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// lengths[j] holds the length of the common suffix ending at a[i], b[j]
	// for the current row i.
	prev := make([]int, len(b))
	cur := make([]int, len(b))

	for i := range a {
		for j := range b {
			if a[i] != b[j] {
				cur[j] = 0
				continue
			}
			if j == 0 {
				cur[j] = 1
			} else {
				cur[j] = prev[j-1] + 1
			}
			if cur[j] > size {
				size = cur[j]
				ai = i - size + 1
				bj = j - size + 1
			}
		}
		prev, cur = cur, prev
	}

	return size, ai, bj
}
