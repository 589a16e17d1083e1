// Package textscan finds whole-token occurrences of terms in free text.
//
// All functions expect text and term already folded with Fold. A term
// occurrence is accepted only when the runes on either side of it are not
// letters or digits; edges of the term that are themselves punctuation or
// space are not boundary checked.
package textscan

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a byte range [Start, End) in folded text.
type Span struct {
	Start int
	End   int
}

// Fold lower-cases s. Offsets returned by Find refer to the folded string.
func Fold(s string) string {
	return strings.ToLower(s)
}

// Find returns every non-overlapping, boundary-respecting occurrence of
// term in text, left to right.
func Find(text, term string) []Span {
	if term == "" || len(term) > len(text) {
		return nil
	}

	first, _ := utf8.DecodeRuneInString(term)
	last, _ := utf8.DecodeLastRuneInString(term)
	checkLeft := isWordRune(first)
	checkRight := isWordRune(last)

	var spans []Span
	from := 0
	for from <= len(text)-len(term) {
		idx := strings.Index(text[from:], term)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(term)

		if (!checkLeft || leftBoundary(text, start)) && (!checkRight || rightBoundary(text, end)) {
			spans = append(spans, Span{Start: start, End: end})
			from = end
			continue
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return spans
}

// Contains reports whether term occurs at least once as a whole token.
func Contains(text, term string) bool {
	return len(Find(text, term)) > 0
}

// Window returns up to n runes of text starting at byte offset at.
func Window(text string, at, n int) string {
	if at >= len(text) || n <= 0 {
		return ""
	}
	end := at
	for i := 0; i < n && end < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	return text[at:end]
}

func leftBoundary(text string, start int) bool {
	if start == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return !isWordRune(r)
}

func rightBoundary(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
