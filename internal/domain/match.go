package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ContainsKeyword reports whether any keyword starts a word in text.
// Matching is case-insensitive; "kidnap" matches "kidnapping" but "rape"
// does not match "grape".
func ContainsKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if indexWord(lower, strings.ToLower(kw), false) >= 0 {
			return true
		}
	}
	return false
}

// indexWord returns the byte offset of the first occurrence of term in text
// that begins on a word boundary (and, if whole, also ends on one), or -1.
// Both arguments must already be lower-cased.
func indexWord(text, term string, whole bool) int {
	if term == "" {
		return -1
	}
	offset := 0
	for {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(term)
		if boundaryBefore(text, start) && (!whole || boundaryAfter(text, end)) {
			return start
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
