package textutil

import (
	"regexp"
	"strings"
)

var nonKeyChars = regexp.MustCompile(`[^a-z0-9` + spaceClass + `]`)

// CleanText trims white space (the same class it keeps), lowercases and drops every character that is not an ASCII
// lowercase letter, a digit or white space. Interior white space is kept as is.
func CleanText(text string) string {
	text = strings.ToLower(strings.TrimFunc(text, isSpaceRune))
	return nonKeyChars.ReplaceAllString(text, "")
}

// NormalizeWord returns the dictionary key for a user supplied word.
// The second result is false when nothing usable is left after cleaning.
func NormalizeWord(word string) (string, bool) {
	cleaned := CleanText(word)
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}
