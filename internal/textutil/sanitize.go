package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	markdownLink = regexp.MustCompile(`\[[^\]]*\]\([^)]*\)`)
	bareURL      = regexp.MustCompile(`(?:https?://?|www\.)[^` + spaceClass + `()<>]+` +
		`(?:\([^` + spaceClass + `()<>]*\)|[^` + spaceClass + "`" + `!()\[\]{};:'".,<>?«»“”‘’])*`)
	whitespaceRun = regexp.MustCompile(`[` + spaceClass + `]+`)
	percentSign   = regexp.MustCompile(`(\p{Nd}+)%`)
	percentWord   = regexp.MustCompile(`(\p{Nd}+)percent`)
	symbolRun     = regexp.MustCompile(`[^` + symbolNegSet + `]{2,}`)
)

// Sanitize is SanitizeMarkdown for loosely typed input such as decoded JSON.
// Anything that is not a string yields "".
func Sanitize(v any) string {
	switch t := v.(type) {
	case string:
		return SanitizeMarkdown(t)
	case *string:
		if t == nil {
			return ""
		}
		return SanitizeMarkdown(*t)
	default:
		return ""
	}
}

// SanitizeMarkdown turns scraped markdown into compact readable text.
// Links are removed together with their labels, bare URLs are removed, runs of
// two or more symbols and symbols standing alone between spaces are dropped.
// Percent signs that follow digits survive.
//
// The stages run in a fixed order; "50percent" already present in the input
// comes out as "50%".
func SanitizeMarkdown(text string) string {
	if text == "" {
		return ""
	}

	text = markdownLink.ReplaceAllString(text, "")
	text = stripBareURLs(text)
	text = collapseSpaces(text)

	text = percentSign.ReplaceAllString(text, "${1}percent")
	text = symbolRun.ReplaceAllString(text, "")
	text = dropIsolatedSymbols(text)
	text = percentWord.ReplaceAllString(text, "${1}%")

	return collapseSpaces(text)
}

// stripBareURLs removes bareURL matches that start on a word boundary. RE2's
// \b only knows ASCII word characters, so the boundary is checked here with the
// Unicode word class; a rejected start resumes the scan at the next rune.
func stripBareURLs(text string) string {
	var sb strings.Builder
	pos := 0
	for pos < len(text) {
		loc := bareURL.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if prev, _ := utf8.DecodeLastRuneInString(text[:start]); start > 0 && isWordRune(prev) {
			_, size := utf8.DecodeRuneInString(text[start:])
			sb.WriteString(text[pos : start+size])
			pos = start + size
			continue
		}
		sb.WriteString(text[pos:start])
		pos = end
	}
	sb.WriteString(text[pos:])
	return sb.String()
}

func collapseSpaces(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// dropIsolatedSymbols removes symbols that have no word character on either
// side. Neighbours are judged on the input, not on the partially rewritten text.
func dropIsolatedSymbols(text string) string {
	runes := []rune(text)
	var sb strings.Builder
	sb.Grow(len(text))
	for i, r := range runes {
		if isSymbolRune(r) {
			leftWord := i > 0 && isWordRune(runes[i-1])
			rightWord := i+1 < len(runes) && isWordRune(runes[i+1])
			if !leftWord && !rightWord {
				continue
			}
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
