// Package textutil holds the pure text transforms shared by the API and the CLI:
// word normalization for dictionary keys, markdown sanitization for scraped pages,
// and code-fence stripping for generative model output.
//
// Every function here is stateless and safe for concurrent use.
package textutil

import "unicode"

// Character classes mirror Unicode-aware \w and \s: letters, numbers and
// underscore count as word characters; Unicode white space counts as space.
const (
	spaceClass   = `\s\v\x{1c}-\x{1f}\x{85}\p{Z}`
	wordClass    = `\p{L}\p{N}_`
	symbolNegSet = wordClass + spaceClass
)

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isSpaceRune(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Z, r) || (r >= 0x1c && r <= 0x1f)
}

func isSymbolRune(r rune) bool {
	return !isWordRune(r) && !isSpaceRune(r)
}
