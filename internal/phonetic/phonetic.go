// Package phonetic provides best-effort IPA transcriptions for English words
// from a CMU-style pronouncing dictionary.
package phonetic

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
)

// Transcriber returns an IPA transcription for word, or "" when none is known.
type Transcriber interface {
	Transcribe(word string) string
}

// Nop never knows a transcription.
type Nop struct{}

func (Nop) Transcribe(string) string { return "" }

// Lexicon maps case-folded words to their first listed pronunciation.
type Lexicon struct {
	entries map[string][]string
}

// Load reads a lexicon file. An empty path yields Nop.
func Load(path string) (Transcriber, error) {
	if strings.TrimSpace(path) == "" {
		return Nop{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads lines of the form "WORD  AH0 B AW1 T". Comment lines start
// with ";;;" or "#". Alternate pronunciations such as "WORD(2)" are ignored.
func Parse(r io.Reader) (*Lexicon, error) {
	lex := &Lexicon{
		entries: make(map[string][]string),
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, ";;;") || strings.HasPrefix(text, "#") {
			continue
		}
		if i := strings.Index(text, " #"); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("lexicon line %d: expected word and phones", line)
		}
		word := fields[0]
		if strings.HasSuffix(word, ")") && strings.Contains(word, "(") {
			continue
		}
		key := foldKey(word)
		if _, exists := lex.entries[key]; exists {
			continue
		}
		lex.entries[key] = fields[1:]
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return lex, nil
}

func (l *Lexicon) Len() int {
	return len(l.entries)
}

// Transcribe converts every whitespace-separated token of word. If any token
// is unknown the whole result is "".
func (l *Lexicon) Transcribe(word string) string {
	tokens := strings.Fields(word)
	if len(tokens) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		phones, ok := l.entries[foldKey(tok)]
		if !ok {
			return ""
		}
		ipa, ok := arpabetToIPA(phones)
		if !ok {
			return ""
		}
		parts = append(parts, ipa)
	}
	return "/" + strings.Join(parts, " ") + "/"
}

// Casers are not safe for concurrent use, so each call gets its own.
func foldKey(word string) string {
	return cases.Fold().String(word)
}
