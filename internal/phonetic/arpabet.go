package phonetic

import "strings"

var consonants = map[string]string{
	"B": "b", "CH": "tʃ", "D": "d", "DH": "ð", "F": "f", "G": "ɡ",
	"HH": "h", "JH": "dʒ", "K": "k", "L": "l", "M": "m", "N": "n",
	"NG": "ŋ", "P": "p", "R": "ɹ", "S": "s", "SH": "ʃ", "T": "t",
	"TH": "θ", "V": "v", "W": "w", "Y": "j", "Z": "z", "ZH": "ʒ",
}

var vowels = map[string]string{
	"AA": "ɑ", "AE": "æ", "AH": "ʌ", "AO": "ɔ", "AW": "aʊ", "AY": "aɪ",
	"EH": "ɛ", "ER": "ɝ", "EY": "eɪ", "IH": "ɪ", "IY": "i", "OW": "oʊ",
	"OY": "ɔɪ", "UH": "ʊ", "UW": "u",
}

// Unstressed reductions.
var reduced = map[string]string{
	"AH": "ə",
	"ER": "ɚ",
}

func splitStress(p string) (string, byte) {
	if last := p[len(p)-1]; last >= '0' && last <= '2' {
		return p[:len(p)-1], last
	}
	return p, 0
}

// arpabetToIPA renders phones. Stress marks go before the syllable onset,
// taken as all leading consonants of the word or the single consonant
// preceding the vowel. Single-vowel words carry no mark.
func arpabetToIPA(phones []string) (string, bool) {
	vowelCount := 0
	for _, p := range phones {
		if _, stress := splitStress(p); stress != 0 {
			vowelCount++
		}
	}

	segs := make([]string, 0, len(phones)+2)
	lastVowel := -1
	for _, p := range phones {
		p = strings.ToUpper(p)
		if sym, ok := consonants[p]; ok {
			segs = append(segs, sym)
			continue
		}
		base, stress := splitStress(p)
		sym, ok := vowels[base]
		if !ok {
			return "", false
		}
		if stress == '0' {
			if r, ok := reduced[base]; ok {
				sym = r
			}
		}
		if vowelCount > 1 && (stress == '1' || stress == '2') {
			mark := "ˈ"
			if stress == '2' {
				mark = "ˌ"
			}
			at := len(segs)
			switch {
			case lastVowel < 0:
				at = 0
			case len(segs)-1 > lastVowel:
				at = len(segs) - 1
			}
			segs = append(segs[:at], append([]string{mark}, segs[at:]...)...)
		}
		segs = append(segs, sym)
		lastVowel = len(segs) - 1
	}
	return strings.Join(segs, ""), true
}
