package dictionary

// Phonetic is a pronunciation with an optional recording.
type Phonetic struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

type Definition struct {
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
}

// Entry is one reshaped dictionary record.
type Entry struct {
	Word     string    `json:"word"`
	Phonetic Phonetic  `json:"phonetic"`
	Meanings []Meaning `json:"meanings"`
}

// Upstream wire shapes. Every field is optional; a record whose fields have
// the wrong JSON type is skipped rather than failing the whole lookup.
type rawPhonetic struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

type rawDefinition struct {
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

type rawMeaning struct {
	PartOfSpeech string          `json:"partOfSpeech"`
	Definitions  []rawDefinition `json:"definitions"`
}

type rawEntry struct {
	Word      string        `json:"word"`
	Phonetic  string        `json:"phonetic"`
	Phonetics []rawPhonetic `json:"phonetics"`
	Meanings  []rawMeaning  `json:"meanings"`
}
