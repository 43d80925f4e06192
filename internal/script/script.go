package script

import (
	"strings"
	"unicode"
)

// Lang is the language tag assigned to a run of tokens.
type Lang string

const (
	// LangHindi tags tokens containing at least one Devanagari rune.
	LangHindi Lang = "hi"

	// LangEnglish is the catch-all tag for every other token.
	LangEnglish Lang = "en"
)

// Locale returns the speech locale for the tag.
func (l Lang) Locale() string {
	if l == LangHindi {
		return "hi-IN"
	}
	return "en-US"
}

// String implements fmt.Stringer.
func (l Lang) String() string { return string(l) }

// Chunk is a maximal run of tokens sharing one language tag.
type Chunk struct {
	Text string `yaml:"text"`
	Lang Lang   `yaml:"lang"`
}

// Classify tags a single token. A token is Hindi if any rune belongs to
// the Devanagari script, regardless of what else it contains.
func Classify(token string) Lang {
	for _, r := range token {
		if unicode.Is(unicode.Devanagari, r) {
			return LangHindi
		}
	}
	return LangEnglish
}

// Split breaks text on runs of whitespace and merges consecutive tokens
// with the same tag into a single chunk. Returns nil when text holds no
// tokens.
func Split(text string) []Chunk {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	var (
		chunks  []Chunk
		current = []string{tokens[0]}
		lang    = Classify(tokens[0])
	)
	for _, tok := range tokens[1:] {
		l := Classify(tok)
		if l == lang {
			current = append(current, tok)
			continue
		}
		chunks = append(chunks, Chunk{Text: strings.Join(current, " "), Lang: lang})
		lang = l
		current = []string{tok}
	}
	return append(chunks, Chunk{Text: strings.Join(current, " "), Lang: lang})
}

// Join rejoins chunk texts with single spaces. For any input s,
// Join(Split(s)) equals the whitespace-normalized form of s.
func Join(chunks []Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, " ")
}
