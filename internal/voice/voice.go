// Package voice describes platform voices and decides which one speaks a
// given run of text.
package voice

import (
	"strings"

	"github.com/dgnsrekt/bolo/internal/script"
	"github.com/sahilm/fuzzy"
)

// Auto selects a voice per language instead of a fixed voice name.
const Auto = "auto"

// Voice is a read-only descriptor owned by the host speech platform.
type Voice struct {
	// Name uniquely identifies the voice on the platform.
	Name string `yaml:"name"`

	// Lang is a BCP-47-like tag such as "en-US" or "hi-IN".
	Lang string `yaml:"lang"`
}

// Resolve picks the voice for a chunk tagged lang. The first rule that
// matches wins:
//
//  1. a non-auto selection naming an available voice
//  2. the first voice whose tag starts with the chunk language
//  3. the first English voice
//  4. the first voice at all
//
// The second return value is false only when voices is empty.
func Resolve(lang script.Lang, selection string, voices []Voice) (Voice, bool) {
	if selection != Auto {
		if v, ok := Find(voices, selection); ok {
			return v, true
		}
	}

	prefix := string(script.LangEnglish)
	if lang == script.LangHindi {
		prefix = string(script.LangHindi)
	}
	if v, ok := firstWithPrefix(voices, prefix); ok {
		return v, true
	}
	if v, ok := firstWithPrefix(voices, string(script.LangEnglish)); ok {
		return v, true
	}
	if len(voices) > 0 {
		return voices[0], true
	}
	return Voice{}, false
}

// Find returns the voice with exactly the given name.
func Find(voices []Voice, name string) (Voice, bool) {
	for _, v := range voices {
		if v.Name == name {
			return v, true
		}
	}
	return Voice{}, false
}

func firstWithPrefix(voices []Voice, prefix string) (Voice, bool) {
	for _, v := range voices {
		if v.Lang != "" && strings.HasPrefix(strings.ToLower(v.Lang), prefix) {
			return v, true
		}
	}
	return Voice{}, false
}

// Match ranks voices whose "name lang" label fuzzily matches query, best
// first. An empty query returns nil.
func Match(voices []Voice, query string) []Voice {
	if query == "" {
		return nil
	}

	labels := make([]string, len(voices))
	for i, v := range voices {
		labels[i] = v.Name + " " + v.Lang
	}

	matches := fuzzy.Find(query, labels)
	out := make([]Voice, 0, len(matches))
	for _, m := range matches {
		out = append(out, voices[m.Index])
	}
	return out
}
