// Package answer grades a dictation attempt word by word against the
// expected solution of a challenge.
//
// An Expected answer is an ordered list of slots; each slot lists the literal
// spellings accepted at that position ("ok", "okay"). Matching is case and
// edge-punctuation insensitive and works on runes, so Vietnamese input with
// either precomposed or combining diacritics grades the same.
package answer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const edgePunct = ".,!?;:"

// Slot is one position of the expected answer: the accepted variants, the
// first one being the canonical spelling.
type Slot []string

// Expected is the full solution of a challenge, as served in the
// challenge's "solution" field.
type Expected []Slot

// Normalize lowercases s, collapses whitespace runs and strips one leading
// and one trailing run of . , ! ? ; :
func Normalize(s string) string {
	s = norm.NFC.String(s)
	// Caser is stateful, so one per call.
	s = cases.Lower(language.Und).String(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, edgePunct)
	s = strings.TrimLeft(s, edgePunct)
	return strings.TrimSpace(s)
}

// Tokenize splits normalized text on whitespace. Tokens keep their inner
// punctuation ("hello," stays "hello,"); comparisons normalize each token
// again.
func Tokenize(s string) []string {
	return strings.Fields(Normalize(s))
}

func normalizeSlot(slot Slot) []string {
	out := make([]string, len(slot))
	for i, v := range slot {
		out[i] = Normalize(v)
	}
	return out
}

func matchesAny(word string, variants []string) bool {
	for _, v := range variants {
		if v == word {
			return true
		}
	}
	return false
}
