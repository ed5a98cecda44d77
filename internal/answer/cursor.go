package answer

import "unicode"

// Cursor tells the input box where the learner should resume typing.
// Offset counts runes from the start of the raw input.
type Cursor struct {
	Offset    int `json:"errorPosition"`
	WordIndex int `json:"errorWordIndex"`
	CharIndex int `json:"errorCharIndex"`
}

type span struct {
	text       string
	start, end int
}

// ErrorPosition locates the first mistake in input. It returns false when
// every slot is matched in order, in which case the caller leaves the cursor
// where it is.
//
//   - more words than slots: start of the first extra word
//   - missing word: end of input
//   - wrong word that belongs to a later slot (something was skipped):
//     start of that word, to insert before it
//   - wrong word otherwise: end of that word, to correct it
func ErrorPosition(expected Expected, input string) (Cursor, bool) {
	words := spans(input)

	if len(words) > len(expected) {
		extra := words[len(expected)]
		return Cursor{Offset: extra.start, WordIndex: len(expected)}, true
	}

	variants := make([][]string, len(expected))
	for i, slot := range expected {
		variants[i] = normalizeSlot(slot)
	}

	for i := range expected {
		if i >= len(words) {
			return Cursor{Offset: len([]rune(input)), WordIndex: i}, true
		}

		w := words[i]
		got := Normalize(w.text)
		if matchesAny(got, variants[i]) {
			continue
		}

		if appearsAfter(got, variants, i) {
			return Cursor{Offset: w.start, WordIndex: i}, true
		}
		return Cursor{Offset: w.end, WordIndex: i, CharIndex: w.end - w.start}, true
	}

	return Cursor{}, false
}

func appearsAfter(word string, variants [][]string, i int) bool {
	for _, later := range variants[i+1:] {
		if matchesAny(word, later) {
			return true
		}
	}
	return false
}

// spans splits input on whitespace, keeping rune offsets into the raw string.
func spans(input string) []span {
	runes := []rune(input)
	var out []span
	start := -1
	for i, r := range runes {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, span{text: string(runes[start:i]), start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, span{text: string(runes[start:]), start: start, end: len(runes)})
	}
	return out
}
