package answer

import (
	"slices"
	"strings"
)

// WordResult is the outcome for one slot of the expected answer.
type WordResult struct {
	Word             string   `json:"word"`
	IsCorrect        bool     `json:"isCorrect"`
	IsAlmostCorrect  bool     `json:"isAlmostCorrect,omitempty"` // edit distance 1, display only
	ExpectedVariants []string `json:"expectedVariants"`
	UserInput        string   `json:"userInput"`
}

// Result aggregates a graded attempt.
//
// IsCorrect is the only authoritative verdict: every slot must be matched
// exactly at its own position. CorrectWords counts slots matched anywhere in
// the input and is partial credit for display.
type Result struct {
	IsCorrect    bool         `json:"isCorrect"`
	Words        []WordResult `json:"wordResults"`
	TotalWords   int          `json:"totalWords"`
	CorrectWords int          `json:"correctWords"`
}

// Check grades input against expected. It never fails: empty, short and
// over-long inputs all produce a result. An empty expected answer accepts any
// input.
func Check(input string, expected Expected) Result {
	tokens := Tokenize(input)
	normTokens := make([]string, len(tokens))
	for i, tok := range tokens {
		normTokens[i] = Normalize(tok)
	}
	variants := make([][]string, len(expected))
	for i, slot := range expected {
		variants[i] = normalizeSlot(slot)
	}

	res := Result{
		Words:      make([]WordResult, len(expected)),
		TotalWords: len(expected),
	}

	// pass 1: order-independent, drives the per-word display.
	// A token is claimed only by an exact match; a near miss is reported
	// without claiming so a later slot can still take it.
	claimed := make([]bool, len(tokens))
	for i, slot := range expected {
		wr := WordResult{ExpectedVariants: slices.Clone([]string(slot))}
		almost := -1

		for j := range tokens {
			if claimed[j] {
				continue
			}
			d := nearest(normTokens[j], variants[i])
			if d == 0 {
				claimed[j] = true
				wr.IsCorrect = true
				wr.Word = tokens[j]
				wr.UserInput = tokens[j]
				break
			}
			if d == 1 && almost < 0 {
				almost = j
			}
		}

		if !wr.IsCorrect && almost >= 0 {
			wr.IsAlmostCorrect = true
			wr.Word = tokens[almost]
			wr.UserInput = tokens[almost]
		}
		if wr.IsCorrect {
			res.CorrectWords++
		}
		res.Words[i] = wr
	}

	// pass 2: positional, drives pass/fail. Tokens past len(expected) are ignored.
	inOrder := 0
	for i := range expected {
		if i >= len(normTokens) {
			break
		}
		if matchesAny(normTokens[i], variants[i]) {
			inOrder++
		}
	}
	res.IsCorrect = inOrder == len(expected)

	return res
}

// FormatCorrect joins the canonical variant of every slot with single spaces.
// Slots without variants are skipped.
func FormatCorrect(expected Expected) string {
	words := make([]string, 0, len(expected))
	for _, slot := range expected {
		if len(slot) == 0 {
			continue
		}
		words = append(words, slot[0])
	}
	return strings.Join(words, " ")
}

// Variants returns the accepted spellings of slot i, or nil when i is out of
// range.
func Variants(expected Expected, i int) []string {
	if i < 0 || i >= len(expected) {
		return nil
	}
	return slices.Clone([]string(expected[i]))
}

// IsClose reports whether at least 70% of the slots were matched somewhere in
// the input. Used to decide when to nudge the learner with a hint.
func IsClose(input string, expected Expected) bool {
	res := Check(input, expected)
	return float64(res.CorrectWords) >= float64(len(expected))*0.7
}
