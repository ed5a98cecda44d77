package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPosition(t *testing.T) {
	cases := []struct {
		name     string
		expected Expected
		input    string
		want     Cursor
		found    bool
	}{
		{
			name:     "skipped word reappears later: insert before it",
			expected: exp("a", "b", "c"),
			input:    "a c",
			want:     Cursor{Offset: 2, WordIndex: 1},
			found:    true,
		},
		{
			name:     "wrong word: end of it",
			expected: exp("a", "b", "c"),
			input:    "a xy c",
			want:     Cursor{Offset: 4, WordIndex: 1, CharIndex: 2},
			found:    true,
		},
		{
			name:     "missing tail: end of input",
			expected: exp("a", "b", "c"),
			input:    "a b",
			want:     Cursor{Offset: 3, WordIndex: 2},
			found:    true,
		},
		{
			name:     "missing tail after trailing space",
			expected: exp("a", "b", "c"),
			input:    "a b ",
			want:     Cursor{Offset: 4, WordIndex: 2},
			found:    true,
		},
		{
			name:     "too many words: start of the first extra",
			expected: exp("a", "b"),
			input:    "a  b   c d",
			want:     Cursor{Offset: 7, WordIndex: 2},
			found:    true,
		},
		{
			name:     "empty input",
			expected: exp("a"),
			input:    "",
			want:     Cursor{Offset: 0, WordIndex: 0},
			found:    true,
		},
		{
			name:     "all correct, case and punctuation ignored",
			expected: exp("hello", "world"),
			input:    "Hello World.",
			found:    false,
		},
		{
			name:     "empty expected and empty input",
			expected: Expected{},
			input:    "",
			found:    false,
		},
		{
			name:     "offsets are runes, not bytes",
			expected: exp("tôi", "là"),
			input:    "tôi lá",
			want:     Cursor{Offset: 6, WordIndex: 1, CharIndex: 2},
			found:    true,
		},
		{
			name:     "leading whitespace is part of the offset",
			expected: exp("a", "b"),
			input:    "  a x",
			want:     Cursor{Offset: 5, WordIndex: 1, CharIndex: 1},
			found:    true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ErrorPosition(tc.expected, tc.input)
			assert.Equal(t, tc.found, ok)
			if tc.found {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestErrorPosition_AgreesWithCheck(t *testing.T) {
	e := exp("the", "quick", "brown", "fox")
	for _, in := range []string{"the quick brown fox", "The Quick Brown Fox!", "the quick fox", "quick brown fox", "the slow brown fox"} {
		_, found := ErrorPosition(e, in)
		assert.Equal(t, !Check(in, e).IsCorrect, found, "input=%q", in)
	}
}

func TestNextHintCount(t *testing.T) {
	e := exp("one", "two", "three")

	// first hint always comes when the answer is wrong
	assert.Equal(t, 1, NextHintCount(Check("nope", e), 0))
	// hinted word typed correctly: reveal the next
	assert.Equal(t, 2, NextHintCount(Check("one", e), 1))
	// hinted word still wrong: hold
	assert.Equal(t, 1, NextHintCount(Check("two", e), 1))
	// correct answer: nothing more to reveal
	assert.Equal(t, 1, NextHintCount(Check("one two three", e), 1))
	// never beyond the answer length
	assert.Equal(t, 3, NextHintCount(Check("one two tree", e), 3))

	assert.Equal(t, "one two", HintPrefix(e, 2))
	assert.Equal(t, "one two three", HintPrefix(e, 9))
	assert.Equal(t, "", HintPrefix(e, 0))
}
