package answer

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exp(words ...string) Expected {
	e := make(Expected, len(words))
	for i, w := range words {
		e[i] = strings.Split(w, "|")
	}
	return e
}

func TestCheck_Scenarios(t *testing.T) {
	type scenario struct {
		name string
		run  func(t *testing.T)
	}

	cases := []scenario{
		{
			name: "case and punctuation insensitive",
			run: func(t *testing.T) {
				res := Check("Hello World.", exp("hello", "world"))
				assert.True(t, res.IsCorrect)
				assert.Equal(t, 2, res.TotalWords)
				assert.Equal(t, 2, res.CorrectWords)
			},
		},
		{
			name: "one edit away is almost correct but not correct",
			run: func(t *testing.T) {
				res := Check("helo world", exp("hello", "world"))
				require.False(t, res.IsCorrect)
				require.Len(t, res.Words, 2)

				assert.False(t, res.Words[0].IsCorrect)
				assert.True(t, res.Words[0].IsAlmostCorrect)
				assert.Equal(t, "helo", res.Words[0].UserInput)

				assert.True(t, res.Words[1].IsCorrect)
				assert.Equal(t, 1, res.CorrectWords)
			},
		},
		{
			name: "skipped word fails the ordered pass",
			run: func(t *testing.T) {
				res := Check("a c", exp("a", "b", "c"))
				assert.False(t, res.IsCorrect)
				// "c" still counts as found for display
				assert.Equal(t, 2, res.CorrectWords)
				assert.True(t, res.Words[2].IsCorrect)
				assert.False(t, res.Words[1].IsCorrect)
			},
		},
		{
			name: "swapped words are found but not correct",
			run: func(t *testing.T) {
				res := Check("world hello", exp("hello", "world"))
				assert.False(t, res.IsCorrect)
				assert.Equal(t, 2, res.CorrectWords)
			},
		},
		{
			name: "any accepted variant counts",
			run: func(t *testing.T) {
				res := Check("it's OK", exp("it's|it is", "okay|ok"))
				assert.True(t, res.IsCorrect)
				assert.Equal(t, []string{"okay", "ok"}, res.Words[1].ExpectedVariants)
			},
		},
		{
			name: "inner punctuation of a token is stripped per word",
			run: func(t *testing.T) {
				res := Check("Hello, world!", exp("hello", "world"))
				assert.True(t, res.IsCorrect)
				assert.Equal(t, "hello,", res.Words[0].Word)
			},
		},
		{
			name: "extra trailing words are ignored for pass/fail",
			run: func(t *testing.T) {
				res := Check("hello world again", exp("hello", "world"))
				assert.True(t, res.IsCorrect)
			},
		},
		{
			name: "empty input matches nothing",
			run: func(t *testing.T) {
				res := Check("   ", exp("hello", "world"))
				assert.False(t, res.IsCorrect)
				assert.Equal(t, 0, res.CorrectWords)
				for _, w := range res.Words {
					assert.False(t, w.IsCorrect)
					assert.Empty(t, w.Word)
				}
			},
		},
		{
			name: "empty expected accepts anything",
			run: func(t *testing.T) {
				assert.True(t, Check("", Expected{}).IsCorrect)
				assert.True(t, Check("whatever you say", nil).IsCorrect)
			},
		},
		{
			name: "near miss does not claim the token",
			run: func(t *testing.T) {
				res := Check("bar", exp("bat", "bar"))
				assert.True(t, res.Words[0].IsAlmostCorrect)
				assert.True(t, res.Words[1].IsCorrect)
				assert.Equal(t, "bar", res.Words[1].Word)
				assert.Equal(t, 1, res.CorrectWords)
			},
		},
		{
			name: "exact match later in the input beats an earlier near miss",
			run: func(t *testing.T) {
				res := Check("cot cat", exp("cat"))
				assert.True(t, res.Words[0].IsCorrect)
				assert.False(t, res.Words[0].IsAlmostCorrect)
				assert.Equal(t, "cat", res.Words[0].Word)
			},
		},
		{
			name: "near miss ties go to the lowest index",
			run: func(t *testing.T) {
				res := Check("cut cot", exp("cat"))
				assert.True(t, res.Words[0].IsAlmostCorrect)
				assert.Equal(t, "cut", res.Words[0].UserInput)
			},
		},
		{
			name: "claimed tokens are not reused",
			run: func(t *testing.T) {
				res := Check("the", exp("the", "the"))
				assert.True(t, res.Words[0].IsCorrect)
				assert.False(t, res.Words[1].IsCorrect)
				assert.Equal(t, 1, res.CorrectWords)
			},
		},
		{
			name: "vietnamese diacritics in either unicode form",
			run: func(t *testing.T) {
				decomposed := "Vie\u0323\u0302t Nam"
				res := Check(decomposed, exp("Vi\u1ec7t", "Nam"))
				assert.True(t, res.IsCorrect)

				res = Check("viet nam", exp("vi\u1ec7t", "nam"))
				assert.False(t, res.IsCorrect)
				assert.True(t, res.Words[0].IsAlmostCorrect)
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, c.run)
	}
}

func TestCheck_IsPure(t *testing.T) {
	e := exp("the", "quick|fast", "brown", "fox")
	in := "The fast brwn fox jumps"
	assert.Equal(t, Check(in, e), Check(in, e))
}

var vocab = []string{"alpha", "beta", "gamma", "delta", "eps", "zeta", "eta", "theta", "iota", "kappa"}

func randomExpected(r *rand.Rand) Expected {
	n := 1 + r.Intn(6)
	e := make(Expected, n)
	for i := range e {
		k := 1 + r.Intn(3)
		perm := r.Perm(len(vocab))
		slot := make(Slot, k)
		for j := 0; j < k; j++ {
			slot[j] = vocab[perm[j]]
		}
		e[i] = slot
	}
	return e
}

func TestCheck_PositionalExactnessProperty(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for iter := 0; iter < 500; iter++ {
		e := randomExpected(r)
		words := make([]string, 0, len(e)+2)
		want := true

		for _, slot := range e {
			if r.Intn(4) == 0 {
				// a word this slot does not accept
				for _, w := range vocab {
					if !matchesAny(w, slot) {
						words = append(words, w)
						break
					}
				}
				want = false
				continue
			}
			w := slot[r.Intn(len(slot))]
			if r.Intn(2) == 0 {
				w = strings.ToUpper(w)
			}
			words = append(words, w)
		}

		// sometimes drop the tail, sometimes add noise after the answer
		switch r.Intn(4) {
		case 0:
			if len(words) > 0 {
				words = words[:len(words)-1]
				want = false
			}
		case 1:
			words = append(words, "extra", "noise")
		}

		input := strings.Join(words, "  ") + "."
		got := Check(input, e)
		require.Equal(t, want, got.IsCorrect, "input=%q expected=%v", input, e)
	}
}

func TestFormatCorrect_RoundTrips(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		e := randomExpected(r)
		s := FormatCorrect(e)
		require.True(t, Check(s, e).IsCorrect, "formatted=%q", s)
	}
}

func TestFormatCorrect_UsesCanonicalVariant(t *testing.T) {
	assert.Equal(t, "it's okay now", FormatCorrect(exp("it's|it is", "okay|ok", "now")))
	assert.Equal(t, "", FormatCorrect(nil))
	assert.Equal(t, "a c", FormatCorrect(Expected{{"a"}, {}, {"c"}}))
}

func TestVariants(t *testing.T) {
	e := exp("okay|ok")
	assert.Equal(t, []string{"okay", "ok"}, Variants(e, 0))
	assert.Nil(t, Variants(e, 1))
	assert.Nil(t, Variants(e, -1))
}

func TestIsClose(t *testing.T) {
	e := exp("one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten")
	assert.True(t, IsClose("one two three four five six seven", e))
	assert.False(t, IsClose("one two three four five six", e))
}

func TestNormalizeAndTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "  Hello   World.  ", want: "hello world"},
		{in: "...wait!?", want: "wait"},
		{in: "a, b", want: "a, b"},
		{in: "ĐÀ NẴNG", want: "đà nẵng"},
		{in: "", want: ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "Normalize(%q)", tc.in)
	}

	assert.Equal(t, []string{"hello,", "world"}, Tokenize("Hello,   World!"))
	assert.Empty(t, Tokenize(" \t\n "))
}
