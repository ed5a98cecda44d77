package answer

// NextHintCount implements progressive hints: one more canonical word is
// revealed only when the attempt is still wrong and every word revealed so
// far was typed correctly.
func NextHintCount(res Result, hinted int) int {
	if res.IsCorrect || hinted >= res.TotalWords {
		return hinted
	}
	for i := 0; i < hinted && i < len(res.Words); i++ {
		if !res.Words[i].IsCorrect {
			return hinted
		}
	}
	return hinted + 1
}

// HintPrefix is the first n canonical words of the answer.
func HintPrefix(expected Expected, n int) string {
	if n <= 0 {
		return ""
	}
	if n > len(expected) {
		n = len(expected)
	}
	return FormatCorrect(expected[:n])
}
