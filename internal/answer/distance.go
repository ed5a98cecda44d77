package answer

// Distance is the Levenshtein edit distance between a and b, counted in runes.
// Callers normalize first; Distance itself is exact.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// two rows are enough
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1]
				continue
			}
			cur[j] = 1 + min(prev[j], cur[j-1], prev[j-1])
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// nearest returns the smallest distance from word to any variant, stopping
// early on an exact hit.
func nearest(word string, variants []string) int {
	best := -1
	for _, v := range variants {
		d := Distance(word, v)
		if d == 0 {
			return 0
		}
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}
