package textproc

// maxCorrectionDistance is the largest edit distance at which a vocabulary
// word is still considered a plausible correction.
const maxCorrectionDistance = 2

// Correct returns the vocabulary word closest to the input by Levenshtein
// distance, provided it is within maxCorrectionDistance edits. An exact
// match, an empty vocabulary, or no candidate close enough all return the
// input unchanged. When two candidates are equally close, the one earlier
// in the vocabulary wins.
func Correct(word string, vocab []string) string {
	best := word
	bestDist := maxCorrectionDistance + 1
	for _, candidate := range vocab {
		if candidate == word {
			return word
		}
		if d := levenshtein(word, candidate); d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best
}

// CorrectAll applies Correct to every word in the slice.
func CorrectAll(words []string, vocab []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = Correct(w, vocab)
	}
	return out
}

// levenshtein computes the edit distance between two strings using two
// rolling rows, comparing rune by rune.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
