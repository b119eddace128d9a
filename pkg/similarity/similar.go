package similarity

import (
	"strings"

	"github.com/agext/levenshtein"
)

// IsSimilar reports whether two reasons are semantically similar, following
// the reference's normalization: lowercase, trim, exact-match short
// circuit, then a Ratio threshold check.
func IsSimilar(reason1, reason2 string, threshold float64) bool {
	if reason1 == "" || reason2 == "" {
		return false
	}
	r1 := strings.ToLower(strings.TrimSpace(reason1))
	r2 := strings.ToLower(strings.TrimSpace(reason2))
	if r1 == r2 {
		return true
	}
	if sizeMismatchTooLarge(r1, r2) {
		return false
	}
	return Ratio(r1, r2) >= threshold
}

// sizeMismatchTooLarge short-circuits comparisons between strings whose
// lengths differ so much that no similarity threshold in practical use
// could be met, avoiding the O(n*m) matching-block search on a pair that
// cannot possibly pass.
func sizeMismatchTooLarge(a, b string) bool {
	la, lb := len(a), len(b)
	max := la
	if lb > max {
		max = lb
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) > float64(max)*0.3
}

// KeywordEditDistanceScore corroborates a raw keyword-overlap count with
// edit-distance similarity across the two keyword sets: tokenization
// mismatches like "nullPointer" vs "null_pointer" produce low raw overlap
// but a small aggregate edit distance, so this nudges the dedup score up
// rather than relying on overlap alone. Returns a value in [0, 1].
func KeywordEditDistanceScore(keywords1, keywords2 []string) float64 {
	if len(keywords1) == 0 || len(keywords2) == 0 {
		return 0
	}

	params := levenshtein.NewParams()
	var total float64
	count := 0
	for _, k1 := range keywords1 {
		best := 0.0
		for _, k2 := range keywords2 {
			sim := levenshtein.Match(k1, k2, params)
			if sim > best {
				best = sim
			}
		}
		total += best
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
