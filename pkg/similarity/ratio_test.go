package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio_IdenticalStringsIsOne(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("possible nil dereference", "possible nil dereference"))
}

func TestRatio_BothEmptyIsOne(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("", ""))
}

func TestRatio_CompletelyDisjointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Ratio("abc", "xyz"))
}

func TestRatio_PartialOverlapIsBetweenZeroAndOne(t *testing.T) {
	r := Ratio("possible null pointer exception on user input", "possible null pointer on input data")
	assert.Greater(t, r, 0.5)
	assert.Less(t, r, 1.0)
}

func TestRatio_MatchesKnownPythonDifflibValue(t *testing.T) {
	// SequenceMatcher(None, "GESTALT", "GSETALT").ratio() == 6/7 in CPython's
	// own difflib doctest suite; used here as a fixed reference point.
	r := Ratio("GESTALT", "GSETALT")
	assert.InDelta(t, 6.0/7.0, r, 1e-9)
}

func TestRatio_AsymmetricLengths(t *testing.T) {
	r := Ratio("abcdefg", "abc")
	assert.InDelta(t, 2.0*3.0/10.0, r, 1e-9)
}

func TestIsSimilar_ExactMatchIgnoringCaseAndWhitespace(t *testing.T) {
	assert.True(t, IsSimilar(" Null Pointer ", "null pointer", 0.9))
}

func TestIsSimilar_EmptyStringsNeverSimilar(t *testing.T) {
	assert.False(t, IsSimilar("", "anything", 0.1))
	assert.False(t, IsSimilar("anything", "", 0.1))
}

func TestIsSimilar_BelowThresholdIsFalse(t *testing.T) {
	assert.False(t, IsSimilar("sql injection in query builder", "unused import statement", 0.7))
}

func TestIsSimilar_LargeSizeMismatchShortCircuits(t *testing.T) {
	long := "this is a very long and detailed explanation of a completely unrelated issue found elsewhere"
	short := "short"
	assert.False(t, IsSimilar(long, short, 0.01))
}

func TestKeywordEditDistanceScore_RewardsNearMissTokenization(t *testing.T) {
	score := KeywordEditDistanceScore([]string{"nullpointer"}, []string{"null_pointer"})
	assert.Greater(t, score, 0.5)
}

func TestKeywordEditDistanceScore_EmptyInputsAreZero(t *testing.T) {
	assert.Equal(t, 0.0, KeywordEditDistanceScore(nil, []string{"x"}))
	assert.Equal(t, 0.0, KeywordEditDistanceScore([]string{"x"}, nil))
}
