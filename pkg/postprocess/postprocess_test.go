package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/review"
)

func testConfig() *config.Config {
	return &config.Config{Defaults: config.ResolveDefaults(&config.Defaults{})}
}

func TestPostProcess_RestoresMissingDiffFromPrevious(t *testing.T) {
	p := New(testConfig(), nil)
	issues := []review.Issue{
		{ID: "issue-1", File: "a.go", Line: "10", Reason: "still has a nil check missing"},
	}
	previous := []review.PreviousIssue{
		{ID: "issue-1", File: "a.go", Line: "10", SuggestedFixDiff: "--- a/a.go\n+++ b/a.go\n@@ -10 +10 @@\n-foo()\n+if foo != nil { foo() }\n"},
	}

	out, err := p.PostProcess(issues, "", nil, previous)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Contains(t, out[0].SuggestedFixDiff, "if foo != nil")
}

func TestPostProcess_DoesNotRestoreOntoResolvedIssue(t *testing.T) {
	p := New(testConfig(), nil)
	issues := []review.Issue{
		{ID: "issue-1", File: "a.go", Line: "10", IsResolved: true},
	}
	previous := []review.PreviousIssue{
		{ID: "issue-1", SuggestedFixDiff: "--- a/a.go\n+++ b/a.go\n@@ -10 +10 @@\n-foo()\n+bar()\n"},
	}

	out, err := p.PostProcess(issues, "", nil, previous)
	require.NoError(t, err)
	assert.Empty(t, out[0].SuggestedFixDiff)
}

func TestPostProcess_CorrectsDriftedLineNumberUsingFileContent(t *testing.T) {
	p := New(testConfig(), nil)
	issues := []review.Issue{
		{File: "a.go", Line: "1", Reason: `possible nil dereference on "userConfig"`},
	}
	fileContents := map[string]string{
		"a.go": "package a\nfunc Foo() {\n  _ = userConfig.Value\n}\n",
	}

	out, err := p.PostProcess(issues, "", fileContents, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "3", out[0].Line)
}

func TestPostProcess_LeavesLineAloneWhenNoKeywordMatchInWindow(t *testing.T) {
	p := New(testConfig(), nil)
	issues := []review.Issue{
		{File: "a.go", Line: "1", Reason: "generic style nit"},
	}
	fileContents := map[string]string{"a.go": "package a\nfunc Foo() {}\n"}

	out, err := p.PostProcess(issues, "", fileContents, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", out[0].Line)
}

func TestPostProcess_MergesSimilarIssuesWithinSameFile(t *testing.T) {
	p := New(testConfig(), nil)
	issues := []review.Issue{
		{File: "a.go", Line: "10", Severity: review.SeverityLow, Category: review.CategorySecurity, Reason: "hardcoded api key detected in config"},
		{File: "a.go", Line: "11", Severity: review.SeverityHigh, Category: review.CategorySecurity, Reason: "hardcoded api key detected in config loader",
			SuggestedFixDiff: "--- a/a.go\n+++ b/a.go\n@@ -11 +11 @@\n-key := \"abc\"\n+key := os.Getenv(\"API_KEY\")\n"},
	}

	out, err := p.PostProcess(issues, "", nil, nil)
	require.NoError(t, err)
	require.Len(t, out, 1, "near-duplicate issues in the same file should merge into one")
	assert.Equal(t, review.SeverityHigh, out[0].Severity, "merge keeps the cluster's highest severity")
	assert.Contains(t, out[0].SuggestedFixDiff, "os.Getenv")
}

func TestPostProcess_DoesNotMergeAcrossDifferentFiles(t *testing.T) {
	p := New(testConfig(), nil)
	issues := []review.Issue{
		{File: "a.go", Line: "10", Reason: "hardcoded api key detected"},
		{File: "b.go", Line: "10", Reason: "hardcoded api key detected"},
	}

	out, err := p.PostProcess(issues, "", nil, nil)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestPostProcess_StripsMarkdownFencesFromSuggestedFix(t *testing.T) {
	p := New(testConfig(), nil)
	issues := []review.Issue{
		{File: "a.go", Line: "1", Reason: "x", SuggestedFixDiff: "```diff\n--- a/a.go\n+++ b/a.go\n@@ -1 +1 @@\n-foo\n+bar\n```"},
	}

	out, err := p.PostProcess(issues, "", nil, nil)
	require.NoError(t, err)
	assert.NotContains(t, out[0].SuggestedFixDiff, "```")
}

func TestPostProcess_FlagsDiffStillInvalidAfterFenceStripping(t *testing.T) {
	p := New(testConfig(), nil)
	issues := []review.Issue{
		{File: "a.go", Line: "1", Reason: "x", SuggestedFixDiff: "```\njust prose, not a diff\n```"},
	}

	out, err := p.PostProcess(issues, "", nil, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].NeedsDiffReview)
	assert.Contains(t, out[0].SuggestedFixDiff, "just prose")
}

func TestPostProcess_NeverFlipsResolvedBackToOpen(t *testing.T) {
	p := New(testConfig(), nil)
	issues := []review.Issue{
		{ID: "issue-1", File: "a.go", Line: "1", IsResolved: true, Reason: "fixed"},
	}

	out, err := p.PostProcess(issues, "", nil, nil)
	require.NoError(t, err)
	assert.True(t, out[0].IsResolved)
}
