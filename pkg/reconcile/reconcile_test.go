package reconcile

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

func TestReconcile_NoPreviousIssuesIsNoOp(t *testing.T) {
	req := &review.Request{}
	newIssues := []review.Issue{{File: "a.go", Line: "1", Reason: "x"}}

	out, err := Reconcile(testConfig(), req, newIssues, nil)
	require.NoError(t, err)
	assert.Equal(t, newIssues, out)
}

func TestReconcile_IDMatchMarksResolvedAndPreservesReason(t *testing.T) {
	req := &review.Request{
		CurrentCommit: "deadbeef",
		PreviousIssues: []review.PreviousIssue{
			{ID: "issue-1", File: "a.go", Line: "10", Reason: "nil pointer on config load", Status: review.StatusOpen, Severity: review.SeverityHigh, Category: review.CategoryBugRisk},
		},
	}
	newIssues := []review.Issue{
		{ID: "issue-1", File: "a.go", Line: "10", Reason: "looks fixed now", IsResolved: true},
	}

	out, err := Reconcile(testConfig(), req, newIssues, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsResolved)
	assert.Equal(t, "nil pointer on config load", out[0].Reason, "preserves the previous issue's own reason")
	assert.Equal(t, "looks fixed now", out[0].ResolutionExplanation)
	assert.Equal(t, "deadbeef", out[0].ResolvedInCommit)
}

func TestReconcile_AlreadyResolvedIsNeverReopened(t *testing.T) {
	req := &review.Request{
		PreviousIssues: []review.PreviousIssue{
			{ID: "issue-1", File: "a.go", Line: "10", Reason: "false positive", Status: review.StatusResolved, ResolvedInCommit: "abc123"},
		},
	}
	newIssues := []review.Issue{
		{ID: "issue-1", File: "a.go", Line: "10", Reason: "still looks broken", IsResolved: false},
	}

	out, err := Reconcile(testConfig(), req, newIssues, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsResolved, "a resolved issue must never be reopened by the LLM's new report")
	assert.Equal(t, "abc123", out[0].ResolvedInCommit)
}

func TestReconcile_NoIDAdoptsSimilarOpenPreviousIssue(t *testing.T) {
	req := &review.Request{
		PreviousIssues: []review.PreviousIssue{
			{ID: "issue-1", File: "a.go", Line: "10", Reason: "possible nil pointer dereference on user input", Status: review.StatusOpen},
		},
	}
	newIssues := []review.Issue{
		{File: "a.go", Line: "11", Reason: "possible nil pointer dereference on user input"},
	}

	out, err := Reconcile(testConfig(), req, newIssues, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "issue-1", out[0].ID)
}

func TestReconcile_NoIDDoesNotAdoptResolvedPreviousIssue(t *testing.T) {
	req := &review.Request{
		PreviousIssues: []review.PreviousIssue{
			{ID: "issue-1", File: "a.go", Line: "10", Reason: "possible nil pointer dereference on user input", Status: review.StatusResolved},
		},
	}
	newIssues := []review.Issue{
		{File: "a.go", Line: "11", Reason: "possible nil pointer dereference on user input"},
	}

	out, err := Reconcile(testConfig(), req, newIssues, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotEqual(t, "issue-1", out[0].ID)
	assert.NotEmpty(t, out[0].ID, "an unmatched new issue is assigned a fresh synthesized id")
}

func TestReconcile_UnmatchedPreviousIssueCarriesForward(t *testing.T) {
	req := &review.Request{
		PreviousIssues: []review.PreviousIssue{
			{ID: "issue-1", File: "b.go", Line: "5", Reason: "unrelated lingering issue", Status: review.StatusOpen},
		},
	}
	newIssues := []review.Issue{
		{File: "a.go", Line: "1", Reason: "a totally different new finding"},
	}

	out, err := Reconcile(testConfig(), req, newIssues, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)

	var carried review.Issue
	for _, issue := range out {
		if issue.ID == "issue-1" {
			carried = issue
		}
	}
	assert.Equal(t, "unrelated lingering issue", carried.Reason)
	assert.False(t, carried.IsResolved)
}

func TestReconcile_UnmatchedPreviousIssueDroppedWhenSameFileLineReported(t *testing.T) {
	req := &review.Request{
		PreviousIssues: []review.PreviousIssue{
			{ID: "issue-1", File: "a.go", Line: "10", Reason: "stale finding", Status: review.StatusOpen},
		},
	}
	newIssues := []review.Issue{
		{File: "a.go", Line: "10", Reason: "a fresh independent finding at the same spot"},
	}

	out, err := Reconcile(testConfig(), req, newIssues, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a fresh independent finding at the same spot", out[0].Reason)
}

func TestReconcile_IgnoredPreviousIssueStaysIgnored(t *testing.T) {
	req := &review.Request{
		PreviousIssues: []review.PreviousIssue{
			{ID: "issue-1", File: "a.go", Line: "10", Reason: "style nit, won't fix", Status: review.StatusIgnored},
		},
	}
	newIssues := []review.Issue{
		{ID: "issue-1", File: "a.go", Line: "10", Reason: "still present", IsResolved: false},
	}

	out, err := Reconcile(testConfig(), req, newIssues, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsResolved)
}
