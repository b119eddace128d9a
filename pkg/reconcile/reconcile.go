// Package reconcile merges a fresh set of Stage-1 issues with the issues
// carried on the request from a previous PR version, in incremental mode.
// It never calls an LLM: the merge is pure bookkeeping over two issue
// lists, grounded on the Python orchestrator's reconcile_previous_issues.
package reconcile

import (
	"strings"

	"github.com/google/uuid"

	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/review"
	"github.com/rostilos/codecrow/pkg/similarity"
)

// Reconcile merges newIssues against req.PreviousIssues. A no-op (returns
// newIssues unchanged) when the request carries no previous issues. diff is
// accepted to keep the stage's signature uniform with the rest of the
// pipeline but unconsulted: the merge keys on id and file+line, not on
// which files moved in the delta.
func Reconcile(cfg *config.Config, req *review.Request, newIssues []review.Issue, diff *review.ParsedDiff) ([]review.Issue, error) {
	if len(req.PreviousIssues) == 0 {
		return newIssues, nil
	}

	threshold := cfg.Defaults.ReconcileSimilarityThreshold
	byID := indexByID(req.PreviousIssues)

	var reconciled []review.Issue
	processed := make(map[string]bool)

	for _, issue := range newIssues {
		id := issue.ID
		if id == "" {
			id = matchBySimilarity(issue, req.PreviousIssues, threshold)
		}

		prev, ok := byID[id]
		if !ok {
			if issue.ID == "" {
				issue.ID = uuid.NewString()
			}
			reconciled = append(reconciled, issue)
			continue
		}

		processed[id] = true
		reconciled = append(reconciled, merge(prev, issue, req.CurrentCommit))
	}

	for _, prev := range req.PreviousIssues {
		if prev.ID != "" && processed[prev.ID] {
			continue
		}
		if reportedAt(newIssues, prev.File, prev.Line) {
			continue
		}
		reconciled = append(reconciled, carryForward(prev))
	}

	return reconciled, nil
}

func indexByID(prev []review.PreviousIssue) map[string]review.PreviousIssue {
	byID := make(map[string]review.PreviousIssue, len(prev))
	for _, p := range prev {
		if p.ID != "" {
			byID[p.ID] = p
		}
	}
	return byID
}

// matchBySimilarity looks for an OPEN previous issue in the same file whose
// reason is similar enough to adopt, so the LLM doesn't need to echo back
// an opaque id it was never shown verbatim.
func matchBySimilarity(issue review.Issue, prev []review.PreviousIssue, threshold float64) string {
	for _, p := range prev {
		if p.Status != review.StatusOpen {
			continue
		}
		if p.File != issue.File {
			continue
		}
		if similarity.IsSimilar(issue.Reason, p.Reason, threshold) {
			return p.ID
		}
	}
	return ""
}

func reportedAt(issues []review.Issue, file, line string) bool {
	for _, issue := range issues {
		if issue.File == file && issue.Line == line {
			return true
		}
	}
	return false
}

// isSuppressed reports whether a previous issue's status means it should
// never be resurfaced as open, regardless of what the LLM now reports.
func isSuppressed(status review.IssueStatus) bool {
	return status == review.StatusResolved || status == review.StatusIgnored
}

// merge combines a matched previous issue with the LLM's new report for the
// same id. The previous issue's reason, suggested fix, and metadata always
// win; only the resolved transition and its explanation come from the new
// report, and only on first transition — a previous issue already
// suppressed is never reopened.
func merge(prev review.PreviousIssue, newIssue review.Issue, currentCommit string) review.Issue {
	prevSuppressed := isSuppressed(prev.Status)
	llmSaysResolved := newIssue.IsResolved

	isResolved := prevSuppressed || llmSaysResolved

	var explanation, resolvedCommit string
	switch {
	case prevSuppressed:
		resolvedCommit = prev.ResolvedInCommit
	case llmSaysResolved:
		explanation = newIssue.Reason
		resolvedCommit = currentCommit
	}

	return review.Issue{
		ID:                      prev.ID,
		Severity:                prev.Severity,
		Category:                prev.Category,
		File:                    firstNonEmpty(prev.File, newIssue.File),
		Line:                    firstNonEmpty(prev.Line, newIssue.Line),
		Reason:                  prev.Reason,
		SuggestedFixDescription: prev.SuggestedFixDescription,
		SuggestedFixDiff:        prev.SuggestedFixDiff,
		IsResolved:              isResolved,
		ResolutionExplanation:   explanation,
		ResolvedInCommit:        resolvedCommit,
		Visibility:              prev.Visibility,
		CodeSnippet:             prev.CodeSnippet,
		PRVersion:               prev.PRVersion,
	}
}

// carryForward preserves a previous issue the new pass never touched at
// all: no matching id, and no new issue landed at the same file+line.
func carryForward(prev review.PreviousIssue) review.Issue {
	suppressed := isSuppressed(prev.Status)
	var resolvedCommit string
	if suppressed {
		resolvedCommit = prev.ResolvedInCommit
	}

	return review.Issue{
		ID:                      prev.ID,
		Severity:                prev.Severity,
		Category:                prev.Category,
		File:                    prev.File,
		Line:                    prev.Line,
		Reason:                  prev.Reason,
		SuggestedFixDescription: prev.SuggestedFixDescription,
		SuggestedFixDiff:        prev.SuggestedFixDiff,
		IsResolved:              suppressed,
		ResolvedInCommit:        resolvedCommit,
		Visibility:              prev.Visibility,
		CodeSnippet:             prev.CodeSnippet,
		PRVersion:               prev.PRVersion,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
