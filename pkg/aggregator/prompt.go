package aggregator

import (
	"fmt"
	"strings"

	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/review"
)

const systemPrompt = `You write the final review comment for a pull request, in markdown. You
are given the plan, every issue found across all stages, and (if present)
a cross-file analysis. Organize the comment by severity, lead with the
overall recommendation, and write suggested fixes as fenced diff blocks
when a suggestedFixDiff is present. Be direct; do not pad the comment
with generic praise. Respond with markdown only, nothing else.`

// buildMessages assembles the aggregation prompt. In incremental mode the
// user message is prefixed with summary counts so the LLM can open the
// comment with a one-line status instead of re-deriving it from the issue
// list itself.
func buildMessages(req *review.Request, plan *review.Plan, issues []review.Issue, crossFile *review.CrossFileAnalysisResult, incremental bool) []llmport.ConversationMessage {
	var user strings.Builder

	if incremental {
		writeIncrementalSummary(&user, req, issues)
	}

	user.WriteString("Plan summary:\n")
	user.WriteString(plan.Summary)
	user.WriteString("\n\n")

	user.WriteString("Issues:\n")
	if len(issues) == 0 {
		user.WriteString("(none found)\n")
	}
	for _, issue := range issues {
		status := "open"
		if issue.IsResolved {
			status = "resolved"
		}
		fmt.Fprintf(&user, "- [%s/%s/%s] %s:%s — %s\n", status, issue.Severity, issue.Category, issue.File, issue.Line, issue.Reason)
		if issue.SuggestedFixDiff != "" {
			fmt.Fprintf(&user, "  suggested fix diff:\n```diff\n%s\n```\n", issue.SuggestedFixDiff)
		}
	}
	user.WriteString("\n")

	if crossFile != nil {
		user.WriteString("Cross-file analysis:\n")
		fmt.Fprintf(&user, "PR risk level: %s\n", crossFile.PRRiskLevel)
		fmt.Fprintf(&user, "Recommendation: %s\n", crossFile.PRRecommendation)
		for _, concern := range crossFile.DataFlowConcerns {
			fmt.Fprintf(&user, "- data flow concern: %s\n", concern)
		}
		if crossFile.ImmutabilityCheck != "" {
			fmt.Fprintf(&user, "Immutability check: %s\n", crossFile.ImmutabilityCheck)
		}
		if crossFile.DatabaseIntegrityCheck != "" {
			fmt.Fprintf(&user, "Database integrity check: %s\n", crossFile.DatabaseIntegrityCheck)
		}
	}

	return []llmport.ConversationMessage{
		{Role: llmport.RoleSystem, Content: systemPrompt},
		{Role: llmport.RoleUser, Content: user.String()},
	}
}

// writeIncrementalSummary prefixes the prompt with previous/resolved/new/
// total counts, computed from the request's carried-over previous issues
// against the reconciled issue list this call was handed.
func writeIncrementalSummary(w *strings.Builder, req *review.Request, issues []review.Issue) {
	previousCount := len(req.PreviousIssues)

	previousIDs := make(map[string]bool, previousCount)
	for _, p := range req.PreviousIssues {
		if p.ID != "" {
			previousIDs[p.ID] = true
		}
	}

	resolvedNow := 0
	newlyFound := 0
	for _, issue := range issues {
		switch {
		case previousIDs[issue.ID] && issue.IsResolved:
			resolvedNow++
		case !previousIDs[issue.ID]:
			newlyFound++
		}
	}

	fmt.Fprintf(w, "Incremental update summary: %d previously reported, %d resolved in this update, %d newly found, %d total.\n\n",
		previousCount, resolvedNow, newlyFound, len(issues))
}
