package postprocess

import (
	"strings"

	"github.com/rostilos/codecrow/pkg/review"
)

var diffMarkers = []string{"---", "+++", "@@", "\n-", "\n+"}

// isValidDiff reports whether a suggested fix looks like an actual diff:
// non-trivial length and at least one recognizable unified-diff marker.
func isValidDiff(diff string) bool {
	if noDiffSentinels[diff] {
		return false
	}
	if len(strings.TrimSpace(diff)) < 10 {
		return false
	}
	for _, marker := range diffMarkers {
		if strings.Contains(diff, marker) {
			return true
		}
	}
	return false
}

// applyDiffHygiene strips markdown code fences from each issue's suggested
// fix, flags (without dropping) a diff that still fails validation after
// stripping, and redacts any secret-shaped text the diff or reason picked
// up from tool-fetched file content.
func (p *Processor) applyDiffHygiene(issues []review.Issue) []review.Issue {
	out := make([]review.Issue, len(issues))
	for i, issue := range issues {
		out[i] = issue
		if issue.SuggestedFixDiff == "" {
			continue
		}

		cleaned := stripFences(issue.SuggestedFixDiff)
		out[i].SuggestedFixDiff = p.redact(cleaned)
		if !isValidDiff(cleaned) {
			out[i].NeedsDiffReview = true
		}
	}
	return out
}

func (p *Processor) redact(text string) string {
	if p.masker == nil {
		return text
	}
	return p.masker.Redact(text)
}

func stripFences(diff string) string {
	lines := strings.Split(diff, "\n")
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "```" || trimmed == "```diff" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
