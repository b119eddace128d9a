// Package postprocess implements the Post-Processor: a pure, no-LLM pass
// that restores dropped suggested fixes, corrects drifted line numbers,
// merges near-duplicate issues within a file, and sanitizes diffs before
// the result leaves the pipeline.
package postprocess

import (
	"strings"

	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/masking"
	"github.com/rostilos/codecrow/pkg/review"
)

// Processor runs the Post-Processor. It holds only process-lifetime
// collaborators: the config for its thresholds and the shared masking
// service for diff-hygiene redaction.
type Processor struct {
	cfg    *config.Config
	masker *masking.Service
}

func New(cfg *config.Config, masker *masking.Service) *Processor {
	return &Processor{cfg: cfg, masker: masker}
}

// PostProcess runs the four-step pass described in the package doc, in
// order: each step only ever narrows or corrects what's already present.
// It never creates an issue, changes an issue's id, or flips isResolved
// from true to false.
//
// previousIssues is typed review.PreviousIssue rather than review.Issue:
// the only previous-issue representation this pipeline carries on a
// request is review.Request.PreviousIssues, and restoration only ever
// reads a previous issue's suggested fix fields, which PreviousIssue
// already carries.
func (p *Processor) PostProcess(issues []review.Issue, diffText string, fileContents map[string]string, previousIssues []review.PreviousIssue) ([]review.Issue, error) {
	restored := restoreFromPrevious(issues, previousIssues)
	corrected := p.correctLineNumbers(restored, diffText, fileContents)
	deduped := p.dedupWithinFile(corrected)
	cleaned := p.applyDiffHygiene(deduped)
	return cleaned, nil
}

// noDiffSentinels are suggestedFixDiff/suggestedFixDescription values that
// count as "not actually provided" for restoration purposes, matching the
// placeholder text an LLM is instructed to use when it has nothing to add.
var noDiffSentinels = map[string]bool{
	"":                          true,
	"No suggested fix provided": true,
	"no suggested fix provided": true,
}

// restoreFromPrevious copies a previous issue's suggested fix fields onto
// a matching unresolved new issue when the new report dropped them — LLMs
// commonly omit the fix when simply re-confirming a persisting issue.
func restoreFromPrevious(issues []review.Issue, previousIssues []review.PreviousIssue) []review.Issue {
	if len(previousIssues) == 0 {
		return issues
	}

	byID := make(map[string]review.PreviousIssue, len(previousIssues))
	for _, prev := range previousIssues {
		if prev.ID != "" {
			byID[prev.ID] = prev
		}
	}

	out := make([]review.Issue, len(issues))
	for i, issue := range issues {
		out[i] = issue
		if issue.ID == "" || issue.IsResolved {
			continue
		}
		prev, ok := byID[issue.ID]
		if !ok {
			continue
		}

		if isMissingFix(issue.SuggestedFixDiff) && !isMissingFix(prev.SuggestedFixDiff) {
			out[i].SuggestedFixDiff = prev.SuggestedFixDiff
		}
		if isMissingFix(issue.SuggestedFixDescription) && !isMissingFix(prev.SuggestedFixDescription) {
			out[i].SuggestedFixDescription = prev.SuggestedFixDescription
		}
	}
	return out
}

func isMissingFix(text string) bool {
	if noDiffSentinels[text] {
		return true
	}
	return len(strings.TrimSpace(text)) < 10
}
