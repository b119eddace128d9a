package batchreview

import (
	"fmt"
	"strings"

	"github.com/rostilos/codecrow/pkg/review"
)

// previousIssuesSection builds the textual block instructing the LLM how
// to treat previously reported issues for the files in this batch: open
// issues it should re-check (marking isResolved=true and reusing the id if
// now fixed) and resolved issues it must never re-report. Returns "" when
// nothing in req.PreviousIssues touches this batch.
func previousIssuesSection(req *review.Request, batch review.Batch) string {
	inBatch := make(map[string]bool, len(batch.Items))
	for _, item := range batch.Items {
		inBatch[item.File.Path] = true
	}

	var open, resolved []review.PreviousIssue
	for _, pi := range req.PreviousIssues {
		if !inBatch[pi.File] {
			continue
		}
		switch pi.Status {
		case review.StatusOpen:
			open = append(open, pi)
		case review.StatusResolved:
			resolved = append(resolved, pi)
		}
	}
	if len(open) == 0 && len(resolved) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Previously Reported Issues For These Files\n\n")

	if len(open) > 0 {
		b.WriteString("Still open — check whether this version fixes them. If fixed, ")
		b.WriteString("set isResolved=true and reuse the same id. If still present, ")
		b.WriteString("report it again with the same id and isResolved=false.\n\n")
		for _, pi := range open {
			fmt.Fprintf(&b, "- id=%s %s:%s [%s] %s\n", pi.ID, pi.File, pi.Line, pi.Severity, pi.Reason)
		}
		b.WriteString("\n")
	}

	if len(resolved) > 0 {
		b.WriteString("Already resolved — do not report these again under any circumstances:\n\n")
		for _, pi := range resolved {
			fmt.Fprintf(&b, "- id=%s %s:%s %s\n", pi.ID, pi.File, pi.Line, pi.Reason)
		}
		b.WriteString("\n")
	}

	return b.String()
}
