package batchreview

import "github.com/rostilos/codecrow/pkg/review"

// stage1Response mirrors stage1SchemaDescription; toIssues flattens every
// file's issues into one slice, stamping the file path onto each (the LLM
// is not trusted to repeat it correctly inside the issue object).
type stage1Response struct {
	Reviews []fileReview `json:"reviews"`
}

type fileReview struct {
	File            string        `json:"file"`
	AnalysisSummary string        `json:"analysis_summary"`
	Issues          []issueFields `json:"issues"`
	Confidence      float64       `json:"confidence"`
	Note            string        `json:"note"`
}

type issueFields struct {
	Severity                string `json:"severity"`
	Category                string `json:"category"`
	Line                    string `json:"line"`
	Reason                  string `json:"reason"`
	SuggestedFixDescription string `json:"suggestedFixDescription"`
	SuggestedFixDiff        string `json:"suggestedFixDiff"`
	ID                      string `json:"id"`
	IsResolved              bool   `json:"isResolved"`
}

func (r stage1Response) toIssues() []review.Issue {
	var issues []review.Issue
	for _, fr := range r.Reviews {
		for _, f := range fr.Issues {
			issues = append(issues, review.Issue{
				ID:                      f.ID,
				Severity:                review.NormalizeSeverity(f.Severity),
				Category:                review.NormalizeCategory(f.Category),
				File:                    fr.File,
				Line:                    f.Line,
				Reason:                  f.Reason,
				SuggestedFixDescription: f.SuggestedFixDescription,
				SuggestedFixDiff:        f.SuggestedFixDiff,
				IsResolved:              f.IsResolved,
			})
		}
	}
	return issues
}
