package crossfile

import (
	"strings"

	"github.com/rostilos/codecrow/pkg/review"
	"github.com/rostilos/codecrow/pkg/structured"
)

var validPRRiskLevels = map[string]bool{
	string(review.PriorityCritical): true,
	string(review.PriorityHigh):     true,
	string(review.PriorityMedium):   true,
	string(review.PriorityLow):      true,
}

// normalizePRRiskLevel uppercases and validates the reported risk level,
// defaulting to MEDIUM on anything unrecognized, mirroring the
// Severity/Category normalization contract the rest of the pipeline uses.
func normalizePRRiskLevel(raw string) string {
	level := strings.ToUpper(strings.TrimSpace(raw))
	if validPRRiskLevels[level] {
		return level
	}
	return string(review.PriorityMedium)
}

var resultSchema = structured.MapSchema{
	SchemaName:  "stage2_cross_file_analysis",
	Description: resultSchemaDescription,
}

type crossFileIssueResponse struct {
	File                    string `json:"file"`
	Line                    string `json:"line"`
	Severity                string `json:"severity"`
	Category                string `json:"category"`
	Reason                  string `json:"reason"`
	SuggestedFixDescription string `json:"suggestedFixDescription"`
	SuggestedFixDiff        string `json:"suggestedFixDiff"`
}

type crossFileResponse struct {
	PRRiskLevel            string                   `json:"prRiskLevel"`
	CrossFileIssues        []crossFileIssueResponse `json:"crossFileIssues"`
	DataFlowConcerns       []string                 `json:"dataFlowConcerns"`
	ImmutabilityCheck      string                   `json:"immutabilityCheck"`
	DatabaseIntegrityCheck string                   `json:"databaseIntegrityCheck"`
	PRRecommendation       string                   `json:"prRecommendation"`
	Confidence             float64                  `json:"confidence"`
}

func (r *crossFileResponse) toResult() *review.CrossFileAnalysisResult {
	issues := make([]review.Issue, 0, len(r.CrossFileIssues))
	for _, ci := range r.CrossFileIssues {
		issues = append(issues, review.Issue{
			Severity:                review.NormalizeSeverity(ci.Severity),
			Category:                review.NormalizeCategory(ci.Category),
			File:                    ci.File,
			Line:                    ci.Line,
			Reason:                  ci.Reason,
			SuggestedFixDescription: ci.SuggestedFixDescription,
			SuggestedFixDiff:        ci.SuggestedFixDiff,
		})
	}

	return &review.CrossFileAnalysisResult{
		PRRiskLevel:            normalizePRRiskLevel(r.PRRiskLevel),
		CrossFileIssues:        issues,
		DataFlowConcerns:       r.DataFlowConcerns,
		ImmutabilityCheck:      r.ImmutabilityCheck,
		DatabaseIntegrityCheck: r.DatabaseIntegrityCheck,
		PRRecommendation:       r.PRRecommendation,
		Confidence:             r.Confidence,
	}
}
