package review

// CrossFileAnalysisResult is the Stage-2 output: architecture-level
// findings spanning multiple files, informed by the plan's cross-file
// concerns and the deduplicated Stage-1 issues.
type CrossFileAnalysisResult struct {
	PRRiskLevel            string
	CrossFileIssues        []Issue
	DataFlowConcerns       []string
	ImmutabilityCheck      string
	DatabaseIntegrityCheck string
	PRRecommendation       string
	Confidence             float64
}

// Result is the final response of a review: the markdown comment plus the
// final issue list.
type Result struct {
	Comment string
	Issues  []Issue
}
