package review

// Priority orders how urgently a file group needs review attention.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// priorityRank gives a total order over Priority for sorting; lower ranks
// first, matching the Python source's priority_order list.
var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:      1,
	PriorityMedium:    2,
	PriorityLow:       3,
}

// Rank returns the sort position of a priority; unknown priorities sort
// last, after LOW.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// PlanFile is one file's entry inside a FileGroup.
type PlanFile struct {
	Path       string
	FocusAreas []string
	RiskLevel  string
}

// FileGroup is a Stage-0 planning bucket: a priority plus the files the
// planner assigned to it and why.
type FileGroup struct {
	Priority  Priority
	Rationale string
	Files     []PlanFile
}

// SkippedFile records a file the planner decided not to review, with the
// reason surfaced to the caller.
type SkippedFile struct {
	Path   string
	Reason string
}

// UncategorizedGroupRationale is the synthetic rationale text stamped on
// the group the coordinator appends when the planner's coverage invariant
// would otherwise be violated.
const UncategorizedGroupRationale = "synthesized to satisfy full-coverage invariant: planner omitted this file"

// Plan is the Stage-0 Planner's output.
type Plan struct {
	Summary         string
	Groups          []FileGroup
	Skipped         []SkippedFile
	CrossFileConcerns []string
}

// EnsureCoverage appends a synthetic MEDIUM "uncategorized" group containing
// any file from allPaths not already present in a group or the skip list.
// This enforces the Plan invariant: groups ∪ skipped covers every changed
// file. Returns whether a synthetic group was added.
func (p *Plan) EnsureCoverage(allPaths []string) bool {
	covered := make(map[string]bool, len(allPaths))
	for _, g := range p.Groups {
		for _, f := range g.Files {
			covered[f.Path] = true
		}
	}
	for _, s := range p.Skipped {
		covered[s.Path] = true
	}

	var missing []PlanFile
	for _, path := range allPaths {
		if !covered[path] {
			missing = append(missing, PlanFile{Path: path, RiskLevel: "unknown"})
		}
	}
	if len(missing) == 0 {
		return false
	}

	p.Groups = append(p.Groups, FileGroup{
		Priority:  PriorityMedium,
		Rationale: UncategorizedGroupRationale,
		Files:     missing,
	})
	return true
}
