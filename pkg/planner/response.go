package planner

import "github.com/rostilos/codecrow/pkg/review"

// planResponse mirrors the JSON shape described in planSchemaDescription.
// It exists only as a decode target; toPlan converts it into the domain
// review.Plan the rest of the pipeline consumes.
type planResponse struct {
	Summary            string           `json:"summary"`
	Groups             []groupResponse  `json:"groups"`
	Skipped            []skipResponse   `json:"skipped"`
	CrossFileConcerns  []string         `json:"cross_file_concerns"`
}

type groupResponse struct {
	Priority  string         `json:"priority"`
	Rationale string         `json:"rationale"`
	Files     []fileResponse `json:"files"`
}

type fileResponse struct {
	Path       string   `json:"path"`
	FocusAreas []string `json:"focus_areas"`
	RiskLevel  string   `json:"risk_level"`
}

type skipResponse struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (r planResponse) toPlan() *review.Plan {
	plan := &review.Plan{
		Summary:           r.Summary,
		CrossFileConcerns: append([]string(nil), r.CrossFileConcerns...),
	}

	for _, g := range r.Groups {
		group := review.FileGroup{
			Priority:  normalizePriority(g.Priority),
			Rationale: g.Rationale,
		}
		for _, f := range g.Files {
			group.Files = append(group.Files, review.PlanFile{
				Path:       f.Path,
				FocusAreas: f.FocusAreas,
				RiskLevel:  f.RiskLevel,
			})
		}
		plan.Groups = append(plan.Groups, group)
	}

	for _, s := range r.Skipped {
		plan.Skipped = append(plan.Skipped, review.SkippedFile{Path: s.Path, Reason: s.Reason})
	}

	return plan
}

func normalizePriority(raw string) review.Priority {
	switch review.Priority(raw) {
	case review.PriorityCritical, review.PriorityHigh, review.PriorityMedium, review.PriorityLow:
		return review.Priority(raw)
	default:
		return review.PriorityMedium
	}
}
