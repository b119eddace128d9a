package batching

import (
	"sort"

	"github.com/rostilos/codecrow/pkg/review"
)

// Options tunes batch packing; both fields come from config.Defaults.
type Options struct {
	MaxBatchSize int
	MinBatchSize int
}

// Batch groups a plan's reviewable files into Stage-1 batches, keeping
// related files (by enrichment relationship or directory proximity)
// together and preferring larger, higher-priority components first. Files
// present in the diff but skipped (deleted/binary/oversized) are excluded;
// files in the plan's skip list are excluded by construction, since they
// never appear in a FileGroup.
func Batch(plan *review.Plan, diff *review.ParsedDiff, enrichment *review.Enrichment, opts Options) []review.Batch {
	records := indexRecords(diff)
	g := buildGraph(plan, enrichment)
	priorityOf := planPriorities(plan)

	components := g.connectedComponents()
	sortComponentsBySizeThenPriority(components, priorityOf)

	var batches []review.Batch
	processed := make(map[string]bool)

	for _, component := range components {
		remaining := filterOut(component, processed)
		if len(remaining) == 0 {
			continue
		}
		sortByStrengthThenPriority(remaining, g, priorityOf)

		var current review.Batch
		for _, path := range remaining {
			rec, ok := records[path]
			if !ok {
				continue
			}
			n := g.nodes[path]
			item := review.BatchItem{
				File:                 rec,
				Priority:             priorityOf[path],
				HasRelationships:     len(n.related) > 0,
				RelationshipStrength: n.relationshipStrength,
				RelatedInBatch:       relatedAlreadyInBatch(n, current),
			}
			current.Items = append(current.Items, item)
			processed[path] = true

			if len(current.Items) >= opts.MaxBatchSize {
				batches = append(batches, current)
				current = review.Batch{}
			}
		}
		if len(current.Items) > 0 {
			batches = append(batches, current)
		}
	}

	batches = append(batches, orphanBatches(plan, records, processed, opts.MaxBatchSize)...)

	return mergeSmallBatches(batches, opts.MaxBatchSize)
}

func indexRecords(diff *review.ParsedDiff) map[string]review.FileRecord {
	out := make(map[string]review.FileRecord, len(diff.Files))
	for _, f := range diff.Files {
		if f.Skipped {
			continue
		}
		out[f.Path] = f
	}
	return out
}

func planPriorities(plan *review.Plan) map[string]review.Priority {
	out := make(map[string]review.Priority)
	for _, group := range plan.Groups {
		for _, f := range group.Files {
			out[f.Path] = group.Priority
		}
	}
	return out
}

func filterOut(paths []string, processed map[string]bool) []string {
	var out []string
	for _, p := range paths {
		if !processed[p] {
			out = append(out, p)
		}
	}
	return out
}

func relatedAlreadyInBatch(n *node, current review.Batch) []string {
	var out []string
	for _, item := range current.Items {
		if n.related[item.File.Path] {
			out = append(out, item.File.Path)
		}
	}
	return out
}

func sortComponentsBySizeThenPriority(components [][]string, priorityOf map[string]review.Priority) {
	rank := func(comp []string) int {
		best := len(priorityRankOrder)
		for _, p := range comp {
			if r := priorityOf[p].Rank(); r < best {
				best = r
			}
		}
		return best
	}
	sort.SliceStable(components, func(i, j int) bool {
		if len(components[i]) != len(components[j]) {
			return len(components[i]) > len(components[j])
		}
		return rank(components[i]) < rank(components[j])
	})
}

var priorityRankOrder = []review.Priority{
	review.PriorityCritical, review.PriorityHigh, review.PriorityMedium, review.PriorityLow,
}

func sortByStrengthThenPriority(paths []string, g *graph, priorityOf map[string]review.Priority) {
	sort.SliceStable(paths, func(i, j int) bool {
		si, sj := g.nodes[paths[i]].relationshipStrength, g.nodes[paths[j]].relationshipStrength
		if si != sj {
			return si > sj
		}
		pi, pj := priorityOf[paths[i]].Rank(), priorityOf[paths[j]].Rank()
		if pi != pj {
			return pi < pj
		}
		return paths[i] < paths[j]
	})
}

// orphanBatches packs any plan file that never made it into a component —
// a defensive fallback for when the graph omits a planned file entirely —
// into priority-ordered batches of their own.
func orphanBatches(plan *review.Plan, records map[string]review.FileRecord, processed map[string]bool, maxBatchSize int) []review.Batch {
	var orphans []string
	for _, group := range plan.Groups {
		for _, f := range group.Files {
			if !processed[f.Path] {
				if _, ok := records[f.Path]; ok {
					orphans = append(orphans, f.Path)
					processed[f.Path] = true
				}
			}
		}
	}
	if len(orphans) == 0 {
		return nil
	}

	priorityOf := planPriorities(plan)
	sort.Slice(orphans, func(i, j int) bool {
		pi, pj := priorityOf[orphans[i]].Rank(), priorityOf[orphans[j]].Rank()
		if pi != pj {
			return pi < pj
		}
		return orphans[i] < orphans[j]
	})

	var batches []review.Batch
	for i := 0; i < len(orphans); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(orphans) {
			end = len(orphans)
		}
		var b review.Batch
		for _, path := range orphans[i:end] {
			b.Items = append(b.Items, review.BatchItem{
				File:     records[path],
				Priority: priorityOf[path],
			})
		}
		batches = append(batches, b)
	}
	return batches
}

// mergeSmallBatches groups batches by their dominant priority, then
// greedily concatenates consecutive same-priority batches up to
// maxBatchSize, reducing the number of tiny LLM calls without crossing the
// priority a batch's content was planned around.
func mergeSmallBatches(batches []review.Batch, maxBatchSize int) []review.Batch {
	if len(batches) == 0 {
		return batches
	}

	byPriority := make(map[review.Priority][]review.Batch)
	var order []review.Priority
	for _, b := range batches {
		if len(b.Items) == 0 {
			continue
		}
		p := dominantPriority(b)
		if _, seen := byPriority[p]; !seen {
			order = append(order, p)
		}
		byPriority[p] = append(byPriority[p], b)
	}

	var merged []review.Batch
	for _, p := range order {
		var current review.Batch
		for _, b := range byPriority[p] {
			if len(current.Items)+len(b.Items) <= maxBatchSize {
				current.Items = append(current.Items, b.Items...)
			} else {
				if len(current.Items) > 0 {
					merged = append(merged, current)
				}
				current = b
			}
		}
		if len(current.Items) > 0 {
			merged = append(merged, current)
		}
	}
	return merged
}

func dominantPriority(b review.Batch) review.Priority {
	counts := make(map[review.Priority]int)
	for _, item := range b.Items {
		counts[item.Priority]++
	}
	var best review.Priority
	bestCount := -1
	for _, p := range priorityRankOrder {
		if counts[p] > bestCount {
			best = p
			bestCount = counts[p]
		}
	}
	return best
}
