package postprocess

import (
	"strconv"
	"strings"

	"github.com/rostilos/codecrow/pkg/review"
	"github.com/rostilos/codecrow/pkg/similarity"
)

// dedupWithinFile groups issues by file and merges any cluster whose
// pairwise similarity score clears the configured threshold. Unlike
// pkg/batchreview's cross-batch dedup (a single reason-similarity ratio),
// this score blends four signals because within-file duplicates from
// different stages often differ in wording but agree on location and
// category.
func (p *Processor) dedupWithinFile(issues []review.Issue) []review.Issue {
	threshold := p.cfg.Defaults.WithinFileDedupThreshold

	byFile := make(map[string][]review.Issue)
	var order []string
	for _, issue := range issues {
		if _, ok := byFile[issue.File]; !ok {
			order = append(order, issue.File)
		}
		byFile[issue.File] = append(byFile[issue.File], issue)
	}

	var out []review.Issue
	for _, file := range order {
		out = append(out, mergeClusters(byFile[file], threshold)...)
	}
	return out
}

func mergeClusters(issues []review.Issue, threshold float64) []review.Issue {
	if len(issues) < 2 {
		return issues
	}

	merged := make([]bool, len(issues))
	var result []review.Issue

	for i, a := range issues {
		if merged[i] {
			continue
		}
		cluster := []review.Issue{a}
		for j := i + 1; j < len(issues); j++ {
			if merged[j] {
				continue
			}
			if issueSimilarity(a, issues[j]) >= threshold {
				cluster = append(cluster, issues[j])
				merged[j] = true
			}
		}
		if len(cluster) == 1 {
			result = append(result, a)
		} else {
			result = append(result, mergeCluster(cluster))
		}
	}
	return result
}

// issueSimilarity blends keyword overlap, sequence similarity, line
// proximity, and category match into a single score in [0, 1].
func issueSimilarity(a, b review.Issue) float64 {
	keywordOverlap := keywordOverlapScore(a.Reason, b.Reason)
	sequenceSim := similarity.Ratio(strings.ToLower(a.Reason), strings.ToLower(b.Reason))
	lineProximity := lineProximityScore(a.Line, b.Line)
	categoryMatch := 0.0
	if a.Category == b.Category {
		categoryMatch = 1.0
	}

	return 0.4*keywordOverlap + 0.3*sequenceSim + 0.2*lineProximity + 0.1*categoryMatch
}

// keywordOverlapScore combines a raw Jaccard-style overlap with the
// edit-distance corroboration pkg/similarity provides, so near-miss
// tokenization ("nullPointer" vs "null_pointer") still nudges the score up.
func keywordOverlapScore(reasonA, reasonB string) float64 {
	ka := extractCoreKeywords(reasonA)
	kb := extractCoreKeywords(reasonB)
	if len(ka) == 0 || len(kb) == 0 {
		return 0
	}

	setA := toSet(ka)
	overlap := 0
	for _, k := range kb {
		if setA[k] {
			overlap++
		}
	}
	maxLen := len(ka)
	if len(kb) > maxLen {
		maxLen = len(kb)
	}
	rawOverlap := float64(overlap) / float64(maxLen)

	edit := similarity.KeywordEditDistanceScore(ka, kb)
	if edit > rawOverlap {
		return edit
	}
	return rawOverlap
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func lineProximityScore(lineA, lineB string) float64 {
	a, okA := parseLine(lineA)
	b, okB := parseLine(lineB)
	if !okA || !okB {
		return 0
	}
	distance := a - b
	if distance < 0 {
		distance = -distance
	}
	score := 1 - float64(distance)/50
	if score < 0 {
		return 0
	}
	return score
}

var severityRank = map[review.Severity]int{
	review.SeverityHigh:   3,
	review.SeverityMedium: 2,
	review.SeverityLow:    1,
	review.SeverityInfo:   0,
}

// mergeCluster combines a group of similar issues into one: the issue
// with the best non-empty diff anchors the result, the cluster's highest
// severity wins, distinct core insights from every reason are folded in,
// and the line number is the cluster's minimum.
func mergeCluster(cluster []review.Issue) review.Issue {
	best := cluster[0]
	for _, issue := range cluster[1:] {
		if diffQuality(issue.SuggestedFixDiff) > diffQuality(best.SuggestedFixDiff) {
			best = issue
		}
	}

	highest := cluster[0].Severity
	for _, issue := range cluster[1:] {
		if severityRank[issue.Severity] > severityRank[highest] {
			highest = issue.Severity
		}
	}

	insights := make(map[string]bool)
	var ordered []string
	for _, issue := range cluster {
		core := coreInsight(issue.Reason)
		if core == "" || insights[core] {
			continue
		}
		insights[core] = true
		ordered = append(ordered, core)
	}

	reason := best.Reason
	if len(ordered) > 1 {
		reason = reason + "\n\nNote: " + strconv.Itoa(len(cluster)) + " similar instances of this issue were found."
	}

	minLine := cluster[0].Line
	minN, _ := parseLine(minLine)
	for _, issue := range cluster[1:] {
		n, ok := parseLine(issue.Line)
		if ok && (minLine == "" || n < minN) {
			minN = n
			minLine = issue.Line
		}
	}

	merged := best
	merged.Severity = highest
	merged.Reason = reason
	merged.Line = minLine
	return merged
}

func diffQuality(diff string) int {
	if !isValidDiff(diff) {
		return 0
	}
	return len(diff)
}

func coreInsight(reason string) string {
	core := reason
	if idx := strings.Index(core, "."); idx >= 0 {
		core = core[:idx]
	}
	if len(core) > 100 {
		core = core[:100]
	}
	return strings.TrimSpace(core)
}
