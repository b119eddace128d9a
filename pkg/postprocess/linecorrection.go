package postprocess

import (
	"strconv"
	"strings"

	"github.com/rostilos/codecrow/pkg/diffutil"
	"github.com/rostilos/codecrow/pkg/review"
)

// correctLineNumbers re-scores each issue's reported line against a window
// of candidate lines (diff-derived when available, falling back to full
// file content), and moves the issue to the best-scoring candidate when
// one beats the reported line.
func (p *Processor) correctLineNumbers(issues []review.Issue, diffText string, fileContents map[string]string) []review.Issue {
	window := p.cfg.Defaults.LineCorrectionWindow

	diffLines := buildDiffLineMap(diffText)

	out := make([]review.Issue, len(issues))
	for i, issue := range issues {
		out[i] = issue

		reported, ok := parseLine(issue.Line)
		if !ok || reported == 0 {
			continue
		}
		keywords := extractKeywords(issue.Reason)
		if len(keywords) == 0 {
			continue
		}

		candidates := diffLines[issue.File]
		if candidates == nil {
			candidates = fileLineMap(fileContents[issue.File])
		}
		if len(candidates) == 0 {
			continue
		}

		if corrected, found := bestLine(candidates, reported, window, keywords); found && corrected != reported {
			out[i].Line = strconv.Itoa(corrected)
		}
	}
	return out
}

// buildDiffLineMap parses diffText into per-file new-line-number → text
// maps via pkg/diffutil, the same parser the ingestion path uses.
func buildDiffLineMap(diffText string) map[string]map[int]string {
	if diffText == "" {
		return nil
	}
	parsed := diffutil.Parse(diffText, diffutil.Thresholds{})
	out := make(map[string]map[int]string, len(parsed.Files))
	for _, f := range parsed.Files {
		out[f.Path] = diffutil.LineMap(f)
	}
	return out
}

func fileLineMap(content string) map[int]string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	out := make(map[int]string, len(lines))
	for i, line := range lines {
		out[i+1] = line
	}
	return out
}

// bestLine scans [reported-window, reported+window] for the candidate
// line with the highest keyword-hit count minus a small distance penalty,
// returning found=false when nothing in the window scores above zero.
func bestLine(candidates map[int]string, reported, window int, keywords []string) (int, bool) {
	winner := reported
	bestScore := 0.0

	lo := reported - window
	if lo < 1 {
		lo = 1
	}
	for n := lo; n <= reported+window; n++ {
		text, ok := candidates[n]
		if !ok {
			continue
		}
		lower := strings.ToLower(text)
		score := 0
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				score++
			}
		}
		distance := n - reported
		if distance < 0 {
			distance = -distance
		}
		adjusted := float64(score) - float64(distance)*0.1

		if adjusted > bestScore {
			bestScore = adjusted
			winner = n
		}
	}

	return winner, bestScore > 0
}

func parseLine(line string) (int, bool) {
	n := 0
	found := false
	for _, r := range line {
		if r < '0' || r > '9' {
			break
		}
		found = true
		n = n*10 + int(r-'0')
	}
	return n, found
}
