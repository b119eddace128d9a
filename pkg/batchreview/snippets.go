package batchreview

import (
	"strings"

	"github.com/rostilos/codecrow/pkg/review"
)

const (
	maxSnippetsPerBatch = 10
	minSnippetLines     = 3
	maxSnippetLines     = 5
	minLineLength       = 10
)

// extractSnippets pulls small groups of added lines out of a file's hunk
// text to seed the semantic retrieval query: qualifying lines are grouped
// consecutive runs of 3-5, skipping blanks, comments, and bare braces.
func extractSnippets(hunkText string) []string {
	var snippets []string
	var current []string

	flush := func() {
		if len(current) >= minSnippetLines {
			snippets = append(snippets, strings.Join(current, "\n"))
		}
		current = nil
	}

	for _, line := range strings.Split(hunkText, "\n") {
		if !isQualifyingAddedLine(line) {
			flush()
			continue
		}
		content := strings.TrimPrefix(line, "+")
		current = append(current, content)
		if len(current) == maxSnippetLines {
			flush()
		}
	}
	flush()

	if len(snippets) > maxSnippetsPerBatch {
		snippets = snippets[:maxSnippetsPerBatch]
	}
	return snippets
}

func isQualifyingAddedLine(line string) bool {
	if !strings.HasPrefix(line, "+") || strings.HasPrefix(line, "+++") {
		return false
	}
	content := strings.TrimSpace(strings.TrimPrefix(line, "+"))
	if len(content) <= minLineLength {
		return false
	}
	if isBareBrace(content) {
		return false
	}
	return !isCommentLine(content)
}

func isBareBrace(s string) bool {
	switch s {
	case "{", "}", "};", "()", "});":
		return true
	default:
		return false
	}
}

func isCommentLine(s string) bool {
	for _, prefix := range []string{"//", "#", "/*", "*", "--"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// batchSnippets collects up to maxSnippetsPerBatch snippets across every
// file in a batch, in batch order, truncating once the cap is reached
// rather than per file.
func batchSnippets(batch review.Batch) []string {
	var all []string
	for _, item := range batch.Items {
		if len(all) >= maxSnippetsPerBatch {
			break
		}
		all = append(all, extractSnippets(item.File.HunkText)...)
	}
	if len(all) > maxSnippetsPerBatch {
		all = all[:maxSnippetsPerBatch]
	}
	return all
}
