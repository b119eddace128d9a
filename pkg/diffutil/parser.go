// Package diffutil parses unified diff text into review.FileRecords and
// serializes them back, enforcing the per-file size thresholds the data
// model requires. It has no knowledge of batching, LLMs, or the pipeline —
// callers hand it a raw diff string and get back ordered file records.
package diffutil

import (
	"regexp"
	"strings"

	"github.com/rostilos/codecrow/pkg/review"
)

var gitDiffHeader = regexp.MustCompile(`^diff --git a/(.*) b/(.*)$`)

// Thresholds bounds the large-content handling Parse applies. Zero fields
// are not defaulted here; callers pass config.Defaults directly.
type Thresholds struct {
	MaxDiffBytesPerFile int
	MaxHunkLines        int
}

// Parse splits unified diff text into one review.FileRecord per file
// section, in the order the sections appeared. Oversized sections are
// retained with a placeholder body and marked skipped rather than dropped,
// so the caller can still report "N files skipped: too large".
func Parse(diffText string, t Thresholds) *review.ParsedDiff {
	sections := splitSections(diffText)
	out := &review.ParsedDiff{Files: make([]review.FileRecord, 0, len(sections))}
	for _, sec := range sections {
		out.Files = append(out.Files, buildRecord(sec, t))
	}
	return out
}

// section is the raw lines belonging to one "diff --git" block.
type section struct {
	lines []string
}

func splitSections(diffText string) []section {
	var sections []section
	var current *section

	for _, line := range strings.Split(diffText, "\n") {
		if gitDiffHeader.MatchString(line) {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &section{lines: []string{line}}
			continue
		}
		if current != nil {
			current.lines = append(current.lines, line)
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}

func buildRecord(sec section, t Thresholds) review.FileRecord {
	raw := strings.Join(sec.lines, "\n")
	header := gitDiffHeader.FindStringSubmatch(sec.lines[0])

	rec := review.FileRecord{
		ChangeType: review.ChangeModified,
		HunkText:   raw,
	}
	if len(header) == 3 {
		rec.Path = header[2]
	}

	for _, line := range sec.lines[1:] {
		switch {
		case strings.HasPrefix(line, "new file mode"):
			rec.ChangeType = review.ChangeAdded
		case strings.HasPrefix(line, "deleted file mode"):
			rec.ChangeType = review.ChangeDeleted
		case strings.HasPrefix(line, "rename from "):
			rec.OldPath = strings.TrimPrefix(line, "rename from ")
			rec.ChangeType = review.ChangeRenamed
		case strings.HasPrefix(line, "rename to "):
			rec.Path = strings.TrimPrefix(line, "rename to ")
		case strings.HasPrefix(line, "Binary files ") && strings.HasSuffix(line, " differ"):
			rec.ChangeType = review.ChangeBinary
		case strings.HasPrefix(line, "GIT binary patch"):
			rec.ChangeType = review.ChangeBinary
		case strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---"):
			// file marker, not a content line
		case strings.HasPrefix(line, "+"):
			rec.Additions++
		case strings.HasPrefix(line, "-"):
			rec.Deletions++
		}
	}

	applyThresholds(&rec, sec, t)

	if rec.ChangeType.IsSkippable() {
		rec.Skipped = true
		if rec.SkipReason == "" {
			rec.SkipReason = strings.ToLower(string(rec.ChangeType))
		}
	}

	return rec
}

func applyThresholds(rec *review.FileRecord, sec section, t Thresholds) {
	if t.MaxDiffBytesPerFile > 0 && len(rec.HunkText) > t.MaxDiffBytesPerFile {
		rec.Skipped = true
		rec.SkipReason = "exceeds max diff bytes per file threshold"
		rec.HunkText = review.OversizedDiffPlaceholder
		return
	}
	if t.MaxHunkLines > 0 && len(sec.lines) > t.MaxHunkLines {
		rec.Skipped = true
		rec.SkipReason = "exceeds max hunk lines threshold"
		rec.HunkText = review.OversizedDiffPlaceholder
	}
}
