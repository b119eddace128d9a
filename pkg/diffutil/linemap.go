package diffutil

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rostilos/codecrow/pkg/review"
)

var hunkHeader = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// LineMap walks a file's stored hunk text and returns, for every line that
// exists in the new version of the file, the new-line-number it landed on
// mapped to its text (without the leading +/space marker). Deleted lines
// carry no new-line-number and are omitted. Used by the Post-Processor's
// line-number correction pass as a candidate source when full file content
// isn't available.
func LineMap(rec review.FileRecord) map[int]string {
	lines := make(map[int]string)
	newLine := 0

	for _, raw := range strings.Split(rec.HunkText, "\n") {
		if m := hunkHeader.FindStringSubmatch(raw); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				newLine = n
			}
			continue
		}
		switch {
		case strings.HasPrefix(raw, "+++") || strings.HasPrefix(raw, "---"):
			continue
		case strings.HasPrefix(raw, "+"):
			lines[newLine] = strings.TrimPrefix(raw, "+")
			newLine++
		case strings.HasPrefix(raw, "-"):
			// deleted line, does not advance the new-file counter
		case strings.HasPrefix(raw, " "):
			lines[newLine] = strings.TrimPrefix(raw, " ")
			newLine++
		}
	}

	return lines
}
