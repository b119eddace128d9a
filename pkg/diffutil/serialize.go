package diffutil

import (
	"strings"

	"github.com/rostilos/codecrow/pkg/review"
)

// Serialize concatenates each file record's stored diff text back into a
// single unified diff. For records under the size thresholds this
// reproduces the original section verbatim; oversized records serialize as
// their placeholder, which is the documented, intentional divergence from
// the round-trip property.
func Serialize(diff *review.ParsedDiff) string {
	if diff == nil || len(diff.Files) == 0 {
		return ""
	}
	parts := make([]string, 0, len(diff.Files))
	for _, f := range diff.Files {
		parts = append(parts, f.HunkText)
	}
	return strings.Join(parts, "\n")
}
