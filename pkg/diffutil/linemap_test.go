package diffutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineMap_MapsAddedAndContextLinesToNewLineNumbers(t *testing.T) {
	parsed := Parse(sampleDiff, Thresholds{MaxDiffBytesPerFile: 25 * 1024, MaxHunkLines: 1000})
	require.NotEmpty(t, parsed.Files)

	lines := LineMap(parsed.Files[0])
	assert.Equal(t, "package foo", lines[1])
	assert.Equal(t, `import "fmt"`, lines[2])
}

func TestLineMap_DeletedLinesDoNotConsumeNewLineNumbers(t *testing.T) {
	deletion := `diff --git a/a.go b/a.go
--- a/a.go
+++ b/a.go
@@ -1,3 +1,2 @@
 package a
-func old() {}
+func new() {}
`
	parsed := Parse(deletion, Thresholds{MaxDiffBytesPerFile: 25 * 1024, MaxHunkLines: 1000})
	require.Len(t, parsed.Files, 1)

	lines := LineMap(parsed.Files[0])
	assert.Equal(t, "package a", lines[1])
	assert.Equal(t, "func new() {}", lines[2])
}
