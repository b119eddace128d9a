package diffutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rostilos/codecrow/pkg/review"
)

const sampleDiff = `diff --git a/pkg/foo.go b/pkg/foo.go
index abc123..def456 100644
--- a/pkg/foo.go
+++ b/pkg/foo.go
@@ -1,3 +1,4 @@
 package foo
+import "fmt"

 func Foo() {}
diff --git a/pkg/new.go b/pkg/new.go
new file mode 100644
index 0000000..1111111
--- /dev/null
+++ b/pkg/new.go
@@ -0,0 +1,2 @@
+package foo
+
diff --git a/pkg/old.go b/pkg/old.go
deleted file mode 100644
index 2222222..0000000
--- a/pkg/old.go
+++ /dev/null
@@ -1,2 +0,0 @@
-package foo
-
diff --git a/pkg/renamed_old.go b/pkg/renamed_new.go
similarity index 100%
rename from pkg/renamed_old.go
rename to pkg/renamed_new.go
diff --git a/assets/logo.png b/assets/logo.png
index 3333333..4444444 100644
Binary files a/assets/logo.png and b/assets/logo.png differ
`

func TestParse_ClassifiesChangeTypes(t *testing.T) {
	parsed := Parse(sampleDiff, Thresholds{MaxDiffBytesPerFile: 25 * 1024, MaxHunkLines: 1000})
	require.Len(t, parsed.Files, 5)

	assert.Equal(t, "pkg/foo.go", parsed.Files[0].Path)
	assert.Equal(t, review.ChangeModified, parsed.Files[0].ChangeType)
	assert.Equal(t, 1, parsed.Files[0].Additions)
	assert.False(t, parsed.Files[0].Skipped)

	assert.Equal(t, "pkg/new.go", parsed.Files[1].Path)
	assert.Equal(t, review.ChangeAdded, parsed.Files[1].ChangeType)

	assert.Equal(t, "pkg/old.go", parsed.Files[2].Path)
	assert.Equal(t, review.ChangeDeleted, parsed.Files[2].ChangeType)
	assert.True(t, parsed.Files[2].Skipped)

	assert.Equal(t, "pkg/renamed_new.go", parsed.Files[3].Path)
	assert.Equal(t, "pkg/renamed_old.go", parsed.Files[3].OldPath)
	assert.Equal(t, review.ChangeRenamed, parsed.Files[3].ChangeType)

	assert.Equal(t, review.ChangeBinary, parsed.Files[4].ChangeType)
	assert.True(t, parsed.Files[4].Skipped)
}

func TestParse_OversizedFileGetsPlaceholderAndSkipped(t *testing.T) {
	huge := "diff --git a/big.go b/big.go\n" + strings.Repeat("+filler line of content\n", 2000)
	parsed := Parse(huge, Thresholds{MaxDiffBytesPerFile: 1024, MaxHunkLines: 1000})
	require.Len(t, parsed.Files, 1)
	assert.True(t, parsed.Files[0].Skipped)
	assert.Equal(t, review.OversizedDiffPlaceholder, parsed.Files[0].HunkText)
}

func TestParse_ExceedsHunkLineCountGetsPlaceholder(t *testing.T) {
	many := "diff --git a/big.go b/big.go\n" + strings.Repeat("+x\n", 1500)
	parsed := Parse(many, Thresholds{MaxDiffBytesPerFile: 1024 * 1024, MaxHunkLines: 1000})
	require.Len(t, parsed.Files, 1)
	assert.True(t, parsed.Files[0].Skipped)
	assert.Equal(t, review.OversizedDiffPlaceholder, parsed.Files[0].HunkText)
}

func TestRoundTrip_UnderThresholdReproducesInput(t *testing.T) {
	parsed := Parse(sampleDiff, Thresholds{MaxDiffBytesPerFile: 25 * 1024, MaxHunkLines: 1000})
	roundTripped := Serialize(parsed)
	assert.Equal(t, strings.TrimRight(sampleDiff, "\n"), strings.TrimRight(roundTripped, "\n"))
}

func TestParse_EmptyDiffYieldsNoFiles(t *testing.T) {
	parsed := Parse("", Thresholds{MaxDiffBytesPerFile: 1024, MaxHunkLines: 1000})
	assert.Empty(t, parsed.Files)
}
