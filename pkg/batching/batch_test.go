package batching

import (
	"testing"

	"github.com/rostilos/codecrow/pkg/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planWith(groups ...review.FileGroup) *review.Plan {
	return &review.Plan{Groups: groups}
}

func diffWith(paths ...string) *review.ParsedDiff {
	var files []review.FileRecord
	for _, p := range paths {
		files = append(files, review.FileRecord{Path: p, ChangeType: review.ChangeModified})
	}
	return &review.ParsedDiff{Files: files}
}

func TestBatch_KeepsRelatedFilesTogether(t *testing.T) {
	plan := planWith(review.FileGroup{
		Priority: review.PriorityHigh,
		Files: []review.PlanFile{
			{Path: "a.go"}, {Path: "b.go"}, {Path: "c.go"},
		},
	})
	diff := diffWith("a.go", "b.go", "c.go")
	enrichment := &review.Enrichment{
		Relationships: []review.FileRelationship{
			{SourceFile: "a.go", TargetFile: "b.go", Type: review.RelationshipImports},
		},
	}

	batches := Batch(plan, diff, enrichment, Options{MaxBatchSize: 10, MinBatchSize: 1})
	require.Len(t, batches, 1)

	paths := batches[0].Paths()
	assert.Contains(t, paths, "a.go")
	assert.Contains(t, paths, "b.go")
	assert.Contains(t, paths, "c.go")
}

func TestBatch_SplitsComponentAtMaxBatchSize(t *testing.T) {
	plan := planWith(review.FileGroup{
		Priority: review.PriorityMedium,
		Files: []review.PlanFile{
			{Path: "a.go"}, {Path: "b.go"}, {Path: "c.go"}, {Path: "d.go"},
		},
	})
	diff := diffWith("a.go", "b.go", "c.go", "d.go")
	enrichment := &review.Enrichment{
		Relationships: []review.FileRelationship{
			{SourceFile: "a.go", TargetFile: "b.go", Type: review.RelationshipCalls},
			{SourceFile: "b.go", TargetFile: "c.go", Type: review.RelationshipCalls},
			{SourceFile: "c.go", TargetFile: "d.go", Type: review.RelationshipCalls},
		},
	}

	batches := Batch(plan, diff, enrichment, Options{MaxBatchSize: 2, MinBatchSize: 1})

	total := 0
	for _, b := range batches {
		assert.LessOrEqual(t, len(b.Items), 2)
		total += len(b.Items)
	}
	assert.Equal(t, 4, total)
}

func TestBatch_OrphanFileGetsOwnBatch(t *testing.T) {
	plan := planWith(review.FileGroup{
		Priority: review.PriorityLow,
		Files:    []review.PlanFile{{Path: "lonely.go"}},
	})
	diff := diffWith("lonely.go")

	batches := Batch(plan, diff, nil, Options{MaxBatchSize: 5, MinBatchSize: 1})
	require.Len(t, batches, 1)
	assert.Equal(t, []string{"lonely.go"}, batches[0].Paths())
}

func TestBatch_MergesSmallSamePriorityBatches(t *testing.T) {
	plan := planWith(
		review.FileGroup{Priority: review.PriorityHigh, Files: []review.PlanFile{{Path: "x1.go"}}},
		review.FileGroup{Priority: review.PriorityHigh, Files: []review.PlanFile{{Path: "x2.go"}}},
	)
	diff := diffWith("x1.go", "x2.go")

	batches := Batch(plan, diff, nil, Options{MaxBatchSize: 5, MinBatchSize: 1})
	require.Len(t, batches, 1)
	assert.ElementsMatch(t, []string{"x1.go", "x2.go"}, batches[0].Paths())
}

func TestBatch_DirectoryFallbackGroupsBySharedDirectory(t *testing.T) {
	plan := planWith(review.FileGroup{
		Priority: review.PriorityMedium,
		Files: []review.PlanFile{
			{Path: "pkg/foo/a.go"}, {Path: "pkg/foo/b.go"}, {Path: "pkg/bar/c.go"},
		},
	})
	diff := diffWith("pkg/foo/a.go", "pkg/foo/b.go", "pkg/bar/c.go")

	batches := Batch(plan, diff, nil, Options{MaxBatchSize: 10, MinBatchSize: 1})

	var fooBatch, barBatch review.Batch
	for _, b := range batches {
		for _, p := range b.Paths() {
			if p == "pkg/bar/c.go" {
				barBatch = b
			}
		}
	}
	_ = fooBatch
	assert.Contains(t, barBatch.Paths(), "pkg/bar/c.go")
}

func TestBatch_SkippedDiffFilesAreExcluded(t *testing.T) {
	plan := planWith(review.FileGroup{
		Priority: review.PriorityHigh,
		Files:    []review.PlanFile{{Path: "big.go"}, {Path: "small.go"}},
	})
	diff := &review.ParsedDiff{Files: []review.FileRecord{
		{Path: "big.go", Skipped: true, SkipReason: "oversized"},
		{Path: "small.go"},
	}}

	batches := Batch(plan, diff, nil, Options{MaxBatchSize: 5, MinBatchSize: 1})
	var allPaths []string
	for _, b := range batches {
		allPaths = append(allPaths, b.Paths()...)
	}
	assert.NotContains(t, allPaths, "big.go")
	assert.Contains(t, allPaths, "small.go")
}
