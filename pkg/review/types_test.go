package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrichment_HasData(t *testing.T) {
	var nilEnrichment *Enrichment
	assert.False(t, nilEnrichment.HasData())

	empty := &Enrichment{}
	assert.False(t, empty.HasData())

	withFiles := &Enrichment{Files: []FileMetadata{{Path: "a.go"}}}
	assert.True(t, withFiles.HasData())

	withRelationships := &Enrichment{Relationships: []FileRelationship{{SourceFile: "a.go", TargetFile: "b.go"}}}
	assert.True(t, withRelationships.HasData())
}

func TestChangedFilePaths(t *testing.T) {
	assert.Nil(t, ChangedFilePaths(nil))

	diff := &ParsedDiff{Files: []FileRecord{
		{Path: "a.go"},
		{Path: "b.go", Skipped: true, SkipReason: "binary"},
	}}
	assert.Equal(t, []string{"a.go", "b.go"}, ChangedFilePaths(diff))
}
