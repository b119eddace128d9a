package review

// BatchItem pairs a file record with the batching metadata the prompt
// builder and cross-batch dedup pass need: its priority, whether it has
// relationships to other files in the same batch, and how strong those
// relationships are.
type BatchItem struct {
	File                FileRecord
	Priority            Priority
	HasRelationships    bool
	RelationshipStrength float64
	RelatedInBatch      []string
}

// Batch is an ordered group of files reviewed together in a single Stage-1
// LLM call.
type Batch struct {
	Items []BatchItem
}

// Paths returns the file paths in this batch, in order.
func (b Batch) Paths() []string {
	paths := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		paths = append(paths, item.File.Path)
	}
	return paths
}
