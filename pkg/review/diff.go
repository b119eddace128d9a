package review

// ChangeType classifies how a file was touched in a diff.
type ChangeType string

const (
	ChangeAdded    ChangeType = "ADDED"
	ChangeModified ChangeType = "MODIFIED"
	ChangeDeleted  ChangeType = "DELETED"
	ChangeRenamed  ChangeType = "RENAMED"
	ChangeBinary   ChangeType = "BINARY"
)

// OversizedDiffPlaceholder replaces the diff body of a file that exceeded
// the configured size threshold. The exact text is part of the contract
// tested in pkg/diffutil's round-trip property.
const OversizedDiffPlaceholder = "[diff omitted: exceeds size threshold]"

// FileRecord is one file's worth of diff information, independent of how it
// was parsed. The orchestrator consumes a slice of these; it never parses
// diff text itself.
type FileRecord struct {
	Path       string
	OldPath    string
	ChangeType ChangeType
	Additions  int
	Deletions  int
	HunkText   string
	Content    string // full file content, when available from enrichment
	Skipped    bool
	SkipReason string
}

// ParsedDiff is the output of diff ingestion: an ordered sequence of file
// records, in the order file sections appeared in the original diff text.
type ParsedDiff struct {
	Files []FileRecord
}

// IsSkippable reports whether a change type is always skipped regardless of
// size, per the DELETED/BINARY invariant in the data model.
func (t ChangeType) IsSkippable() bool {
	return t == ChangeDeleted || t == ChangeBinary
}
