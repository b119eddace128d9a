// Package retrieval talks to the external retrieval service that indexes
// repository content and answers context queries for a review. The service
// itself lives outside this module; this package only fixes the narrow
// Go-side contract and an HTTP implementation of it.
package retrieval

import (
	"context"
)

// Client is the narrow interface a pipeline stage needs from the
// retrieval service. A disabled or unreachable service is not an error
// condition for any method here — callers get an empty result and proceed,
// matching the Python client's "RAG disabled" fallback.
type Client interface {
	// PRContext fetches context relevant to the files changed in a PR:
	// related code, prior discussion, anything the service indexes.
	PRContext(ctx context.Context, q PRContextQuery) (*PRContext, error)

	// DeterministicContext resolves context by exact criteria — file
	// paths, semantic names — rather than semantic search, for cases
	// where the caller already knows what it's looking for.
	DeterministicContext(ctx context.Context, q DeterministicQuery) (*PRContext, error)

	// IndexPRFiles indexes a PR's changed files under PR-specific
	// metadata so later queries this request can prefer PR data over
	// stale branch data. Call before querying; a no-op on an empty or
	// disabled service.
	IndexPRFiles(ctx context.Context, req IndexPRFilesRequest) (*IndexResult, error)

	// DeletePRFiles removes a previously indexed PR's data. Called once
	// the review completes, regardless of outcome.
	DeletePRFiles(ctx context.Context, workspace, project string, prNumber int) error
}

// PRContextQuery requests context for a PR's changed files.
type PRContextQuery struct {
	Workspace     string
	Project       string
	Branch        string
	ChangedFiles  []string
	DiffSnippets  []string
	PRTitle       string
	PRDescription string
	TopK          int

	// Hybrid, when true with PRNumber set, tells the service to prefer
	// freshly indexed PR content over stale branch data for the listed
	// ChangedFiles. Set by a caller that previously called IndexPRFiles.
	Hybrid   bool
	PRNumber int
}

// DeterministicQuery requests context by exact criteria rather than
// semantic search.
type DeterministicQuery struct {
	Workspace     string
	Project       string
	Branch        string
	FilePaths     []string
	SemanticNames []string

	Hybrid   bool
	PRNumber int
}

// PRContext is the context payload returned by a query, already normalized
// into review.FileMetadata-compatible shape.
type PRContext struct {
	RelevantCode []RelevantChunk
}

// RelevantChunk is one retrieved piece of context.
type RelevantChunk struct {
	Path    string
	Content string
	Score   float64
	// Source tags where this chunk came from: "" for a plain semantic
	// hit, "deterministic" when merged in from a DeterministicContext
	// call, "pr_indexed" when the service resolved it against
	// PR-scoped indexed content rather than the stale branch.
	Source string
}

// IndexPRFilesRequest is the payload for IndexPRFiles.
type IndexPRFilesRequest struct {
	Workspace string
	Project   string
	PRNumber  int
	Branch    string
	Files     []IndexedFile
}

// IndexedFile is one file to index under PR metadata.
type IndexedFile struct {
	Path       string
	Content    string
	ChangeType string
}

// IndexResult reports the outcome of an index request.
type IndexResult struct {
	Indexed      bool
	ChunksIndexed int
}
