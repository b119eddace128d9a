package batchreview

import (
	"context"

	"github.com/rostilos/codecrow/pkg/retrieval"
	"github.com/rostilos/codecrow/pkg/review"
)

const (
	semanticTopK              = 10
	deterministicLimitPerFile = 5
	deterministicScore        = 0.85
	sourceDeterministic       = "deterministic"
	sourcePRIndexed           = "pr_indexed"

	modifiedScoreThreshold      = 0.70
	deterministicScoreThreshold = 0.90
)

// fetchContext runs the two-pronged retrieval described for Stage 1: a
// semantic query over the batch's files/snippets/PR metadata, and a
// deterministic query by file path whose results are merged in at a fixed
// score and tagged so the filter pass can treat them differently. Either
// call failing is non-fatal — the batch proceeds with whatever the other
// call returned, or with no context at all.
func (r *Reviewer) fetchContext(ctx context.Context, req *review.Request, batch review.Batch) []retrieval.RelevantChunk {
	paths := batch.Paths()
	snippets := batchSnippets(batch)

	semantic, err := r.retriever.PRContext(ctx, retrieval.PRContextQuery{
		Workspace:     req.Workspace,
		Project:       req.Project,
		Branch:        req.TargetBranch,
		ChangedFiles:  paths,
		DiffSnippets:  snippets,
		PRTitle:       req.PRTitle,
		PRDescription: req.PRDescription,
		TopK:          semanticTopK,
		Hybrid:        req.PRFilesIndexed,
		PRNumber:      req.PRNumber,
	})
	if err != nil {
		r.logger.Warn("semantic retrieval failed, proceeding without it", "error", err)
		semantic = &retrieval.PRContext{}
	}
	if req.PRFilesIndexed {
		tagSource(semantic.RelevantCode, sourcePRIndexed)
	}

	deterministic, err := r.retriever.DeterministicContext(ctx, retrieval.DeterministicQuery{
		Workspace: req.Workspace,
		Project:   req.Project,
		Branch:    req.TargetBranch,
		FilePaths: paths,
		Hybrid:    req.PRFilesIndexed,
		PRNumber:  req.PRNumber,
	})
	if err != nil {
		r.logger.Warn("deterministic retrieval failed, proceeding without it", "error", err)
		deterministic = &retrieval.PRContext{}
	}

	chunks := append([]retrieval.RelevantChunk(nil), semantic.RelevantCode...)
	for _, c := range capPerFile(deterministic.RelevantCode, paths, deterministicLimitPerFile) {
		c.Score = deterministicScore
		c.Source = sourceDeterministic
		chunks = append(chunks, c)
	}

	return filterContext(chunks, batch)
}

func tagSource(chunks []retrieval.RelevantChunk, source string) {
	for i := range chunks {
		chunks[i].Source = source
	}
}

// capPerFile caps the number of deterministic chunks kept per file path, in
// the order they were returned.
func capPerFile(chunks []retrieval.RelevantChunk, paths []string, limit int) []retrieval.RelevantChunk {
	relevant := make(map[string]bool, len(paths))
	for _, p := range paths {
		relevant[p] = true
	}

	counts := make(map[string]int)
	var out []retrieval.RelevantChunk
	for _, c := range chunks {
		if !relevant[c.Path] {
			continue
		}
		if counts[c.Path] >= limit {
			continue
		}
		counts[c.Path]++
		out = append(out, c)
	}
	return out
}

// filterContext drops chunks for deleted files and, among chunks whose path
// is a modified PR file, low-scoring ones — stale-branch retrieval for a
// file the PR is actively changing is untrustworthy below threshold.
// Chunks from any other file (unrelated or non-modified) are kept
// regardless of score: a low score there just means "loosely related", not
// "stale", so there's nothing to distrust. Deterministic-sourced chunks use
// a higher threshold; pr_indexed chunks bypass the score check entirely
// since they're fresh PR content rather than a stale-branch guess.
func filterContext(chunks []retrieval.RelevantChunk, batch review.Batch) []retrieval.RelevantChunk {
	deleted := make(map[string]bool)
	modified := make(map[string]bool)
	for _, item := range batch.Items {
		switch item.File.ChangeType {
		case review.ChangeDeleted:
			deleted[item.File.Path] = true
		case review.ChangeModified:
			modified[item.File.Path] = true
		}
	}

	var out []retrieval.RelevantChunk
	for _, c := range chunks {
		if deleted[c.Path] {
			continue
		}
		if c.Source == sourcePRIndexed {
			out = append(out, c)
			continue
		}
		if !modified[c.Path] {
			out = append(out, c)
			continue
		}
		threshold := modifiedScoreThreshold
		if c.Source == sourceDeterministic {
			threshold = deterministicScoreThreshold
		}
		if c.Score < threshold {
			continue
		}
		out = append(out, c)
	}
	return out
}
