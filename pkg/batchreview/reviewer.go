// Package batchreview implements the Stage-1 Batch Reviewer: it runs each
// batch from the Batcher through a context-fetch-then-LLM-review cycle in
// waves of bounded parallelism, then suppresses near-duplicate issues found
// across different batches.
package batchreview

import (
	"context"
	"log/slog"
	"sort"

	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/events"
	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/retrieval"
	"github.com/rostilos/codecrow/pkg/review"
	"github.com/rostilos/codecrow/pkg/similarity"
	"github.com/rostilos/codecrow/pkg/structured"
	"github.com/rostilos/codecrow/pkg/toolexec"
)

// Reviewer runs Stage 1. It holds only references to process-lifetime
// collaborators; nothing on it is request-scoped.
type Reviewer struct {
	llm        llmport.Client
	retriever  retrieval.Client
	capability toolexec.Capability // nil disables tool calls even if the request enables them
	cfg        *config.Config
	emitter    *events.Emitter // nil is fine; progress emission becomes a no-op
	logger     *slog.Logger
}

// New builds a Reviewer. emitter may be nil for callers that don't need
// progress events (e.g. tests).
func New(llm llmport.Client, retriever retrieval.Client, capability toolexec.Capability, cfg *config.Config, emitter *events.Emitter) *Reviewer {
	return &Reviewer{
		llm:        llm,
		retriever:  retriever,
		capability: capability,
		cfg:        cfg,
		emitter:    emitter,
		logger:     slog.Default().With("component", "batchreview"),
	}
}

// indexedResult carries a wave-local batch result back through the
// collection channel, tagged with launch order so results can be restored
// to a deterministic order before cross-batch dedup runs.
type indexedResult struct {
	index  int
	issues []review.Issue
}

// ReviewAll runs every batch through Stage 1 in waves of at most
// config.Defaults.MaxParallelStage1 concurrent batches. A single batch's
// failure is isolated: it contributes zero issues, logged at warn level,
// and the wave continues. ReviewAll itself only errors if ctx is
// cancelled before any wave is attempted.
func (r *Reviewer) ReviewAll(ctx context.Context, req *review.Request, plan *review.Plan, batches []review.Batch) ([]review.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	waveSize := r.cfg.Defaults.MaxParallelStage1
	if waveSize <= 0 {
		waveSize = 1
	}

	var all []review.Issue
	completed := 0

	for start := 0; start < len(batches); start += waveSize {
		end := start + waveSize
		if end > len(batches) {
			end = len(batches)
		}
		wave := batches[start:end]

		results := make(chan indexedResult, len(wave))
		for i, batch := range wave {
			go func(i int, batch review.Batch) {
				issues, err := r.reviewBatch(ctx, req, plan, batch)
				if err != nil {
					r.logger.Warn("batch review failed, isolating", "batch_index", start+i, "error", err)
					issues = nil
				}
				results <- indexedResult{index: i, issues: issues}
			}(i, batch)
		}

		waveResults := make([]indexedResult, len(wave))
		for range wave {
			res := <-results
			waveResults[res.index] = res
		}
		sort.Slice(waveResults, func(i, j int) bool { return waveResults[i].index < waveResults[j].index })
		for _, res := range waveResults {
			all = append(all, res.issues...)
		}

		completed += len(wave)
		r.emitProgress(len(batches), completed)
	}

	return r.dedupAcrossBatches(all), nil
}

func (r *Reviewer) emitProgress(total, completed int) {
	if r.emitter == nil || total == 0 {
		return
	}
	percent := 10 + int(50.0*float64(completed)/float64(total)+0.5)
	r.emitter.Progress(review.StateStage1Started, percent, "stage 1 batch review in progress")
}

// dedupAcrossBatches suppresses an issue whose reason is similar enough to
// an already-accepted one, scanning in the order issues were collected
// (launch order within each wave, wave order across waves) so the result is
// deterministic for a fixed batch ordering.
func (r *Reviewer) dedupAcrossBatches(issues []review.Issue) []review.Issue {
	threshold := r.cfg.Defaults.CrossBatchDedupThreshold
	accepted := make([]review.Issue, 0, len(issues))

	for _, issue := range issues {
		dup := false
		for _, kept := range accepted {
			if similarity.IsSimilar(issue.Reason, kept.Reason, threshold) {
				dup = true
				break
			}
		}
		if !dup {
			accepted = append(accepted, issue)
		}
	}
	return accepted
}

var planSchema = structured.MapSchema{
	SchemaName:  "stage1_batch_review",
	Arrays:      []string{"reviews"},
	Description: stage1SchemaDescription,
}
