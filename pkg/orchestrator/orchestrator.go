// Package orchestrator implements the Coordinator: the single component
// that drives a review request through every stage in order, emits progress
// events at stage boundaries, and maps stage failures into a terminal error
// event. It owns no state across requests — everything it touches is
// either a process-lifetime collaborator passed in at construction or local
// to one Orchestrate call.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rostilos/codecrow/pkg/aggregator"
	"github.com/rostilos/codecrow/pkg/batchreview"
	"github.com/rostilos/codecrow/pkg/batching"
	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/crossfile"
	"github.com/rostilos/codecrow/pkg/diffutil"
	"github.com/rostilos/codecrow/pkg/events"
	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/masking"
	"github.com/rostilos/codecrow/pkg/planner"
	"github.com/rostilos/codecrow/pkg/postprocess"
	"github.com/rostilos/codecrow/pkg/reconcile"
	"github.com/rostilos/codecrow/pkg/retrieval"
	"github.com/rostilos/codecrow/pkg/review"
	"github.com/rostilos/codecrow/pkg/toolexec"
	"github.com/rostilos/codecrow/pkg/verifier"
)

// unindexTimeout bounds the guaranteed PR-unindex finalizer, which runs on
// a background context since the request's own context may already be
// cancelled or expired by the time it fires.
const unindexTimeout = 10 * time.Second

// Coordinator wires every pipeline stage together. Everything it holds is
// a read-only, concurrency-safe reference: a single Coordinator can drive
// many concurrent Orchestrate calls. The one stage that needs request-scoped
// state — the Stage-1 Batch Reviewer, which reports progress through the
// caller's Emitter — is constructed fresh inside Orchestrate instead of
// being held as a Coordinator field.
type Coordinator struct {
	llm        llmport.Client
	retriever  retrieval.Client
	capability toolexec.Capability
	cfg        *config.Config
	masker     *masking.Service
	logger     *slog.Logger

	planner       *planner.Planner
	verifier      *verifier.Verifier
	crossfile     *crossfile.Analyzer
	aggregator    *aggregator.Aggregator
	postprocessor *postprocess.Processor
}

// New builds a Coordinator from its process-lifetime collaborators. cfg and
// masker are loaded once at process start (cmd/codecrow); llm, retriever,
// and capability are the external-service adapters every stage shares.
func New(llm llmport.Client, retriever retrieval.Client, capability toolexec.Capability, cfg *config.Config, masker *masking.Service, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		llm:           llm,
		retriever:     retriever,
		capability:    capability,
		cfg:           cfg,
		masker:        masker,
		logger:        logger,
		planner:       planner.New(llm, cfg),
		verifier:      verifier.New(llm, cfg),
		crossfile:     crossfile.New(llm, cfg),
		aggregator:    aggregator.New(llm, capability, cfg),
		postprocessor: postprocess.New(cfg, masker),
	}
}

// Orchestrate drives stages 0 through 3 (plus reconciliation when previous
// issues are present) in order, emitting status events at every stage
// boundary and a terminal final or error event through emitter. emitter is
// request-scoped (its channel closes when the request ends), so the caller
// constructs a fresh one per call and ranges over Events() concurrently —
// the same pattern the Stage-1 Batch Reviewer already uses internally.
func (c *Coordinator) Orchestrate(ctx context.Context, emitter *events.Emitter, req *review.Request) (*review.Result, error) {
	logger := c.logger.With("request_id", req.ID)

	if ctx.Err() != nil {
		emitter.Error(c.masker.RedactErrorMessage(ctx.Err().Error()))
		return nil, review.ErrCancelled
	}

	diff := diffutil.Parse(req.RawDiff, diffutil.Thresholds{
		MaxDiffBytesPerFile: c.cfg.Defaults.MaxDiffBytesPerFile,
		MaxHunkLines:        c.cfg.Defaults.MaxHunkLines,
	})

	if indexed, err := c.indexPRFiles(ctx, req, diff); err != nil {
		logger.Warn("pr file indexing failed, proceeding without hybrid retrieval", "error", err)
	} else if indexed {
		req.PRFilesIndexed = true
		defer func() {
			unindexCtx, cancel := context.WithTimeout(context.Background(), unindexTimeout)
			defer cancel()
			if delErr := c.retriever.DeletePRFiles(unindexCtx, req.Workspace, req.Project, req.PRNumber); delErr != nil {
				logger.Warn("failed to unindex pr files", "error", delErr)
			}
		}()
	}

	emitter.Status(review.StateStage0Started, "planning review")
	plan, err := c.planner.Plan(ctx, req)
	if err != nil {
		return c.fail(logger, emitter, "stage_0", err)
	}

	batches := batching.Batch(plan, diff, req.Enrichment, batching.Options{
		MaxBatchSize: c.cfg.Defaults.MaxBatchSize,
		MinBatchSize: c.cfg.Defaults.MinBatchSize,
	})

	emitter.Status(review.StateStage1Started, fmt.Sprintf("reviewing %d batches", len(batches)))
	reviewer := batchreview.New(c.llm, c.retriever, c.capability, c.cfg, emitter)
	issues, err := reviewer.ReviewAll(ctx, req, plan, batches)
	if err != nil {
		return c.fail(logger, emitter, "stage_1", err)
	}

	if req.Enrichment.HasData() {
		emitter.Status(review.StateStage1Verifying, "verifying suspect findings")
		verified, verifyErr := c.verifier.Verify(ctx, req, issues)
		if verifyErr != nil {
			logger.Warn("verification failed, proceeding unverified", "error", verifyErr)
		} else {
			issues = verified
		}
	}

	incremental := req.Mode == review.ModeIncremental && len(req.PreviousIssues) > 0
	if incremental {
		emitter.Status(review.StateReconciling, "reconciling with previous issues")
		reconciled, reconcileErr := reconcile.Reconcile(c.cfg, req, issues, diff)
		if reconcileErr != nil {
			logger.Warn("reconciliation failed, proceeding with unreconciled issues", "error", reconcileErr)
		} else {
			issues = reconciled
		}
	}

	emitter.Status(review.StateStage2Started, "cross-file analysis")
	crossFileResult, err := c.crossfile.Analyze(ctx, req, issues, plan)
	if err != nil {
		return c.fail(logger, emitter, "stage_2", err)
	}

	allIssues := make([]review.Issue, 0, len(issues)+len(crossFileResult.CrossFileIssues))
	allIssues = append(allIssues, issues...)
	allIssues = append(allIssues, crossFileResult.CrossFileIssues...)

	emitter.Status(review.StateStage3Started, "aggregating review")
	comment, err := c.aggregator.Aggregate(ctx, req, plan, allIssues, crossFileResult, incremental)
	if err != nil {
		return c.fail(logger, emitter, "stage_3", err)
	}

	finalIssues, err := c.postprocessor.PostProcess(allIssues, req.RawDiff, fileContentsOf(req.Enrichment), req.PreviousIssues)
	if err != nil {
		return c.fail(logger, emitter, "post_process", err)
	}

	result := &review.Result{Comment: comment, Issues: finalIssues}
	emitter.Final(result)
	return result, nil
}

// fail classifies and logs a stage error, emits the terminal error event
// with a redacted message, and returns the (nil, error) pair the coordinator
// surfaces to its caller. Post-processing and reconciliation failures never
// reach here — they degrade gracefully inline instead.
func (c *Coordinator) fail(logger *slog.Logger, emitter *events.Emitter, stage string, cause error) (*review.Result, error) {
	err := &review.StageFailure{Stage: stage, Cause: cause}
	logger.Error("stage failed", "stage", stage, "error", cause)
	emitter.Error(c.masker.RedactErrorMessage(err.Error()))
	return nil, err
}

// indexPRFiles pushes the diff's non-deleted changed files that carry known
// content (from the request's enrichment graph) to the retrieval service
// under PR-scoped metadata, so Stage 1's context fetch can run in hybrid
// mode. A request with no PR number or no enrichment content is a no-op,
// not an error.
func (c *Coordinator) indexPRFiles(ctx context.Context, req *review.Request, diff *review.ParsedDiff) (bool, error) {
	if c.retriever == nil || req.PRNumber == 0 {
		return false, nil
	}
	files := indexableFiles(req, diff)
	if len(files) == 0 {
		return false, nil
	}

	result, err := c.retriever.IndexPRFiles(ctx, retrieval.IndexPRFilesRequest{
		Workspace: req.Workspace,
		Project:   req.Project,
		PRNumber:  req.PRNumber,
		Branch:    req.TargetBranch,
		Files:     files,
	})
	if err != nil {
		return false, &review.RetrievalFailure{Operation: "index_pr_files", Cause: err}
	}
	return result.Indexed, nil
}

func indexableFiles(req *review.Request, diff *review.ParsedDiff) []retrieval.IndexedFile {
	if req.Enrichment == nil || diff == nil {
		return nil
	}
	content := make(map[string]string, len(req.Enrichment.Files))
	for _, f := range req.Enrichment.Files {
		if f.Content != "" {
			content[f.Path] = f.Content
		}
	}
	if len(content) == 0 {
		return nil
	}

	files := make([]retrieval.IndexedFile, 0, len(diff.Files))
	for _, rec := range diff.Files {
		if rec.Skipped || rec.ChangeType == review.ChangeDeleted {
			continue
		}
		text, ok := content[rec.Path]
		if !ok {
			continue
		}
		files = append(files, retrieval.IndexedFile{Path: rec.Path, Content: text, ChangeType: string(rec.ChangeType)})
	}
	return files
}

// fileContentsOf flattens the request's enrichment graph into the plain
// path-to-content map the Post-Processor's line-correction pass wants as
// its fallback candidate source when a file's diff hunks alone aren't
// enough to re-locate a drifted line.
func fileContentsOf(e *review.Enrichment) map[string]string {
	if e == nil || len(e.Files) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.Files))
	for _, f := range e.Files {
		if f.Content != "" {
			out[f.Path] = f.Content
		}
	}
	return out
}
