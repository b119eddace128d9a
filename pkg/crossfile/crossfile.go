// Package crossfile implements the Stage-2 Cross-file Analyzer: a single
// structured LLM call over the deduplicated Stage-1 issues and the plan's
// cross-file concerns, producing architecture-level findings no one batch
// could see on its own.
package crossfile

import (
	"context"
	"fmt"

	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/review"
	"github.com/rostilos/codecrow/pkg/structured"
)

type Analyzer struct {
	llm llmport.Client
	cfg *config.Config
}

func New(llm llmport.Client, cfg *config.Config) *Analyzer {
	return &Analyzer{llm: llm, cfg: cfg}
}

// Analyze takes the deduplicated Stage-1 issues and the plan's cross-file
// concerns and makes one no-tools structured LLM call for architecture-
// level findings spanning multiple files.
func (a *Analyzer) Analyze(ctx context.Context, req *review.Request, issues []review.Issue, plan *review.Plan) (*review.CrossFileAnalysisResult, error) {
	provider, err := a.cfg.GetLLMProvider(req.LLMProvider)
	if err != nil {
		return nil, &review.StageFailure{Stage: "stage_2", Cause: err}
	}

	messages := buildMessages(issues, plan)

	stream, err := a.llm.Generate(ctx, &llmport.GenerateInput{
		RequestID: req.ID,
		Messages:  messages,
		Config:    provider,
	})
	if err != nil {
		return nil, &review.StageFailure{Stage: "stage_2", Cause: fmt.Errorf("llm call failed: %w", err)}
	}

	collected, err := llmport.Drain(stream)
	if err != nil {
		return nil, &review.StageFailure{Stage: "stage_2", Cause: err}
	}

	repairer := &llmRepairer{llm: a.llm, requestID: req.ID, provider: provider}
	resp, err := structured.Parse[crossFileResponse](ctx, collected.Text, resultSchema, repairer)
	if err != nil {
		return nil, &review.StageFailure{Stage: "stage_2", Cause: err}
	}

	return resp.toResult(), nil
}
