// Package planner implements the Stage-0 Planner: a single LLM call that
// classifies the changed files in a request into priority groups and
// proposes cross-file hypotheses for the batcher and cross-file analyzer to
// follow up on. It owns no state across requests.
package planner

import (
	"context"
	"fmt"

	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/diffutil"
	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/review"
	"github.com/rostilos/codecrow/pkg/structured"
)

// Planner runs Stage 0. A Planner is safe to reuse across requests; all of
// its fields are read-only references to process-lifetime collaborators.
type Planner struct {
	llm llmport.Client
	cfg *config.Config
}

// New builds a Planner bound to an LLM client and the process configuration.
func New(llm llmport.Client, cfg *config.Config) *Planner {
	return &Planner{llm: llm, cfg: cfg}
}

var planSchema = structured.MapSchema{
	SchemaName:  "stage0_plan",
	Arrays:      []string{"groups", "skipped", "cross_file_concerns"},
	Description: planSchemaDescription,
}

// Plan classifies the request's changed files into priority groups and
// returns cross-file hypotheses for later stages. No tools are offered at
// this stage.
func (p *Planner) Plan(ctx context.Context, req *review.Request) (*review.Plan, error) {
	provider, err := p.cfg.GetLLMProvider(req.LLMProvider)
	if err != nil {
		return nil, &review.StageFailure{Stage: "stage_0", Cause: err}
	}

	diff := diffutil.Parse(req.RawDiff, diffutil.Thresholds{
		MaxDiffBytesPerFile: p.cfg.Defaults.MaxDiffBytesPerFile,
		MaxHunkLines:        p.cfg.Defaults.MaxHunkLines,
	})

	messages := buildMessages(req, diff)

	stream, err := p.llm.Generate(ctx, &llmport.GenerateInput{
		RequestID: req.ID,
		Messages:  messages,
		Config:    provider,
	})
	if err != nil {
		return nil, &review.StageFailure{Stage: "stage_0", Cause: fmt.Errorf("llm call failed: %w", err)}
	}

	collected, err := llmport.Drain(stream)
	if err != nil {
		return nil, &review.StageFailure{Stage: "stage_0", Cause: err}
	}

	repairer := &llmRepairer{llm: p.llm, requestID: req.ID, provider: provider}
	resp, err := structured.Parse[planResponse](ctx, collected.Text, planSchema, repairer)
	if err != nil {
		return nil, &review.StageFailure{Stage: "stage_0", Cause: err}
	}

	plan := resp.toPlan()
	plan.EnsureCoverage(review.ChangedFilePaths(diff))
	return plan, nil
}

// llmRepairer adapts llmport.Client to structured.Repairer so Parse's
// repair loop can ask the same provider to fix its own broken output.
type llmRepairer struct {
	llm       llmport.Client
	requestID string
	provider  *config.LLMProviderConfig
}

func (r *llmRepairer) Repair(ctx context.Context, broken string, lastErr string, schema structured.Schema) (string, error) {
	prompt := structured.BuildRepairPrompt(schema, broken, lastErr)
	stream, err := r.llm.Generate(ctx, &llmport.GenerateInput{
		RequestID: r.requestID,
		Config:    r.provider,
		Messages: []llmport.ConversationMessage{
			{Role: llmport.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	collected, err := llmport.Drain(stream)
	if err != nil {
		return "", err
	}
	return collected.Text, nil
}
