// Package aggregator implements the Stage-3 Aggregator: the pipeline's
// final step, turning the reconciled issue list and cross-file analysis
// into the markdown comment returned to the caller.
package aggregator

import (
	"context"
	"fmt"

	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/review"
	"github.com/rostilos/codecrow/pkg/toolexec"
)

// Aggregator runs Stage 3. It holds only process-lifetime collaborators.
type Aggregator struct {
	llm        llmport.Client
	capability toolexec.Capability // nil disables tool calls even if the request enables them
	cfg        *config.Config
}

func New(llm llmport.Client, capability toolexec.Capability, cfg *config.Config) *Aggregator {
	return &Aggregator{llm: llm, capability: capability, cfg: cfg}
}

// Aggregate produces the final markdown review comment. Unlike every
// earlier stage it returns free-form text, not a structured object: there
// is nothing further downstream to parse it.
func (a *Aggregator) Aggregate(ctx context.Context, req *review.Request, plan *review.Plan, issues []review.Issue, crossFile *review.CrossFileAnalysisResult, incremental bool) (string, error) {
	provider, err := a.cfg.GetLLMProvider(req.LLMProvider)
	if err != nil {
		return "", &review.StageFailure{Stage: "stage_3", Cause: err}
	}

	messages := buildMessages(req, plan, issues, crossFile, incremental)

	var tools []llmport.ToolDefinition
	var executor *toolexec.Executor
	if req.ToolsEnabled && a.capability != nil {
		tools = stage3ToolDefinitions
		executor = toolexec.New(a.capability, toolexec.Stage3Whitelist, a.cfg.Defaults.ToolBudgetStage3)
	}

	text, err := runConversation(ctx, a.llm, req.ID, provider, messages, tools, executor)
	if err != nil {
		return "", &review.StageFailure{Stage: "stage_3", Cause: fmt.Errorf("llm call failed: %w", err)}
	}

	return text, nil
}
