package batchreview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/review"
	"github.com/rostilos/codecrow/pkg/structured"
	"github.com/rostilos/codecrow/pkg/toolexec"
)

// maxToolIterations bounds the tool-calling round trip independent of the
// call budget, so a provider that keeps requesting tools after its budget
// is exhausted (and gets the executor's "budget exhausted" text back) can't
// spin forever re-requesting the same tool.
const maxToolIterations = 6

// reviewBatch runs one batch through the per-batch Stage-1 cycle: snippet
// extraction, two-pronged context fetch, prompt construction, the LLM call
// (with an optional bounded tool loop), and structured-output decoding.
func (r *Reviewer) reviewBatch(ctx context.Context, req *review.Request, plan *review.Plan, batch review.Batch) ([]review.Issue, error) {
	provider, err := r.cfg.GetLLMProvider(req.LLMProvider)
	if err != nil {
		return nil, err
	}

	chunks := r.fetchContext(ctx, req, batch)

	allFiles := allPlanFiles(plan)
	deletedFiles := deletedFilesIn(req, batch)
	messages := buildMessages(req, plan, batch, allFiles, deletedFiles, chunks)

	var tools []llmport.ToolDefinition
	var executor *toolexec.Executor
	if req.ToolsEnabled && r.capability != nil {
		tools = stage1ToolDefinitions
		executor = toolexec.New(r.capability, toolexec.Stage1Whitelist, r.cfg.Defaults.ToolBudgetStage1)
	}

	text, err := r.runConversation(ctx, req.ID, provider, messages, tools, executor)
	if err != nil {
		return nil, fmt.Errorf("llm call failed: %w", err)
	}

	repairer := &llmRepairer{llm: r.llm, requestID: req.ID, provider: provider}
	resp, err := structured.Parse[stage1Response](ctx, text, planSchema, repairer)
	if err != nil {
		return nil, err
	}
	return resp.toIssues(), nil
}

// runConversation drives the LLM call to completion, looping while the
// response requests tool calls (bounded by maxToolIterations) and feeding
// results back as tool messages, and returns the final collected text.
func (r *Reviewer) runConversation(ctx context.Context, requestID string, provider *config.LLMProviderConfig, messages []llmport.ConversationMessage, tools []llmport.ToolDefinition, executor *toolexec.Executor) (string, error) {
	for i := 0; i < maxToolIterations; i++ {
		stream, err := r.llm.Generate(ctx, &llmport.GenerateInput{
			RequestID: requestID,
			Messages:  messages,
			Config:    provider,
			Tools:     tools,
		})
		if err != nil {
			return "", err
		}

		collected, err := llmport.Drain(stream)
		if err != nil {
			return "", err
		}

		if len(collected.ToolCalls) == 0 || executor == nil {
			return collected.Text, nil
		}

		messages = append(messages, llmport.ConversationMessage{
			Role:      llmport.RoleAssistant,
			Content:   collected.Text,
			ToolCalls: toToolCalls(collected.ToolCalls),
		})
		for _, call := range collected.ToolCalls {
			result := executor.Call(ctx, call.Name, parseToolArgs(call.Arguments))
			messages = append(messages, llmport.ConversationMessage{
				Role:       llmport.RoleTool,
				Content:    result,
				ToolCallID: call.CallID,
				ToolName:   call.Name,
			})
		}
	}
	return "", fmt.Errorf("exceeded %d tool-calling iterations without a final response", maxToolIterations)
}

// parseToolArgs decodes a tool call's JSON arguments into the
// map[string]string toolexec.Executor.Call expects. Non-string values are
// dropped; every defined tool's parameters are string-typed.
func parseToolArgs(argsJSON string) map[string]string {
	var raw map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &raw); err != nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func toToolCalls(chunks []llmport.ToolCallChunk) []llmport.ToolCall {
	calls := make([]llmport.ToolCall, len(chunks))
	for i, c := range chunks {
		calls[i] = llmport.ToolCall{ID: c.CallID, Name: c.Name, Arguments: c.Arguments}
	}
	return calls
}

func allPlanFiles(plan *review.Plan) []string {
	var paths []string
	for _, g := range plan.Groups {
		for _, f := range g.Files {
			paths = append(paths, f.Path)
		}
	}
	return paths
}

func deletedFilesIn(req *review.Request, batch review.Batch) []string {
	var deleted []string
	for _, item := range batch.Items {
		if item.File.ChangeType == review.ChangeDeleted {
			deleted = append(deleted, item.File.Path)
		}
	}
	return deleted
}
