package aggregator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/toolexec"
)

// maxToolIterations bounds Stage 3's verification tool loop the same way
// pkg/batchreview bounds Stage 1's: independent of the call budget, so a
// provider that keeps requesting tools after the executor starts returning
// "budget exhausted" text can't spin forever.
const maxToolIterations = 6

// runConversation drives the aggregation call to completion, looping while
// the response requests tool calls (bounded by maxToolIterations) and
// feeding results back as tool messages, returning the final markdown text.
func runConversation(ctx context.Context, llm llmport.Client, requestID string, provider *config.LLMProviderConfig, messages []llmport.ConversationMessage, tools []llmport.ToolDefinition, executor *toolexec.Executor) (string, error) {
	for i := 0; i < maxToolIterations; i++ {
		stream, err := llm.Generate(ctx, &llmport.GenerateInput{
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
