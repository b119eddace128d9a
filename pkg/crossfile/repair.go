package crossfile

import (
	"context"

	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/structured"
)

// llmRepairer adapts llmport.Client to structured.Repairer, the same way
// pkg/planner, pkg/batchreview, and pkg/verifier each do independently.
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
