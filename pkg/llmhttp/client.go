// Package llmhttp is the narrow HTTP/JSON port for llmport.Client: a single
// chat-completions-shaped POST per Generate call, styled after the
// retrieval package's HTTPClient since both talk to an external service
// over plain JSON with no generated client code. The wire schema here is
// deliberately generic (a messages array in, one message plus usage and
// optional tool calls out) rather than tied to one vendor's SDK, so a
// single endpoint config covers whatever provider fronts it.
package llmhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/rostilos/codecrow/pkg/llmport"
)

// Client is the default llmport.Client implementation. It makes one
// request per Generate call and delivers the whole response as a short
// burst of chunks on a small buffered channel — there is no real
// server-sent-event stream here, just the channel-based contract the
// pipeline stages already expect.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKeyEnv  string
	logger     *slog.Logger
}

// New builds a Client against a single completions endpoint. endpoint is
// the full URL (e.g. "https://api.example.com/v1/chat/completions");
// apiKeyEnv names the environment variable Generate reads the bearer
// token from per call, since different GenerateInput.Config values may
// name different providers sharing one process.
func New(endpoint string) *Client {
	return &Client{
		httpClient: &http.Client{},
		endpoint:   endpoint,
		logger:     slog.Default().With("component", "llmhttp"),
	}
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type wireToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireTool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schema      string `json:"parameters_schema"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []wireMessage `json:"messages"`
	Tools       []wireTool    `json:"tools,omitempty"`
}

type wireResponse struct {
	Content   string         `json:"content"`
	ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
	Usage     struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate sends the conversation as one request and returns a channel
// carrying, in order: a TextChunk (if any content came back), one
// ToolCallChunk per requested tool call, and a final UsageChunk. A
// transport or non-2xx failure is delivered as a single ErrorChunk instead
// of a returned error, matching the interface's documented contract.
func (c *Client) Generate(ctx context.Context, input *llmport.GenerateInput) (<-chan llmport.Chunk, error) {
	if input.Config == nil {
		return nil, fmt.Errorf("llmhttp: generate input missing provider config")
	}

	ch := make(chan llmport.Chunk, 4)
	go c.run(ctx, input, ch)
	return ch, nil
}

func (c *Client) run(ctx context.Context, input *llmport.GenerateInput, ch chan<- llmport.Chunk) {
	defer close(ch)

	resp, err := c.call(ctx, input)
	if err != nil {
		c.logger.Warn("llm call failed", "request_id", input.RequestID, "error", err)
		ch <- &llmport.ErrorChunk{Message: err.Error(), Retryable: true}
		return
	}

	if resp.Content != "" {
		ch <- &llmport.TextChunk{Content: resp.Content}
	}
	for _, tc := range resp.ToolCalls {
		ch <- &llmport.ToolCallChunk{CallID: tc.ID, Name: tc.Name, Arguments: tc.Arguments}
	}
	ch <- &llmport.UsageChunk{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
}

func (c *Client) call(ctx context.Context, input *llmport.GenerateInput) (*wireResponse, error) {
	req := wireRequest{
		Model:       input.Config.Model,
		Temperature: input.Config.Temperature,
		MaxTokens:   input.Config.MaxTokens,
		Messages:    toWireMessages(input.Messages),
		Tools:       toWireTools(input.Tools),
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if key := apiKey(input.Config.APIKeyEnv); key != "" {
		httpReq.Header.Set("Authorization", "Bearer "+key)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call llm provider: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return nil, fmt.Errorf("llm provider returned HTTP %d: %s", httpResp.StatusCode, string(data))
	}

	var out wireResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func apiKey(envVar string) string {
	if envVar == "" {
		return ""
	}
	return os.Getenv(envVar)
}

func toWireMessages(msgs []llmport.ConversationMessage) []wireMessage {
	out := make([]wireMessage, 0, len(msgs))
	for _, m := range msgs {
		wm := wireMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID, Name: m.ToolName}
		for _, tc := range m.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
		}
		out = append(out, wm)
	}
	return out
}

func toWireTools(tools []llmport.ToolDefinition) []wireTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]wireTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, wireTool{Name: t.Name, Description: t.Description, Schema: t.ParametersSchema})
	}
	return out
}
