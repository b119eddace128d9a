// Package llmport defines the narrow interface the pipeline uses to talk to
// an LLM provider. The provider itself — prompt templates aside — is
// external to this module; this package only fixes the Go-side contract a
// concrete client must satisfy.
package llmport

import (
	"context"

	"github.com/rostilos/codecrow/pkg/config"
)

// Client is the Go-side interface for invoking an LLM provider. It exposes
// a channel-based streaming API so a stage can consume text, tool calls and
// usage as they arrive rather than waiting for one big response.
type Client interface {
	// Generate sends a conversation to the LLM and returns a stream of
	// chunks. The returned channel is closed when the stream completes.
	// Transport-level errors are delivered as ErrorChunk values on the
	// channel, not as a returned error; Generate itself only errors on
	// input validation failures that never reach the provider.
	Generate(ctx context.Context, input *GenerateInput) (<-chan Chunk, error)
}

// GenerateInput is one request to an LLM provider.
type GenerateInput struct {
	RequestID string
	Messages  []ConversationMessage
	Config    *config.LLMProviderConfig
	Tools     []ToolDefinition // nil = no tools offered this call
}

// Conversation message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ConversationMessage is one turn in the conversation sent to the provider.
type ConversationMessage struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall // set on assistant messages that requested tools
	ToolCallID string     // set on tool-result messages
	ToolName   string     // set on tool-result messages
}

// ToolDefinition describes a tool the LLM may call during this request.
type ToolDefinition struct {
	Name             string
	Description      string
	ParametersSchema string // JSON Schema
}

// ToolCall is an LLM's request to invoke a tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON
}

// Chunk is the interface implemented by every streaming chunk type. It is
// a closed set: chunkType is unexported so only this package's types
// satisfy it.
type Chunk interface {
	chunkType() ChunkType
}

// ChunkType identifies the kind of streaming chunk.
type ChunkType string

const (
	ChunkTypeText     ChunkType = "text"
	ChunkTypeThinking ChunkType = "thinking"
	ChunkTypeToolCall ChunkType = "tool_call"
	ChunkTypeUsage    ChunkType = "usage"
	ChunkTypeError    ChunkType = "error"
)

// TextChunk is a fragment of the LLM's text response.
type TextChunk struct{ Content string }

// ThinkingChunk is a fragment of the LLM's visible reasoning trace.
type ThinkingChunk struct{ Content string }

// ToolCallChunk signals the LLM wants to invoke a tool.
type ToolCallChunk struct{ CallID, Name, Arguments string }

// UsageChunk reports token consumption for the call. A provider may emit
// more than one as a running total; the last one received wins.
type UsageChunk struct{ InputTokens, OutputTokens, TotalTokens, ThinkingTokens int }

// ErrorChunk signals a provider-side error mid-stream. Retryable indicates
// whether the caller's retry policy should attempt this request again.
type ErrorChunk struct {
	Message   string
	Code      string
	Retryable bool
}

func (c *TextChunk) chunkType() ChunkType     { return ChunkTypeText }
func (c *ThinkingChunk) chunkType() ChunkType { return ChunkTypeThinking }
func (c *ToolCallChunk) chunkType() ChunkType { return ChunkTypeToolCall }
func (c *UsageChunk) chunkType() ChunkType    { return ChunkTypeUsage }
func (c *ErrorChunk) chunkType() ChunkType    { return ChunkTypeError }
