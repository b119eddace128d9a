package llmport

import (
	"fmt"
	"strings"
)

// Collected is the drained result of a non-tool-calling Generate stream:
// concatenated text and thinking, plus the last usage report seen.
type Collected struct {
	Text      string
	Thinking  string
	ToolCalls []ToolCallChunk
	Usage     UsageChunk
}

// Drain reads a Chunk stream to completion, concatenating text and
// thinking chunks and collecting any tool calls, the way a single
// non-streaming LLM call is consumed. It returns the first ErrorChunk it
// encounters as a Go error; draining continues afterward so the channel is
// always fully consumed before returning, matching Go's channel-range
// contract.
func Drain(stream <-chan Chunk) (Collected, error) {
	var (
		text, thinking strings.Builder
		toolCalls      []ToolCallChunk
		usage          UsageChunk
		firstErr       error
	)

	for chunk := range stream {
		switch c := chunk.(type) {
		case *TextChunk:
			text.WriteString(c.Content)
		case *ThinkingChunk:
			thinking.WriteString(c.Content)
		case *ToolCallChunk:
			toolCalls = append(toolCalls, *c)
		case *UsageChunk:
			usage = *c
		case *ErrorChunk:
			if firstErr == nil {
				firstErr = fmt.Errorf("llm provider error: %s (code: %s)", c.Message, c.Code)
			}
		}
	}

	return Collected{
		Text:      text.String(),
		Thinking:  thinking.String(),
		ToolCalls: toolCalls,
		Usage:     usage,
	}, firstErr
}
