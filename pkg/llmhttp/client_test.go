package llmhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/llmport"
)

func TestGenerate_ReturnsTextAndUsageChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req wireRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-5", req.Model)

		_ = json.NewEncoder(w).Encode(wireResponse{
			Content: "looks fine",
			Usage: struct {
				InputTokens  int `json:"input_tokens"`
				OutputTokens int `json:"output_tokens"`
				TotalTokens  int `json:"total_tokens"`
			}{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
		})
	}))
	defer server.Close()

	c := New(server.URL)
	ch, err := c.Generate(context.Background(), &llmport.GenerateInput{
		RequestID: "req-1",
		Messages:  []llmport.ConversationMessage{{Role: llmport.RoleUser, Content: "review this"}},
		Config:    &config.LLMProviderConfig{Model: "gpt-5"},
	})
	require.NoError(t, err)

	var text *llmport.TextChunk
	var usage *llmport.UsageChunk
	for chunk := range ch {
		switch v := chunk.(type) {
		case *llmport.TextChunk:
			text = v
		case *llmport.UsageChunk:
			usage = v
		}
	}
	require.NotNil(t, text)
	assert.Equal(t, "looks fine", text.Content)
	require.NotNil(t, usage)
	assert.Equal(t, 15, usage.TotalTokens)
}

func TestGenerate_NonOKStatusYieldsErrorChunk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("overloaded"))
	}))
	defer server.Close()

	c := New(server.URL)
	ch, err := c.Generate(context.Background(), &llmport.GenerateInput{
		Config: &config.LLMProviderConfig{Model: "gpt-5"},
	})
	require.NoError(t, err)

	var gotErr *llmport.ErrorChunk
	for chunk := range ch {
		if v, ok := chunk.(*llmport.ErrorChunk); ok {
			gotErr = v
		}
	}
	require.NotNil(t, gotErr)
	assert.True(t, gotErr.Retryable)
}

func TestGenerate_MissingConfigIsValidationError(t *testing.T) {
	c := New("http://unused")
	_, err := c.Generate(context.Background(), &llmport.GenerateInput{})
	require.Error(t, err)
}
