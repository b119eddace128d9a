package crossfile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/review"
)

type fakeLLM struct {
	responses []string
	calls     int
}

func (f *fakeLLM) Generate(ctx context.Context, in *llmport.GenerateInput) (<-chan llmport.Chunk, error) {
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	text := f.responses[idx]

	ch := make(chan llmport.Chunk, 1)
	go func() {
		defer close(ch)
		ch <- &llmport.TextChunk{Content: text}
	}()
	return ch, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Defaults: config.ResolveDefaults(&config.Defaults{}),
		LLMProviderRegistry: config.NewLLMProviderRegistry(map[string]config.LLMProviderConfig{
			"openai": {Provider: "openai", Model: "gpt-5"},
		}),
	}
}

func TestAnalyze_HappyPath(t *testing.T) {
	llm := &fakeLLM{responses: []string{`{
		"prRiskLevel": "HIGH",
		"crossFileIssues": [{"file": "a.go", "line": "10", "severity": "HIGH", "category": "BUG_RISK", "reason": "writer no longer closes the file the reader expects"}],
		"dataFlowConcerns": ["b.go reads a struct field a.go stopped populating"],
		"prRecommendation": "request changes",
		"confidence": 0.8
	}`}}
	a := New(llm, testConfig())

	req := &review.Request{ID: "req-1", LLMProvider: "openai"}
	plan := &review.Plan{Summary: "two files touch the same cache", CrossFileConcerns: []string{"cache invalidation ordering"}}
	issues := []review.Issue{{File: "a.go", Line: "3", Severity: review.SeverityLow, Category: review.CategoryStyle, Reason: "naming nit"}}

	result, err := a.Analyze(context.Background(), req, issues, plan)
	require.NoError(t, err)
	assert.Equal(t, "HIGH", result.PRRiskLevel)
	require.Len(t, result.CrossFileIssues, 1)
	assert.Equal(t, "a.go", result.CrossFileIssues[0].File)
	assert.Equal(t, review.SeverityHigh, result.CrossFileIssues[0].Severity)
	assert.Equal(t, "request changes", result.PRRecommendation)
	assert.InDelta(t, 0.8, result.Confidence, 0.0001)
}

func TestAnalyze_UnknownRiskLevelDefaultsToMedium(t *testing.T) {
	llm := &fakeLLM{responses: []string{`{"prRiskLevel": "EXTREME", "prRecommendation": "approve", "confidence": 0.5}`}}
	a := New(llm, testConfig())

	result, err := a.Analyze(context.Background(), &review.Request{LLMProvider: "openai"}, nil, &review.Plan{})
	require.NoError(t, err)
	assert.Equal(t, "MEDIUM", result.PRRiskLevel)
}

func TestAnalyze_RecoversFromOneMalformedResponse(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		"not json",
		`{"prRiskLevel": "LOW", "prRecommendation": "approve", "confidence": 0.9}`,
	}}
	a := New(llm, testConfig())

	result, err := a.Analyze(context.Background(), &review.Request{LLMProvider: "openai"}, nil, &review.Plan{})
	require.NoError(t, err)
	assert.Equal(t, "LOW", result.PRRiskLevel)
	assert.Equal(t, "approve", result.PRRecommendation)
}

func TestAnalyze_UnknownProviderFails(t *testing.T) {
	a := New(&fakeLLM{}, testConfig())

	_, err := a.Analyze(context.Background(), &review.Request{LLMProvider: "no-such-provider"}, nil, &review.Plan{})
	require.Error(t, err)
	var stageErr *review.StageFailure
	assert.ErrorAs(t, err, &stageErr)
}

func TestAnalyze_EmptyCrossFileConcernsStillBuildsPrompt(t *testing.T) {
	llm := &fakeLLM{responses: []string{`{"prRiskLevel": "LOW", "prRecommendation": "approve", "confidence": 0.5}`}}
	a := New(llm, testConfig())

	_, err := a.Analyze(context.Background(), &review.Request{LLMProvider: "openai"}, nil, &review.Plan{Summary: "small PR"})
	require.NoError(t, err)
}
