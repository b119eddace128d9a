package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codecrow.yaml"), []byte(content), 0o644))
}

func TestInitialize_MergesUserProviderOverBuiltin(t *testing.T) {
	dir := t.TempDir()
	writeTestConfig(t, dir, `
llm_providers:
  default:
    provider: openai
    model: gpt-test
    api_key_env: OPENAI_KEY
`)

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	provider, err := cfg.GetLLMProvider("default")
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.Provider)
	assert.Equal(t, "gpt-test", provider.Model)
}

func TestInitialize_ResolvesDefaultsFromBuiltins(t *testing.T) {
	dir := t.TempDir()
	writeTestConfig(t, dir, "defaults:\n  max_batch_size: 4\n")

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Defaults.MaxBatchSize)
	assert.Equal(t, 5, cfg.Defaults.MaxParallelStage1)
	assert.Equal(t, 25*1024, cfg.Defaults.MaxDiffBytesPerFile)
}

func TestInitialize_MissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Initialize(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestInitialize_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_API_KEY_ENV", "MY_KEY")
	dir := t.TempDir()
	writeTestConfig(t, dir, `
llm_providers:
  default:
    provider: anthropic
    model: claude
    api_key_env: ${TEST_API_KEY_ENV}
`)

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	provider, err := cfg.GetLLMProvider("default")
	require.NoError(t, err)
	assert.Equal(t, "MY_KEY", provider.APIKeyEnv)
}
