package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the complete codecrow.yaml file structure.
type YAMLConfig struct {
	Defaults     *Defaults                    `yaml:"defaults"`
	Retrieval    *RetrievalYAMLConfig         `yaml:"retrieval"`
	LLMProviders map[string]LLMProviderConfig `yaml:"llm_providers"`
}

// RetrievalYAMLConfig mirrors RetrievalConfig but keeps the timeout as a
// parseable string in YAML, the way the teacher's RunbooksYAMLConfig keeps
// cache_ttl as a string for time.ParseDuration.
type RetrievalYAMLConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
	TopK    int    `yaml:"top_k"`
}

// Initialize loads, merges, and returns ready-to-use configuration.
//
// Steps: read codecrow.yaml, expand ${VAR} references, parse YAML, merge
// built-in LLM providers with user-defined ones (user overrides built-in),
// resolve defaults and retrieval settings.
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	stats := cfg.Stats()
	log.Info("configuration initialized", "llm_providers", stats.LLMProviders)
	return cfg, nil
}

func load(configDir string) (*Config, error) {
	var yamlCfg YAMLConfig
	yamlCfg.LLMProviders = make(map[string]LLMProviderConfig)

	path := filepath.Join(configDir, "codecrow.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewLoadError("codecrow.yaml", fmt.Errorf("%w: %s", ErrConfigNotFound, path))
		}
		return nil, NewLoadError("codecrow.yaml", err)
	}

	data = ExpandEnv(data)
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, NewLoadError("codecrow.yaml", fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}

	providers := mergeLLMProviders(builtinLLMProviders(), yamlCfg.LLMProviders)

	defaults := ResolveDefaults(yamlCfg.Defaults)

	// Merge user-provided defaults over the resolved built-ins for fields
	// the YAML actually set, mirroring the teacher's mergo.WithOverride
	// merge of queue config on top of defaults.
	if yamlCfg.Defaults != nil {
		if err := mergo.Merge(defaults, yamlCfg.Defaults, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge defaults: %w", err)
		}
	}

	return &Config{
		configDir:            configDir,
		Defaults:             defaults,
		Retrieval:            resolveRetrievalConfig(yamlCfg.Retrieval),
		LLMProviderRegistry:  NewLLMProviderRegistry(providers),
	}, nil
}

// builtinLLMProviders returns the zero-config defaults shipped with the
// module, the way the teacher's GetBuiltinConfig() ships default agents.
func builtinLLMProviders() map[string]LLMProviderConfig {
	return map[string]LLMProviderConfig{
		"default": {
			Provider:    "anthropic",
			Model:       "claude-sonnet",
			APIKeyEnv:   "LLM_API_KEY",
			Temperature: 0.2,
			MaxTokens:   8192,
		},
	}
}
