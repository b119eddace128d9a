package config

// LLMProviderConfig describes a single configured LLM backend. The core
// never talks to the provider directly — it hands this struct to
// llmport.Client implementations, which own the wire protocol.
type LLMProviderConfig struct {
	Provider       string  `yaml:"provider"`
	Model          string  `yaml:"model"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	ThinkingBudget int     `yaml:"thinking_budget,omitempty"`
}

// LLMProviderRegistry is a read-only lookup over configured providers,
// built once at load time.
type LLMProviderRegistry struct {
	providers map[string]LLMProviderConfig
}

// NewLLMProviderRegistry builds a registry from a name->config map.
func NewLLMProviderRegistry(providers map[string]LLMProviderConfig) *LLMProviderRegistry {
	if providers == nil {
		providers = map[string]LLMProviderConfig{}
	}
	return &LLMProviderRegistry{providers: providers}
}

// Get retrieves a provider configuration by name.
func (r *LLMProviderRegistry) Get(name string) (*LLMProviderConfig, error) {
	cfg, ok := r.providers[name]
	if !ok {
		return nil, NewNotFoundError("llm_provider", name)
	}
	return &cfg, nil
}

// GetAll returns every configured provider.
func (r *LLMProviderRegistry) GetAll() map[string]LLMProviderConfig {
	return r.providers
}

func mergeLLMProviders(builtin, user map[string]LLMProviderConfig) map[string]LLMProviderConfig {
	merged := make(map[string]LLMProviderConfig, len(builtin)+len(user))
	for k, v := range builtin {
		merged[k] = v
	}
	for k, v := range user {
		merged[k] = v
	}
	return merged
}
