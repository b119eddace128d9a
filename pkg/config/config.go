package config

// Config is the umbrella, request-independent configuration object. It is
// loaded once at process start and passed explicitly to every stage
// constructor — nothing in this module reads from a package-level global.
type Config struct {
	configDir string

	Defaults  *Defaults
	Retrieval *RetrievalConfig

	LLMProviderRegistry *LLMProviderRegistry
}

// ConfigDir returns the directory this configuration was loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// GetLLMProvider retrieves an LLM provider configuration by name.
func (c *Config) GetLLMProvider(name string) (*LLMProviderConfig, error) {
	return c.LLMProviderRegistry.Get(name)
}

// Stats summarizes loaded configuration for startup logging.
type Stats struct {
	LLMProviders int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() Stats {
	return Stats{LLMProviders: len(c.LLMProviderRegistry.GetAll())}
}
