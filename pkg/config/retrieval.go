package config

import "time"

// RetrievalConfig describes how to reach the external retrieval service.
type RetrievalConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	TopK    int           `yaml:"top_k"`
}

// resolveRetrievalConfig applies defaults the way resolveRunbooksConfig
// does in the teacher's loader: start from sane defaults, override only
// what the YAML actually set.
func resolveRetrievalConfig(y *RetrievalYAMLConfig) *RetrievalConfig {
	cfg := &RetrievalConfig{
		Timeout: 10 * time.Second,
		TopK:    10,
	}
	if y == nil {
		return cfg
	}
	if y.BaseURL != "" {
		cfg.BaseURL = y.BaseURL
	}
	if y.Timeout != "" {
		if d, err := time.ParseDuration(y.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	if y.TopK > 0 {
		cfg.TopK = y.TopK
	}
	return cfg
}
