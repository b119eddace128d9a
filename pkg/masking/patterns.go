package masking

import (
	"log/slog"
	"regexp"
)

// rawPattern is a masking rule before compilation.
type rawPattern struct {
	pattern     string
	replacement string
	description string
}

// CompiledPattern is a rawPattern with its regex compiled once at service
// construction.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
	Description string
}

// builtinPatterns is the fixed regex table every Service compiles at
// construction. Secret shapes that show up in pull-request content just as
// readily as in the teacher's tool output: API keys, passwords, tokens,
// certificates, and cloud-provider credentials accidentally committed in a
// diff or echoed back in a suggested fix.
var builtinPatterns = map[string]rawPattern{
	"api_key": {
		pattern:     `(?i)(?:api[_-]?key|apikey|key)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-]{20,})["']?`,
		replacement: `"api_key": "[MASKED_API_KEY]"`,
		description: "API keys",
	},
	"password": {
		pattern:     `(?i)(?:password|pwd|pass)["']?\s*[:=]\s*["']?([^"'\s\n]{6,})["']?`,
		replacement: `"password": "[MASKED_PASSWORD]"`,
		description: "Passwords",
	},
	"certificate": {
		pattern:     `(?s)-----BEGIN [A-Z ]+-----.*?-----END [A-Z ]+-----`,
		replacement: `[MASKED_CERTIFICATE]`,
		description: "SSL/TLS certificates",
	},
	"token": {
		pattern:     `(?i)(?:token|bearer|jwt)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-.]{20,})["']?`,
		replacement: `"token": "[MASKED_TOKEN]"`,
		description: "Access tokens",
	},
	"ssh_key": {
		pattern:     `ssh-(?:rsa|dss|ed25519|ecdsa)\s+[A-Za-z0-9+/=]+`,
		replacement: `[MASKED_SSH_KEY]`,
		description: "SSH public keys",
	},
	"private_key": {
		pattern:     `(?i)(?:private[_-]?key)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-.]{20,})["']?`,
		replacement: `"private_key": "[MASKED_PRIVATE_KEY]"`,
		description: "Private keys",
	},
	"secret_key": {
		pattern:     `(?i)(?:secret[_-]?key)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-.]{20,})["']?`,
		replacement: `"secret_key": "[MASKED_SECRET_KEY]"`,
		description: "Secret keys",
	},
	"aws_access_key": {
		pattern:     `(?i)(?:aws[_-]?access[_-]?key[_-]?id)["']?\s*[:=]\s*["']?(AKIA[A-Z0-9]{16})["']?`,
		replacement: `"aws_access_key_id": "[MASKED_AWS_KEY]"`,
		description: "AWS access keys",
	},
	"aws_secret_key": {
		pattern:     `(?i)(?:aws[_-]?secret[_-]?access[_-]?key)["']?\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`,
		replacement: `"aws_secret_access_key": "[MASKED_AWS_SECRET]"`,
		description: "AWS secret keys",
	},
	"github_token": {
		pattern:     `(?i)(?:github[_-]?token|gh[ps]_[A-Za-z0-9_]{36,255})`,
		replacement: `[MASKED_GITHUB_TOKEN]`,
		description: "GitHub tokens",
	},
	"slack_token": {
		pattern:     `(?i)xox[baprs]-[A-Za-z0-9-]{10,72}`,
		replacement: `[MASKED_SLACK_TOKEN]`,
		description: "Slack tokens",
	},
}

// builtinGroups names which patterns (plus, for "kubernetes", the
// structural KubernetesSecretMasker) a caller pulls in together.
var builtinGroups = map[string][]string{
	"basic":      {"api_key", "password"},
	"secrets":    {"api_key", "password", "token", "private_key", "secret_key"},
	"kubernetes": {"kubernetes_secret", "api_key", "password"},
	"cloud":      {"aws_access_key", "aws_secret_key", "api_key", "token"},
	"all": {
		"api_key", "password", "certificate", "token", "ssh_key", "private_key",
		"secret_key", "aws_access_key", "aws_secret_key", "github_token", "slack_token",
		"kubernetes_secret",
	},
}

// compileBuiltinPatterns compiles builtinPatterns, logging and skipping any
// that fail to compile rather than failing service construction outright.
func compileBuiltinPatterns() map[string]*CompiledPattern {
	compiled := make(map[string]*CompiledPattern, len(builtinPatterns))
	for name, p := range builtinPatterns {
		re, err := regexp.Compile(p.pattern)
		if err != nil {
			slog.Error("skipping masking pattern that failed to compile", "pattern", name, "error", err)
			continue
		}
		compiled[name] = &CompiledPattern{
			Name:        name,
			Regex:       re,
			Replacement: p.replacement,
			Description: p.description,
		}
	}
	return compiled
}
