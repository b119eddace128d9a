// Package masking redacts secret-shaped text before it leaves the pipeline:
// embedded in a suggested fix diff, in tool-fetched file content, or in a
// user-facing error message. It is process-lifetime state — the compiled
// pattern set never changes after construction — initialized once in
// cmd/codecrow and shared read-only across every request, the one piece of
// state in this module that isn't request-scoped.
package masking

import "log/slog"

// Service applies regex- and structure-based redaction. Stateless beyond
// its compiled patterns, so a single instance is safe to share across every
// concurrent request.
type Service struct {
	patterns    map[string]*CompiledPattern
	groups      map[string][]string
	codeMaskers map[string]Masker
}

// NewService compiles the built-in pattern table and registers the
// structural code maskers. Invalid patterns are logged and skipped rather
// than failing construction.
func NewService() *Service {
	s := &Service{
		patterns:    compileBuiltinPatterns(),
		groups:      builtinGroups,
		codeMaskers: make(map[string]Masker),
	}
	s.register(&KubernetesSecretMasker{})

	slog.Info("masking service initialized",
		"patterns", len(s.patterns), "code_maskers", len(s.codeMaskers))
	return s
}

func (s *Service) register(m Masker) {
	s.codeMaskers[m.Name()] = m
}

// Redact applies the full secret-pattern sweep ("all" group), used by the
// Post-Processor's diff-hygiene pass on suggested fixes and tool-fetched
// file content.
func (s *Service) Redact(text string) string {
	return s.RedactGroup(text, "all")
}

// RedactErrorMessage applies a narrower pattern set tuned for free-form
// prose rather than structured content, so the coordinator's user-facing
// error mapping doesn't mangle ordinary error text with overly broad
// base64/token-shaped false positives.
func (s *Service) RedactErrorMessage(text string) string {
	return s.RedactGroup(text, "basic")
}

// RedactGroup applies the named pattern group's code maskers then regex
// patterns, in that order: structural maskers run first since they can
// tell a Secret from a ConfigMap, something a regex sweep can't.
func (s *Service) RedactGroup(text, group string) string {
	if text == "" {
		return text
	}
	members, ok := s.groups[group]
	if !ok {
		return text
	}

	masked := text
	for _, name := range members {
		if m, ok := s.codeMaskers[name]; ok {
			if m.AppliesTo(masked) {
				masked = m.Mask(masked)
			}
			continue
		}
		if p, ok := s.patterns[name]; ok {
			masked = p.Regex.ReplaceAllString(masked, p.Replacement)
		}
	}
	return masked
}
