package postprocess

import (
	"regexp"
	"strings"
)

// issueKeywords are domain terms whose presence in a reason string is a
// strong signal two issues describe the same problem, beyond whatever
// identifiers happen to be named.
var issueKeywords = []string{
	"hardcode", "hardcoded",
	"sql injection", "injection",
	"xss", "cross-site",
	"authentication", "auth bypass",
	"null pointer", "null check", "nullpointer",
	"memory leak", "resource leak",
	"n+1", "n+1 query",
	"environment", "config", "configuration",
	"secret", "password", "api key", "apikey",
	"deprecated",
	"unused", "dead code",
	"performance", "slow", "inefficient",
}

var (
	quotedIdentifier = regexp.MustCompile(`['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]`)
	snakeCaseWord    = regexp.MustCompile(`(?i)\b([a-z]+(?:_[a-z]+)+)\b`)
	camelCaseWord    = regexp.MustCompile(`\b([a-z]+(?:[A-Z][a-z]+)+)\b`)
)

// extractKeywords pulls quoted strings, snake_case and camelCase
// identifiers out of an issue's reason, for use as line-correction search
// terms. Capped at 10 to bound the per-issue candidate-line scan.
func extractKeywords(reason string) []string {
	if reason == "" {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, m := range quotedIdentifier.FindAllStringSubmatch(reason, -1) {
		add(m[1])
	}
	for _, m := range snakeCaseWord.FindAllStringSubmatch(reason, -1) {
		add(m[1])
	}
	for _, m := range camelCaseWord.FindAllStringSubmatch(reason, -1) {
		add(m[1])
	}

	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

// extractCoreKeywords is the cheaper keyword set dedup scoring uses: known
// domain terms present in the reason, plus the first handful of plain
// identifiers, all lowercased for set comparison.
func extractCoreKeywords(reason string) []string {
	lower := strings.ToLower(reason)
	var out []string

	for _, kw := range issueKeywords {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}

	identifiers := plainIdentifier.FindAllString(reason, -1)
	for i, id := range identifiers {
		if i >= 5 {
			break
		}
		out = append(out, strings.ToLower(id))
	}

	return out
}

var plainIdentifier = regexp.MustCompile(`\b[a-zA-Z_][a-zA-Z0-9_]{2,}\b`)
