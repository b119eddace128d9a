// Package structured turns a raw LLM response into a typed value, tolerating
// the malformed JSON real models produce: markdown fences, stray unescaped
// control characters inside string literals, and numeric-keyed objects
// standing in for arrays. When normalization alone isn't enough it drives a
// bounded repair loop back through the model.
package structured

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// StripFences removes a single leading/trailing markdown code fence if
// present, preferring a ```json fence if one exists anywhere in the text.
func StripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// FindBalancedJSON scans text for the first top-level JSON object or array
// and returns its source text, tracking string/escape state so braces and
// brackets inside string literals are ignored.
func FindBalancedJSON(text string) (string, bool) {
	start := -1
	var open, close byte
	for i := 0; i < len(text); i++ {
		if text[i] == '{' || text[i] == '[' {
			start = i
			open = text[i]
			if open == '{' {
				close = '}'
			} else {
				close = ']'
			}
			break
		}
	}
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escapeNext := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escapeNext {
			escapeNext = false
			continue
		}
		if c == '\\' && inString {
			escapeNext = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// FixUnescapedNewlines re-escapes literal newline, carriage-return, and tab
// bytes found inside JSON string literals, tracking quote/escape state
// character by character. Models frequently emit these raw, which breaks a
// strict JSON parse even though the intent is unambiguous.
func FixUnescapedNewlines(text string) string {
	if text == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	inString := false
	i := 0
	for i < len(text) {
		c := text[i]
		if c == '\\' && inString && i+1 < len(text) {
			b.WriteByte(c)
			b.WriteByte(text[i+1])
			i += 2
			continue
		}
		if c == '"' {
			inString = !inString
			b.WriteByte(c)
			i++
			continue
		}
		if inString {
			switch c {
			case '\n':
				b.WriteString("\\n")
				i++
				continue
			case '\r':
				b.WriteString("\\r")
				i++
				continue
			case '\t':
				b.WriteString("\\t")
				i++
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// NormalizeNumericArray rewrites a JSON object whose keys are entirely
// numeric strings ("0", "1", "2", ...) into a JSON array ordered by key
// value, leaving any other object untouched. Models occasionally emit an
// array field as such an object when the item count is large.
func NormalizeNumericArray(raw json.RawMessage) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || len(obj) == 0 {
		return raw, false
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		if !isNumeric(k) {
			return raw, false
		}
		keys = append(keys, k)
	}

	indexed := make([]int, len(keys))
	for i, k := range keys {
		n, _ := strconv.Atoi(k)
		indexed[i] = n
	}
	for i := 1; i < len(indexed); i++ {
		for j := i; j > 0 && indexed[j-1] > indexed[j]; j-- {
			indexed[j-1], indexed[j] = indexed[j], indexed[j-1]
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, string(obj[k]))
	}
	return json.RawMessage("[" + strings.Join(parts, ",") + "]"), true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	start := 0
	if s[0] == '-' {
		start = 1
	}
	if start == len(s) {
		return false
	}
	for _, r := range s[start:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// nullifySuggestedFixDiff is a last-resort recovery for a known-problematic
// field: unescaped quotes inside a unified diff string routinely break a
// strict parse. Nullifying the field loses the diff but lets the rest of
// the payload parse.
var suggestedFixDiffPattern = regexp.MustCompile(`"suggestedFixDiff"\s*:\s*"(?:[^"\\]|\\.)*"`)

func nullifySuggestedFixDiff(text string) string {
	if !strings.Contains(text, `"suggestedFixDiff"`) {
		return text
	}
	return suggestedFixDiffPattern.ReplaceAllString(text, `"suggestedFixDiff": null`)
}
