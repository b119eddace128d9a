package structured

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rostilos/codecrow/pkg/review"
)

// maxRepairAttempts bounds the LLM repair loop: the response gets this many
// chances to come back parseable before Parse gives up.
const maxRepairAttempts = 2

// maxRepairContextChars truncates the broken text handed to a repair
// prompt, so a wildly oversized response doesn't blow the next call's
// token budget on quoting itself back.
const maxRepairContextChars = 4000

// Repairer asks an LLM to fix a broken structured response. Implementations
// typically wrap an llmport.Client call with a fixed repair prompt.
type Repairer interface {
	Repair(ctx context.Context, broken string, lastErr string, schema Schema) (string, error)
}

// Parse extracts and decodes raw into T, trying progressively more
// aggressive normalization before falling back to an LLM repair loop.
// Returns a *review.ParseFailure wrapping the last error once every
// strategy, including every repair attempt, is exhausted.
func Parse[T any](ctx context.Context, raw string, schema Schema, repairer Repairer) (T, error) {
	var zero T

	candidate := raw
	var lastErr error

	for attempt := 0; attempt <= maxRepairAttempts; attempt++ {
		value, err := tryDecode[T](candidate, schema)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if attempt == maxRepairAttempts || repairer == nil {
			break
		}

		repaired, repairErr := repairer.Repair(ctx, truncate(candidate, maxRepairContextChars), err.Error(), schema)
		if repairErr != nil {
			lastErr = repairErr
			break
		}
		candidate = repaired
	}

	return zero, &review.ParseFailure{Schema: schema.Name(), LastError: lastErr}
}

// tryDecode runs the non-LLM normalization pipeline: fence-stripping,
// newline repair, direct decode, then progressively more aggressive
// fallbacks (balanced-brace extraction, suggestedFixDiff nullification).
func tryDecode[T any](raw string, schema Schema) (T, error) {
	var zero T
	if raw == "" {
		return zero, fmt.Errorf("empty response")
	}

	stripped := StripFences(raw)
	fixed := FixUnescapedNewlines(stripped)

	if v, err := decodeNormalized[T](fixed, schema); err == nil {
		return v, nil
	} else {
		firstErr := err

		if nullified := nullifySuggestedFixDiff(fixed); nullified != fixed {
			if v, err := decodeNormalized[T](nullified, schema); err == nil {
				return v, nil
			}
		}

		if balanced, ok := FindBalancedJSON(fixed); ok && balanced != fixed {
			if v, err := decodeNormalized[T](balanced, schema); err == nil {
				return v, nil
			}
			if nullified := nullifySuggestedFixDiff(balanced); nullified != balanced {
				if v, err := decodeNormalized[T](nullified, schema); err == nil {
					return v, nil
				}
			}
		}

		return zero, firstErr
	}
}

// decodeNormalized applies per-field numeric-keyed-array normalization to
// the schema's declared array fields, then decodes into T.
func decodeNormalized[T any](text string, schema Schema) (T, error) {
	var zero T

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return zero, err
	}

	for _, name := range schema.ArrayFields() {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if normalized, changed := NormalizeNumericArray(raw); changed {
			fields[name] = normalized
		}
	}

	normalizedJSON, err := json.Marshal(fields)
	if err != nil {
		return zero, err
	}

	var value T
	if err := json.Unmarshal(normalizedJSON, &value); err != nil {
		return zero, err
	}
	return value, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
