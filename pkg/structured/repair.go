package structured

import "fmt"

// BuildRepairPrompt builds the prompt sent to an LLM to fix a response that
// failed structured-output parsing. Repairer implementations typically call
// this to build the message they send.
func BuildRepairPrompt(schema Schema, broken string, lastErr string) string {
	return fmt.Sprintf(`You are a JSON extraction assistant. The following text was expected to be valid JSON matching the %q schema but failed to parse.

Parse error: %s

%s

Rules:
1. Return ONLY valid JSON - no markdown, no explanations, no extra text.
2. If the text already contains valid JSON, clean it up and return it unchanged in meaning.
3. Ensure all string values are properly escaped, including embedded newlines.
4. Array fields must be JSON arrays, never objects with numeric keys.

Raw response to fix:
%s

Return ONLY the JSON object:`, schema.Name(), lastErr, schema.PromptDescription(), broken)
}
