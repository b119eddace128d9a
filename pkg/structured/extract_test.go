package structured

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences_RemovesJSONFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
}

func TestStripFences_RemovesPlainFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}\n```"))
}

func TestStripFences_NoFenceReturnsTrimmed(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("  {\"a\":1}  "))
}

func TestFindBalancedJSON_ExtractsObjectIgnoringSurroundingText(t *testing.T) {
	got, ok := FindBalancedJSON(`preamble {"a": {"nested": 1}} trailer`)
	assert.True(t, ok)
	assert.Equal(t, `{"a": {"nested": 1}}`, got)
}

func TestFindBalancedJSON_IgnoresBracesInsideStrings(t *testing.T) {
	got, ok := FindBalancedJSON(`{"reason": "uses a { brace } in text"}`)
	assert.True(t, ok)
	assert.Equal(t, `{"reason": "uses a { brace } in text"}`, got)
}

func TestFindBalancedJSON_NoJSONReturnsFalse(t *testing.T) {
	_, ok := FindBalancedJSON("just plain text")
	assert.False(t, ok)
}

func TestFixUnescapedNewlines_EscapesInsideStringsOnly(t *testing.T) {
	in := "{\"a\":\"line1\nline2\",\"b\":1}"
	out := FixUnescapedNewlines(in)
	assert.Equal(t, `{"a":"line1\nline2","b":1}`, out)
}

func TestFixUnescapedNewlines_PreservesExistingEscapes(t *testing.T) {
	in := `{"a":"already\nescaped"}`
	assert.Equal(t, in, FixUnescapedNewlines(in))
}

func TestNormalizeNumericArray_ConvertsObjectToOrderedArray(t *testing.T) {
	raw := []byte(`{"2":"c","0":"a","1":"b"}`)
	out, changed := NormalizeNumericArray(raw)
	assert.True(t, changed)
	assert.JSONEq(t, `["a","b","c"]`, string(out))
}

func TestNormalizeNumericArray_NonNumericKeysUnchanged(t *testing.T) {
	raw := []byte(`{"severity":"HIGH"}`)
	out, changed := NormalizeNumericArray(raw)
	assert.False(t, changed)
	assert.Equal(t, raw, []byte(out))
}

func TestNullifySuggestedFixDiff_ReplacesValueWithNull(t *testing.T) {
	in := `{"suggestedFixDiff":"--- a\n+++ b"}`
	out := nullifySuggestedFixDiff(in)
	assert.Contains(t, out, `"suggestedFixDiff": null`)
}

func TestNullifySuggestedFixDiff_NoOpWhenFieldAbsent(t *testing.T) {
	in := `{"comment":"ok"}`
	assert.Equal(t, in, nullifySuggestedFixDiff(in))
}
