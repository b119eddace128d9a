package structured

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewPayload struct {
	Comment string        `json:"comment"`
	Issues  []issuePayload `json:"issues"`
}

type issuePayload struct {
	Severity string `json:"severity"`
	File     string `json:"file"`
	Reason   string `json:"reason"`
}

var reviewSchema = MapSchema{
	SchemaName:  "review",
	Arrays:      []string{"issues"},
	Description: `{"comment": "...", "issues": [{"severity": "...", "file": "...", "reason": "..."}]}`,
}

func TestParse_DirectValidJSON(t *testing.T) {
	raw := `{"comment":"looks fine","issues":[{"severity":"HIGH","file":"a.go","reason":"nil deref"}]}`
	v, err := Parse[reviewPayload](context.Background(), raw, reviewSchema, nil)
	require.NoError(t, err)
	assert.Equal(t, "looks fine", v.Comment)
	require.Len(t, v.Issues, 1)
	assert.Equal(t, "a.go", v.Issues[0].File)
}

func TestParse_StripsMarkdownFence(t *testing.T) {
	raw := "```json\n{\"comment\":\"ok\",\"issues\":[]}\n```"
	v, err := Parse[reviewPayload](context.Background(), raw, reviewSchema, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", v.Comment)
}

func TestParse_NumericKeyedIssuesObjectBecomesArray(t *testing.T) {
	raw := `{"comment":"ok","issues":{"0":{"severity":"LOW","file":"a.go","reason":"style"},"1":{"severity":"HIGH","file":"b.go","reason":"bug"}}}`
	v, err := Parse[reviewPayload](context.Background(), raw, reviewSchema, nil)
	require.NoError(t, err)
	require.Len(t, v.Issues, 2)
	assert.Equal(t, "a.go", v.Issues[0].File)
	assert.Equal(t, "b.go", v.Issues[1].File)
}

func TestParse_UnescapedNewlineInStringIsRepaired(t *testing.T) {
	raw := "{\"comment\":\"multi\nline\",\"issues\":[]}"
	v, err := Parse[reviewPayload](context.Background(), raw, reviewSchema, nil)
	require.NoError(t, err)
	assert.Equal(t, "multi\nline", v.Comment)
}

func TestParse_BalancedExtractionFromSurroundingText(t *testing.T) {
	raw := `Here is my analysis: {"comment":"ok","issues":[]} Hope that helps!`
	v, err := Parse[reviewPayload](context.Background(), raw, reviewSchema, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", v.Comment)
}

type fakeRepairer struct {
	calls   int
	fixedOn int
	output  string
}

func (f *fakeRepairer) Repair(_ context.Context, _ string, _ string, _ Schema) (string, error) {
	f.calls++
	if f.calls >= f.fixedOn {
		return f.output, nil
	}
	return "still not json", nil
}

func TestParse_RepairLoopEventuallySucceeds(t *testing.T) {
	repairer := &fakeRepairer{fixedOn: 2, output: `{"comment":"fixed","issues":[]}`}
	v, err := Parse[reviewPayload](context.Background(), "not json at all", reviewSchema, repairer)
	require.NoError(t, err)
	assert.Equal(t, "fixed", v.Comment)
	assert.Equal(t, 2, repairer.calls)
}

func TestParse_RepairLoopExhaustedReturnsParseFailure(t *testing.T) {
	repairer := &fakeRepairer{fixedOn: 99, output: ""}
	_, err := Parse[reviewPayload](context.Background(), "not json at all", reviewSchema, repairer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "review")
	assert.Equal(t, maxRepairAttempts, repairer.calls)
}

func TestParse_RepairerErrorStopsLoop(t *testing.T) {
	repairer := &errRepairer{err: errors.New("llm unavailable")}
	_, err := Parse[reviewPayload](context.Background(), "not json at all", reviewSchema, repairer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm unavailable")
}

type errRepairer struct{ err error }

func (e *errRepairer) Repair(context.Context, string, string, Schema) (string, error) {
	return "", e.err
}

func TestParse_EmptyResponseFailsWithoutRepairer(t *testing.T) {
	_, err := Parse[reviewPayload](context.Background(), "", reviewSchema, nil)
	require.Error(t, err)
}
