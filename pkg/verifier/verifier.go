// Package verifier implements the Stage-1.5 Verifier: an optional pass that
// re-checks "suspect" issues (undefined-symbol-shaped claims) against the
// request's enrichment content before they reach the Reconciler, discarding
// ones the LLM confirms were false positives.
package verifier

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/review"
	"github.com/rostilos/codecrow/pkg/structured"
)

var errExhausted = errors.New("verifier: exceeded tool-calling iterations without a verdict")

const maxToolIterations = 3

// suspectPhrases are the reason substrings that make an issue a candidate
// for verification. Matching is case-insensitive.
var suspectPhrases = []string{
	"undefined", "missing import", "not defined", "does not exist",
	"cannot find", "unresolved", "missing property", "missing method",
}

var suspectCategories = map[review.Category]bool{
	review.CategoryBugRisk:      true,
	review.CategoryCodeQuality:  true,
	review.CategoryArchitecture: true,
}

type Verifier struct {
	llm    llmport.Client
	cfg    *config.Config
	logger *slog.Logger
}

func New(llm llmport.Client, cfg *config.Config) *Verifier {
	return &Verifier{llm: llm, cfg: cfg, logger: slog.Default().With("component", "verifier")}
}

// Verify re-checks every suspect issue against req.Enrichment's file
// content, one LLM-driven search per issue. Runs only when the request
// carries enrichment data; fails open on any error, returning issues
// unchanged rather than blocking the pipeline on a Stage-1.5 problem.
func (v *Verifier) Verify(ctx context.Context, req *review.Request, issues []review.Issue) ([]review.Issue, error) {
	if !req.Enrichment.HasData() {
		return issues, nil
	}

	suspects, rest := partition(issues)
	if len(suspects) == 0 {
		return issues, nil
	}

	provider, err := v.cfg.GetLLMProvider(req.LLMProvider)
	if err != nil {
		v.logger.Warn("verifier skipped, unknown provider", "error", err)
		return issues, nil
	}

	files := indexFiles(req.Enrichment)

	kept := make([]review.Issue, 0, len(suspects))
	for _, issue := range suspects {
		confirmed, err := v.checkIssue(ctx, req.ID, provider, issue, files)
		if err != nil {
			v.logger.Warn("verification call failed, keeping issue unverified", "file", issue.File, "error", err)
			kept = append(kept, issue)
			continue
		}
		if !confirmed {
			kept = append(kept, issue)
		}
	}

	return append(rest, kept...), nil
}

// partition splits issues into ones matching the suspect category+phrase
// rule and everything else, which bypasses verification untouched.
func partition(issues []review.Issue) (suspects, rest []review.Issue) {
	for _, issue := range issues {
		if isSuspect(issue) {
			suspects = append(suspects, issue)
		} else {
			rest = append(rest, issue)
		}
	}
	return suspects, rest
}

func isSuspect(issue review.Issue) bool {
	if !suspectCategories[issue.Category] {
		return false
	}
	reason := strings.ToLower(issue.Reason)
	for _, phrase := range suspectPhrases {
		if strings.Contains(reason, phrase) {
			return true
		}
	}
	return false
}

func indexFiles(e *review.Enrichment) map[string]string {
	files := make(map[string]string, len(e.Files))
	for _, f := range e.Files {
		files[f.Path] = f.Content
	}
	return files
}

// checkIssue runs the bounded tool-calling loop for a single issue and
// reports whether the LLM confirmed the flagged symbol truly exists (i.e.
// the issue is a false positive and should be discarded).
func (v *Verifier) checkIssue(ctx context.Context, requestID string, provider *config.LLMProviderConfig, issue review.Issue, files map[string]string) (bool, error) {
	messages := buildMessages(issue)

	for i := 0; i < maxToolIterations; i++ {
		stream, err := v.llm.Generate(ctx, &llmport.GenerateInput{
			RequestID: requestID,
			Messages:  messages,
			Config:    provider,
			Tools:     searchToolDefinitions,
		})
		if err != nil {
			return false, err
		}
		collected, err := llmport.Drain(stream)
		if err != nil {
			return false, err
		}

		if len(collected.ToolCalls) == 0 {
			repairer := &llmRepairer{llm: v.llm, requestID: requestID, provider: provider}
			resp, err := structured.Parse[verdictResponse](ctx, collected.Text, verdictSchema, repairer)
			if err != nil {
				return false, err
			}
			return resp.Verdict == "found", nil
		}

		messages = append(messages, llmport.ConversationMessage{
			Role:      llmport.RoleAssistant,
			Content:   collected.Text,
			ToolCalls: toToolCalls(collected.ToolCalls),
		})
		for _, call := range collected.ToolCalls {
			result := searchFileContent(files, call.Arguments)
			messages = append(messages, llmport.ConversationMessage{
				Role:       llmport.RoleTool,
				Content:    result,
				ToolCallID: call.CallID,
				ToolName:   call.Name,
			})
		}
	}
	return false, errExhausted
}

func toToolCalls(chunks []llmport.ToolCallChunk) []llmport.ToolCall {
	calls := make([]llmport.ToolCall, len(chunks))
	for i, c := range chunks {
		calls[i] = llmport.ToolCall{ID: c.CallID, Name: c.Name, Arguments: c.Arguments}
	}
	return calls
}

