package crossfile

import (
	"fmt"
	"strings"

	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/review"
)

const resultSchemaDescription = `{
  "prRiskLevel": "LOW" | "MEDIUM" | "HIGH" | "CRITICAL",
  "crossFileIssues": [{"file": string, "line": string, "severity": string,
    "category": string, "reason": string, "suggestedFixDescription": string,
    "suggestedFixDiff": string}],
  "dataFlowConcerns": [string],
  "immutabilityCheck": string,
  "databaseIntegrityCheck": string,
  "prRecommendation": string,
  "confidence": number between 0 and 1
}`

const systemPrompt = `You are the cross-file analysis pass of a code review pipeline. Every
file in this PR has already been reviewed on its own; your job is to find
problems only visible when files are considered together: broken data
flow between the changed files, contracts one file assumes another no
longer honors, and any risk the plan flagged as spanning file boundaries.

Do not repeat a per-file issue that is already in the list below unless
you are elevating it because of a cross-file interaction. Omit
immutabilityCheck or databaseIntegrityCheck when this PR doesn't touch
that concern.

Respond with a single JSON object and nothing else:
` + resultSchemaDescription

func buildMessages(issues []review.Issue, plan *review.Plan) []llmport.ConversationMessage {
	var user strings.Builder

	user.WriteString("Plan summary:\n")
	user.WriteString(plan.Summary)
	user.WriteString("\n\n")

	if len(plan.CrossFileConcerns) > 0 {
		user.WriteString("Cross-file concerns flagged by the planner:\n")
		for _, c := range plan.CrossFileConcerns {
			fmt.Fprintf(&user, "- %s\n", c)
		}
		user.WriteString("\n")
	}

	user.WriteString("Issues already found per-file:\n")
	if len(issues) == 0 {
		user.WriteString("(none)\n")
	}
	for _, issue := range issues {
		fmt.Fprintf(&user, "- %s:%s [%s/%s] %s\n", issue.File, issue.Line, issue.Severity, issue.Category, issue.Reason)
	}

	return []llmport.ConversationMessage{
		{Role: llmport.RoleSystem, Content: systemPrompt},
		{Role: llmport.RoleUser, Content: user.String()},
	}
}
