package batchreview

import (
	"fmt"
	"strings"

	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/retrieval"
	"github.com/rostilos/codecrow/pkg/review"
)

const stage1SystemPrompt = `You are a senior code reviewer. Review the files in this batch for bugs,
security issues, performance problems, and style/architecture concerns.
Use the retrieved context and the full list of PR files for cross-file
awareness, but only report issues located in the files in this batch.

Respond with a single JSON object and nothing else, matching this shape:` + "\n" + stage1SchemaDescription

const stage1SchemaDescription = `{
  "reviews": [
    {
      "file": "...",
      "analysis_summary": "...",
      "issues": [
        {
          "severity": "HIGH" | "MEDIUM" | "LOW" | "INFO",
          "category": "SECURITY" | "PERFORMANCE" | "CODE_QUALITY" | "BUG_RISK" | "STYLE" | "DOCUMENTATION" | "BEST_PRACTICES" | "ERROR_HANDLING" | "TESTING" | "ARCHITECTURE",
          "line": "N or N-M",
          "reason": "...",
          "suggestedFixDescription": "...",
          "suggestedFixDiff": "... or null",
          "id": "... (set only when updating a previously reported issue)",
          "isResolved": false
        }
      ],
      "confidence": 0.0,
      "note": "..."
    }
  ]
}`

func buildMessages(req *review.Request, plan *review.Plan, batch review.Batch, allFiles []string, deletedFiles []string, chunks []retrieval.RelevantChunk) []llmport.ConversationMessage {
	var user strings.Builder

	user.WriteString("## Batch Files\n\n")
	for _, item := range batch.Items {
		fmt.Fprintf(&user, "### %s (priority %s)\n\n```diff\n%s\n```\n\n", item.File.Path, item.Priority, item.File.HunkText)
	}

	user.WriteString("## All Changed Files In This PR\n\n")
	user.WriteString(strings.Join(allFiles, ", "))
	user.WriteString("\n\n")

	if len(deletedFiles) > 0 {
		user.WriteString("## Deleted Files\n\n")
		user.WriteString(strings.Join(deletedFiles, ", "))
		user.WriteString("\n\n")
	}

	if len(chunks) > 0 {
		user.WriteString("## Retrieved Context\n\n")
		for _, c := range chunks {
			fmt.Fprintf(&user, "--- %s (score %.2f) ---\n%s\n\n", c.Path, c.Score, c.Content)
		}
	}

	if section := previousIssuesSection(req, batch); section != "" {
		user.WriteString(section)
	}

	messages := []llmport.ConversationMessage{
		{Role: llmport.RoleSystem, Content: stage1SystemPrompt},
		{Role: llmport.RoleUser, Content: user.String()},
	}
	return messages
}
