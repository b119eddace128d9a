package verifier

import (
	"fmt"
	"strings"

	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/review"
)

const verdictSchemaDescription = `{"verdict": "found" | "notFound"}`

const systemPrompt = `You verify a single flagged code-review issue that claims a symbol is
undefined, missing, or unresolved. Use the searchFileContent tool to check
the file this issue was raised against (and any other file you reasonably
suspect defines the symbol) before deciding. Do not guess without
searching at least once.

When you are done, respond with a single JSON object and nothing else:
` + verdictSchemaDescription + `
"found" means the symbol genuinely exists, so the issue is a false
positive. "notFound" means the issue should stand.`

func buildMessages(issue review.Issue) []llmport.ConversationMessage {
	var user strings.Builder
	fmt.Fprintf(&user, "File: %s\nLine: %s\nFlagged reason: %s\n", issue.File, issue.Line, issue.Reason)

	return []llmport.ConversationMessage{
		{Role: llmport.RoleSystem, Content: systemPrompt},
		{Role: llmport.RoleUser, Content: user.String()},
	}
}
