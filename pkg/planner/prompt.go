package planner

import (
	"fmt"
	"strings"

	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/review"
)

const systemPrompt = `You are a senior code reviewer performing the planning pass of a multi-stage
pull request review. Your job is to triage changed files, not to review them
in depth. For each file decide how urgent a close review is and why, group
files of similar priority together, and flag any file not worth reviewing
(generated code, lockfiles, pure formatting). Also note any cross-file
concerns you suspect — places where a change in one file likely affects the
behavior of another — so later stages know where to look.

Respond with a single JSON object and nothing else, matching this shape:` + "\n" + planSchemaDescription

const planSchemaDescription = `{
  "summary": "one paragraph describing the overall shape of the change",
  "groups": [
    {
      "priority": "CRITICAL" | "HIGH" | "MEDIUM" | "LOW",
      "rationale": "why these files share this priority",
      "files": [
        {"path": "...", "focus_areas": ["..."], "risk_level": "..."}
      ]
    }
  ],
  "skipped": [
    {"path": "...", "reason": "..."}
  ],
  "cross_file_concerns": ["..."]
}`

func buildMessages(req *review.Request, diff *review.ParsedDiff) []llmport.ConversationMessage {
	var user strings.Builder

	fmt.Fprintf(&user, "## Pull Request\n\nTitle: %s\n", req.PRTitle)
	if req.PRDescription != "" {
		fmt.Fprintf(&user, "Description:\n%s\n", req.PRDescription)
	}
	fmt.Fprintf(&user, "Target branch: %s\n\n", req.TargetBranch)

	user.WriteString("## Changed Files\n\n")
	for _, f := range diff.Files {
		status := string(f.ChangeType)
		if f.Skipped {
			status += ", pre-skipped: " + f.SkipReason
		}
		fmt.Fprintf(&user, "- %s (%s, +%d/-%d)\n", f.Path, status, f.Additions, f.Deletions)
	}

	if len(req.PreviousIssues) > 0 {
		user.WriteString("\n## Previously Reported Issues\n\n")
		user.WriteString("This is an incremental review. Weigh files with open previous issues more heavily.\n")
		for _, pi := range req.PreviousIssues {
			fmt.Fprintf(&user, "- %s:%s [%s] %s\n", pi.File, pi.Line, pi.Status, pi.Reason)
		}
	}

	return []llmport.ConversationMessage{
		{Role: llmport.RoleSystem, Content: systemPrompt},
		{Role: llmport.RoleUser, Content: user.String()},
	}
}
