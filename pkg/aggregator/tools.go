package aggregator

import (
	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/toolexec"
)

var stage3ToolDefinitions = []llmport.ToolDefinition{
	{
		Name:        toolexec.ToolGetBranchFileContent,
		Description: "Fetch the full current content of a file on the PR's branch, to double-check a finding before it's written into the final summary.",
		ParametersSchema: `{
  "type": "object",
  "properties": {
    "branch": {"type": "string"},
    "filePath": {"type": "string"}
  },
  "required": ["branch", "filePath"]
}`,
	},
	{
		Name:        toolexec.ToolGetPullRequestComments,
		Description: "Fetch existing review comments on this pull request, to avoid restating feedback a human reviewer already gave.",
		ParametersSchema: `{
  "type": "object",
  "properties": {
    "pullRequestId": {"type": "string"}
  },
  "required": ["pullRequestId"]
}`,
	},
}
