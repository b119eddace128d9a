package batchreview

import (
	"github.com/rostilos/codecrow/pkg/llmport"
	"github.com/rostilos/codecrow/pkg/toolexec"
)

var stage1ToolDefinitions = []llmport.ToolDefinition{
	{
		Name:        toolexec.ToolGetBranchFileContent,
		Description: "Fetch the full current content of a file on the PR's branch, for files outside this batch that the diff references.",
		ParametersSchema: `{
  "type": "object",
  "properties": {
    "branch": {"type": "string"},
    "filePath": {"type": "string"}
  },
  "required": ["branch", "filePath"]
}`,
	},
}
