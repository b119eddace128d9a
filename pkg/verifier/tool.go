package verifier

import (
	"encoding/json"
	"strings"

	"github.com/rostilos/codecrow/pkg/llmport"
)

const toolSearchFileContent = "searchFileContent"

var searchToolDefinitions = []llmport.ToolDefinition{
	{
		Name:        toolSearchFileContent,
		Description: "Search the cached content of one file in this PR's enrichment graph for a literal substring, to confirm whether a flagged symbol actually exists.",
		ParametersSchema: `{
  "type": "object",
  "properties": {
    "path": {"type": "string"},
    "needle": {"type": "string"}
  },
  "required": ["path", "needle"]
}`,
	},
}

// searchFileContent looks up path in files and reports whether needle
// occurs in its content. A path absent from the enrichment graph is
// reported as unavailable rather than not-found, since the two mean
// different things to the verifying LLM: one is "the symbol isn't there",
// the other is "we never fetched this file".
func searchFileContent(files map[string]string, argsJSON string) string {
	var args struct {
		Path   string `json:"path"`
		Needle string `json:"needle"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "fileUnavailable"
	}

	content, ok := files[args.Path]
	if !ok {
		return "fileUnavailable"
	}
	if strings.Contains(content, args.Needle) {
		return "found"
	}
	return "notFound"
}
