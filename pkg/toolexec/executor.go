// Package toolexec wraps an LLM's tool-calling capability with a whitelist,
// a per-request call budget, and mutual exclusion, so a stage can hand tool
// calls to the LLM without trusting it to stay within policy.
package toolexec

import (
	"context"
	"fmt"
	"sync"
)

// Capability is the narrow interface any tool-calling backend implements.
// Workspace and repo slug are pre-bound by the caller constructing a
// Capability for a request; Executor never sees them.
type Capability interface {
	GetBranchFileContent(ctx context.Context, branch, filePath string) (string, error)
	GetPullRequestComments(ctx context.Context, pullRequestID string) (string, error)
}

// Tool names recognized by Executor, matching the names an LLM is told
// about in its tool definitions.
const (
	ToolGetBranchFileContent   = "getBranchFileContent"
	ToolGetPullRequestComments = "getPullRequestComments"
)

// Executor is a per-stage, per-request façade over a Capability: it
// enforces a whitelist and a call budget, and serializes calls through a
// single mutex. Out-of-whitelist, out-of-budget, and failing calls never
// return a Go error — they return a descriptive message as call content,
// so the LLM can keep reasoning.
type Executor struct {
	capability Capability
	whitelist  map[string]bool
	budget     int

	mu    sync.Mutex
	calls int
}

// New builds an Executor with the given whitelist and call budget. A
// whitelist entry must be one of the ToolGet* constants.
func New(capability Capability, whitelist []string, budget int) *Executor {
	allowed := make(map[string]bool, len(whitelist))
	for _, name := range whitelist {
		allowed[name] = true
	}
	return &Executor{capability: capability, whitelist: allowed, budget: budget}
}

// Call reserves one unit of budget, checks the whitelist, and — if both
// pass — dispatches to the underlying Capability. The reservation happens
// before dispatch so a slow call cannot let additional calls slip past the
// budget check while it is in flight.
func (e *Executor) Call(ctx context.Context, toolName string, args map[string]string) string {
	if !e.whitelist[toolName] {
		return fmt.Sprintf("tool %q is not available in this stage", toolName)
	}

	if !e.reserve() {
		return fmt.Sprintf("tool call budget exhausted (%d calls)", e.budget)
	}

	result, err := e.dispatch(ctx, toolName, args)
	if err != nil {
		return fmt.Sprintf("tool %q failed: %s", toolName, err)
	}
	return result
}

// reserve reports whether a call slot is available, incrementing the
// counter unconditionally on the attempt so budget checks never race.
func (e *Executor) reserve() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.calls >= e.budget {
		return false
	}
	e.calls++
	return true
}

func (e *Executor) dispatch(ctx context.Context, toolName string, args map[string]string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch toolName {
	case ToolGetBranchFileContent:
		return e.capability.GetBranchFileContent(ctx, args["branch"], args["filePath"])
	case ToolGetPullRequestComments:
		return e.capability.GetPullRequestComments(ctx, args["pullRequestId"])
	default:
		return "", fmt.Errorf("unknown tool %q", toolName)
	}
}

// CallsUsed reports how many calls have been dispatched so far, for
// diagnostics and tests.
func (e *Executor) CallsUsed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Stage1Whitelist and Stage3Whitelist are the fixed per-stage tool sets.
var (
	Stage1Whitelist = []string{ToolGetBranchFileContent}
	Stage3Whitelist = []string{ToolGetBranchFileContent, ToolGetPullRequestComments}
)
