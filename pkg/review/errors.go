package review

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned by the coordinator when the caller's context was
// cancelled before a final result could be produced. No response payload
// accompanies it.
var ErrCancelled = errors.New("review cancelled")

// ParseFailure reports that an LLM response could not be parsed against a
// schema after the Structured-Output Driver's repair budget was exhausted.
// Stage-fatal.
type ParseFailure struct {
	Schema    string
	LastError error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("structured output parse failed for schema %q: %v", e.Schema, e.LastError)
}

func (e *ParseFailure) Unwrap() error { return e.LastError }

// StageFailure reports that a pipeline stage could not produce its output.
// Request-fatal: the coordinator emits an error event and aborts remaining
// stages.
type StageFailure struct {
	Stage string
	Cause error
}

func (e *StageFailure) Error() string {
	return fmt.Sprintf("stage %q failed: %v", e.Stage, e.Cause)
}

func (e *StageFailure) Unwrap() error { return e.Cause }

// BatchFailure reports that a single Stage-1 batch failed. Isolated: the
// batch contributes zero issues and the wave continues.
type BatchFailure struct {
	BatchIndex int
	Cause      error
}

func (e *BatchFailure) Error() string {
	return fmt.Sprintf("batch %d failed: %v", e.BatchIndex, e.Cause)
}

func (e *BatchFailure) Unwrap() error { return e.Cause }

// RetrievalFailure reports that a retrieval-service call failed or timed
// out. Non-fatal: the calling stage proceeds with empty context.
type RetrievalFailure struct {
	Operation string
	Cause     error
}

func (e *RetrievalFailure) Error() string {
	return fmt.Sprintf("retrieval %q failed: %v", e.Operation, e.Cause)
}

func (e *RetrievalFailure) Unwrap() error { return e.Cause }

// ToolFailure reports that a tool call failed. Non-fatal: surfaced to the
// LLM as textual content, never returned to the caller as an error.
type ToolFailure struct {
	Tool  string
	Cause error
}

func (e *ToolFailure) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Cause)
}

func (e *ToolFailure) Unwrap() error { return e.Cause }

// VerificationFailure reports that Stage-1.5 failed. Non-fatal: the verifier
// falls back to the input issue set unchanged.
type VerificationFailure struct {
	Cause error
}

func (e *VerificationFailure) Error() string {
	return fmt.Sprintf("verification failed: %v", e.Cause)
}

func (e *VerificationFailure) Unwrap() error { return e.Cause }
