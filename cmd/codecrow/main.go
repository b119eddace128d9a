// codecrow runs a single code review request end to end: read the request
// from stdin (or -request-file), drive it through the orchestrator, and
// write the event stream plus the final result to stdout as NDJSON. There
// is no HTTP server here — one process handles exactly one request, the
// way a CI job would invoke it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/rostilos/codecrow/pkg/config"
	"github.com/rostilos/codecrow/pkg/events"
	"github.com/rostilos/codecrow/pkg/llmhttp"
	"github.com/rostilos/codecrow/pkg/masking"
	"github.com/rostilos/codecrow/pkg/orchestrator"
	"github.com/rostilos/codecrow/pkg/retrieval"
	"github.com/rostilos/codecrow/pkg/review"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./config"), "path to configuration directory")
	requestFile := flag.String("request-file", "", "path to a JSON request file (defaults to stdin)")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v", envPath, err)
	} else {
		log.Printf("loaded environment from %s", envPath)
	}

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("failed to initialize configuration: %v", err)
	}
	stats := cfg.Stats()
	log.Printf("configuration initialized: %d llm providers", stats.LLMProviders)

	input, err := readRequestInput(*requestFile)
	if err != nil {
		log.Fatalf("failed to read request: %v", err)
	}

	provider, err := cfg.LLMProviderRegistry.Get(input.LLMProvider)
	if err != nil {
		log.Fatalf("unknown llm provider %q: %v", input.LLMProvider, err)
	}

	endpoint := getEnv("LLM_ENDPOINT", "")
	if endpoint == "" {
		log.Fatalf("LLM_ENDPOINT must be set to the provider's completions endpoint")
	}
	llmClient := llmhttp.New(endpoint)

	var retriever retrieval.Client
	if cfg.Retrieval.BaseURL != "" {
		retriever = retrieval.NewHTTPClient(cfg.Retrieval)
	}

	masker := masking.NewService()
	coordinator := orchestrator.New(llmClient, retriever, nil, cfg, masker, nil)

	req := input.toRequest(provider.Model)

	emitter := events.New(nil)
	done := make(chan struct{})
	go streamEvents(emitter, done)

	result, err := coordinator.Orchestrate(ctx, emitter, req)
	<-done
	if err != nil {
		log.Fatalf("review failed: %v", err)
	}

	if encErr := json.NewEncoder(os.Stdout).Encode(result); encErr != nil {
		log.Fatalf("failed to encode result: %v", encErr)
	}
}

// streamEvents writes every event on the emitter's channel to stderr as
// NDJSON as it arrives, so a caller piping stdout to a file still sees
// live progress. It returns once the channel closes.
func streamEvents(emitter *events.Emitter, done chan<- struct{}) {
	defer close(done)
	enc := json.NewEncoder(os.Stderr)
	for ev := range emitter.Events() {
		if err := enc.Encode(ev); err != nil {
			log.Printf("failed to encode event: %v", err)
		}
	}
}

// requestInput is the JSON wire shape accepted on stdin, kept separate from
// review.Request the way the teacher's SubmitAlertRequest is kept separate
// from its internal domain types.
type requestInput struct {
	Workspace      string                `json:"workspace"`
	Project        string                `json:"project"`
	Namespace      string                `json:"namespace,omitempty"`
	PRID           string                `json:"pr_id,omitempty"`
	PRNumber       int                   `json:"pr_number,omitempty"`
	PRTitle        string                `json:"pr_title,omitempty"`
	PRDescription  string                `json:"pr_description,omitempty"`
	TargetBranch   string                `json:"target_branch,omitempty"`
	SourceCommit   string                `json:"source_commit,omitempty"`
	CurrentCommit  string                `json:"current_commit,omitempty"`
	PreviousCommit string                `json:"previous_commit,omitempty"`
	LLMProvider    string                `json:"llm_provider"`
	TokenCap       int                   `json:"token_cap,omitempty"`
	RawDiff        string                `json:"raw_diff"`
	DeltaDiff      string                `json:"delta_diff,omitempty"`
	Mode           review.AnalysisMode   `json:"mode,omitempty"`
	PreviousIssues []review.PreviousIssue `json:"previous_issues,omitempty"`
	Enrichment     *review.Enrichment    `json:"enrichment,omitempty"`
	ToolsEnabled   bool                  `json:"tools_enabled,omitempty"`
}

func (in requestInput) toRequest(resolvedModel string) *review.Request {
	mode := in.Mode
	if mode == "" {
		mode = review.ModeFull
	}
	return &review.Request{
		ID:             uuid.NewString(),
		Workspace:      in.Workspace,
		Project:        in.Project,
		Namespace:      in.Namespace,
		PRID:           in.PRID,
		PRNumber:       in.PRNumber,
		PRTitle:        in.PRTitle,
		PRDescription:  in.PRDescription,
		TargetBranch:   in.TargetBranch,
		SourceCommit:   in.SourceCommit,
		CurrentCommit:  in.CurrentCommit,
		PreviousCommit: in.PreviousCommit,
		LLMProvider:    in.LLMProvider,
		Model:          resolvedModel,
		TokenCap:       in.TokenCap,
		RawDiff:        in.RawDiff,
		DeltaDiff:      in.DeltaDiff,
		Mode:           mode,
		PreviousIssues: in.PreviousIssues,
		Enrichment:     in.Enrichment,
		ToolsEnabled:   in.ToolsEnabled,
		CreatedAt:      time.Now(),
	}
}

func readRequestInput(path string) (*requestInput, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open request file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var in requestInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if in.RawDiff == "" {
		return nil, fmt.Errorf("request missing raw_diff")
	}
	if in.LLMProvider == "" {
		return nil, fmt.Errorf("request missing llm_provider")
	}
	return &in, nil
}
