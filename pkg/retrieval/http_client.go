package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/rostilos/codecrow/pkg/config"
)

// HTTPClient is the default Client implementation: a thin JSON/HTTP caller
// against the retrieval service's query/index/delete endpoints. A failed or
// timed-out call never surfaces as a pipeline-fatal error to the caller —
// stages wrap it in review.RetrievalFailure and proceed with empty context.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewHTTPClient builds an HTTPClient from resolved retrieval configuration.
func NewHTTPClient(cfg *config.RetrievalConfig) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		logger:     slog.Default().With("component", "retrieval"),
	}
}

func (c *HTTPClient) PRContext(ctx context.Context, q PRContextQuery) (*PRContext, error) {
	var out struct {
		Context struct {
			RelevantCode []RelevantChunk `json:"relevant_code"`
		} `json:"context"`
	}
	if err := c.post(ctx, "/query/pr-context", q, &out); err != nil {
		return nil, err
	}
	return &PRContext{RelevantCode: out.Context.RelevantCode}, nil
}

func (c *HTTPClient) DeterministicContext(ctx context.Context, q DeterministicQuery) (*PRContext, error) {
	var out struct {
		Context struct {
			RelevantCode []RelevantChunk `json:"relevant_code"`
		} `json:"context"`
	}
	if err := c.post(ctx, "/query/deterministic", q, &out); err != nil {
		return nil, err
	}
	return &PRContext{RelevantCode: out.Context.RelevantCode}, nil
}

func (c *HTTPClient) IndexPRFiles(ctx context.Context, req IndexPRFilesRequest) (*IndexResult, error) {
	var out struct {
		Status        string `json:"status"`
		ChunksIndexed int    `json:"chunks_indexed"`
	}
	if err := c.post(ctx, "/index/pr-files", req, &out); err != nil {
		return nil, err
	}
	return &IndexResult{Indexed: out.Status == "indexed", ChunksIndexed: out.ChunksIndexed}, nil
}

func (c *HTTPClient) DeletePRFiles(ctx context.Context, workspace, project string, prNumber int) error {
	payload := struct {
		Workspace string `json:"workspace"`
		Project   string `json:"project"`
		PRNumber  int    `json:"pr_number"`
	}{workspace, project, prNumber}
	return c.post(ctx, "/index/pr-files/delete", payload, nil)
}

func (c *HTTPClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call retrieval service %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("retrieval service returned HTTP %d for %s", resp.StatusCode, path)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}
