// Package backboard provides a memory backend adapter using the Backboard
// REST API.
package backboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harborist/contextd/internal/core/domain"
	"github.com/harborist/contextd/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.MemoryBackend = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://app.backboard.io/api"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the Backboard client.
type Config struct {
	// APIKey is the Backboard API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://app.backboard.io/api).
	BaseURL string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Client provides memory backend operations over the Backboard REST API.
// One Client carries one tenant's credential.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// Factory creates per-credential Backboard clients. Credentials are per
// tenant, so clients are built at the call site from the decrypted key.
type Factory struct {
	baseURL string
	timeout time.Duration
}

var _ driven.BackendFactory = (*Factory)(nil)

// NewFactory creates a client factory for the given base URL. An empty
// baseURL selects the hosted service.
func NewFactory(baseURL string, timeout time.Duration) *Factory {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Factory{baseURL: baseURL, timeout: timeout}
}

// Client returns a memory backend session authenticated with apiKey.
func (f *Factory) Client(apiKey string) driven.MemoryBackend {
	return New(Config{APIKey: apiKey, BaseURL: f.baseURL, Timeout: f.timeout})
}

// New creates a Backboard client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// assistantRequest is the POST /assistants request format.
type assistantRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// assistantResponse is the POST /assistants response format.
type assistantResponse struct {
	AssistantID string `json:"assistant_id"`
}

// documentResponse is the document upload/status response format.
type documentResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
}

// threadResponse is the POST /assistants/{id}/threads response format.
type threadResponse struct {
	ThreadID string `json:"thread_id"`
}

// messageRequest is the POST /threads/{id}/messages request format.
type messageRequest struct {
	Content string `json:"content"`
	Memory  string `json:"memory"`
}

// messageResponse is the POST /threads/{id}/messages response format.
type messageResponse struct {
	Content           string `json:"content"`
	RetrievedMemories []struct {
		Content string `json:"content"`
	} `json:"retrieved_memories"`
}

// errorResponse is Backboard's error envelope.
type errorResponse struct {
	Detail string `json:"detail"`
}

// CreateAssistant provisions a new assistant and returns its id.
func (c *Client) CreateAssistant(ctx context.Context, name, description string) (string, error) {
	var resp assistantResponse
	err := c.do(ctx, http.MethodPost, "/assistants",
		assistantRequest{Name: name, Description: description}, &resp)
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}
	if resp.AssistantID == "" {
		return "", fmt.Errorf("create assistant: no assistant_id returned")
	}
	return resp.AssistantID, nil
}

// UploadDocument uploads a text artifact to an assistant and returns the
// artifact id. Indexing continues asynchronously on the backend; poll
// IndexStatus for completion.
func (c *Client) UploadDocument(ctx context.Context, assistantID, title, body string) (string, error) {
	payload := map[string]string{
		"filename": title,
		"content":  body,
	}

	var resp documentResponse
	err := c.do(ctx, http.MethodPost, "/assistants/"+assistantID+"/documents", payload, &resp)
	if err != nil {
		return "", fmt.Errorf("upload document: %w", err)
	}
	if resp.DocumentID == "" {
		return "", fmt.Errorf("upload document: no document_id returned")
	}
	return resp.DocumentID, nil
}

// IndexStatus reports the indexing state of an uploaded artifact.
func (c *Client) IndexStatus(ctx context.Context, artifactID string) (*domain.IndexStatus, error) {
	var resp documentResponse
	if err := c.do(ctx, http.MethodGet, "/documents/"+artifactID, nil, &resp); err != nil {
		return nil, fmt.Errorf("document status: %w", err)
	}

	status := &domain.IndexStatus{Message: resp.Detail}
	switch resp.Status {
	case "indexed", "completed", "ready":
		status.State = domain.IndexIndexed
	case "failed", "error":
		status.State = domain.IndexFailed
	default:
		status.State = domain.IndexPending
	}
	return status, nil
}

// Ask threads a question to an assistant: create a thread, send the message
// with memory retrieval enabled, and return the answer with its sources.
func (c *Client) Ask(ctx context.Context, assistantID, content string) (*domain.Answer, error) {
	var thread threadResponse
	if err := c.do(ctx, http.MethodPost, "/assistants/"+assistantID+"/threads",
		map[string]string{}, &thread); err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	if thread.ThreadID == "" {
		return nil, fmt.Errorf("create thread: no thread_id returned")
	}

	var msg messageResponse
	if err := c.do(ctx, http.MethodPost, "/threads/"+thread.ThreadID+"/messages",
		messageRequest{Content: content, Memory: "auto"}, &msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	answer := &domain.Answer{Text: msg.Content}
	for _, mem := range msg.RetrievedMemories {
		answer.Sources = append(answer.Sources, mem.Content)
	}
	return answer, nil
}

// do sends one authenticated JSON request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope errorResponse
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Detail != "" {
			return fmt.Errorf("backboard error (status %d): %s", resp.StatusCode, envelope.Detail)
		}
		return fmt.Errorf("backboard error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
