// Package docstore consumes the external document store, which holds the
// markdown documents and their metadata addressed by permalink. The retrieval
// pipeline only lists documents, reads content, and searches by text; the
// store itself is a separate system.
package docstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_client.go -package=mocks recall-ai/internal/docstore Client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Document identifies one document in the store.
type Document struct {
	ID string `json:"id"`
}

// TextMatch is one keyword search hit.
type TextMatch struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Client defines the document store operations the pipeline consumes.
type Client interface {
	// ListDocuments returns the ids of all documents in a project.
	ListDocuments(ctx context.Context, project string) ([]Document, error)
	// ReadDocument returns the current markdown content of a document.
	ReadDocument(ctx context.Context, id string) (string, error)
	// SearchByText runs the store's own keyword search.
	SearchByText(ctx context.Context, query, project string, limit int) ([]TextMatch, error)
}

// HTTPClient talks to the document store over its JSON HTTP surface.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a document store client for the service at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
	}
}

// listResponse is the /documents response payload.
type listResponse struct {
	Documents []Document `json:"documents"`
}

// readResponse is the /documents/{id} response payload.
type readResponse struct {
	Content string `json:"content"`
}

// searchRequest is the /search request payload.
type searchRequest struct {
	Query   string `json:"query"`
	Project string `json:"project,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// searchResponse is the /search response payload.
type searchResponse struct {
	Matches []TextMatch `json:"matches"`
}

// ListDocuments returns the ids of all documents in a project.
func (c *HTTPClient) ListDocuments(ctx context.Context, project string) ([]Document, error) {
	url := fmt.Sprintf("%s/documents", c.baseURL)
	if project != "" {
		url += "?project=" + project
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var out listResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return out.Documents, nil
}

// ReadDocument returns the current markdown content of a document.
func (c *HTTPClient) ReadDocument(ctx context.Context, id string) (string, error) {
	url := fmt.Sprintf("%s/documents/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	var out readResponse
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("failed to read document %s: %w", id, err)
	}
	return out.Content, nil
}

// SearchByText runs the store's own keyword search.
func (c *HTTPClient) SearchByText(ctx context.Context, query, project string, limit int) ([]TextMatch, error) {
	body, err := json.Marshal(searchRequest{Query: query, Project: project, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/search", c.baseURL), bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out searchResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("failed to search by text: %w", err)
	}
	return out.Matches, nil
}

// do executes a request and decodes a JSON response into out.
func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
