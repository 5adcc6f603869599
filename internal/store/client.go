// Package store persists outline records in a pathstore-style KV service.
//
// Layout:
//
//	documents/{docID}/meta
//	documents/{docID}/paragraphs/{index:05d}
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/dgallion1/pdfoutline/internal/outline"
)

const documentsPrefix = "documents"

// Client communicates with the KV service's HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// Meta describes one stored document.
type Meta struct {
	DocID       string `json:"doc_id"`
	FileName    string `json:"filename"`
	Title       string `json:"title"`
	ContentHash string `json:"content_hash"`
	Pages       int    `json:"pages"`
	Records     int    `json:"records"`
	PageOffset  *int   `json:"page_offset,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// nodeRequest is the body for PUT /kv/{key}.
type nodeRequest struct {
	Value  any    `json:"value"`
	Source string `json:"source,omitempty"`
}

// node is a single entry from GET /kv/{key} or a prefix scan.
type node struct {
	Key   string          `json:"key_path"`
	Value json.RawMessage `json:"value"`
}

// storedRecord keeps the breadcrumb, which the public record JSON omits.
type storedRecord struct {
	outline.Record
	Breadcrumb []string `json:"breadcrumb"`
}

func MetaKey(docID string) string {
	return fmt.Sprintf("%s/%s/meta", documentsPrefix, docID)
}

func RecordKey(docID string, index int) string {
	return fmt.Sprintf("%s/%s/paragraphs/%05d", documentsPrefix, docID, index)
}

// PutRecord stores the index-th record of a document.
func (c *Client) PutRecord(ctx context.Context, docID string, index int, rec outline.Record) error {
	return c.putNode(ctx, RecordKey(docID, index), nodeRequest{
		Value:  storedRecord{Record: rec, Breadcrumb: rec.Breadcrumb},
		Source: "pdfoutline:" + docID,
	})
}

// PutMeta stores document metadata.
func (c *Client) PutMeta(ctx context.Context, docID string, meta Meta) error {
	meta.DocID = docID
	return c.putNode(ctx, MetaKey(docID), nodeRequest{
		Value:  meta,
		Source: "pdfoutline:" + docID,
	})
}

// GetMeta returns a document's metadata, or nil if it does not exist.
func (c *Client) GetMeta(ctx context.Context, docID string) (*Meta, error) {
	resp, err := c.do(ctx, http.MethodGet, "/kv/"+MetaKey(docID), nil)
	if err != nil {
		return nil, fmt.Errorf("get meta: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err := checkStatus(resp, "get meta "+docID, http.StatusOK); err != nil {
		return nil, err
	}

	var n node
	if err := json.NewDecoder(resp.Body).Decode(&n); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(n.Value, &meta); err != nil {
		return nil, fmt.Errorf("decode meta value: %w", err)
	}
	return &meta, nil
}

// ListDocuments returns the metadata of every stored document.
func (c *Client) ListDocuments(ctx context.Context) ([]Meta, error) {
	nodes, err := c.listChildren(ctx, documentsPrefix, 0)
	if err != nil {
		return nil, err
	}
	docs := []Meta{}
	for _, n := range nodes {
		if lastSegment(n.Key) != "meta" {
			continue
		}
		var meta Meta
		if err := json.Unmarshal(n.Value, &meta); err != nil {
			return nil, fmt.Errorf("decode meta %s: %w", n.Key, err)
		}
		docs = append(docs, meta)
	}
	slices.SortFunc(docs, func(a, b Meta) int { return strings.Compare(a.CreatedAt, b.CreatedAt) })
	return docs, nil
}

// ListRecords returns a document's records in emission order.
func (c *Client) ListRecords(ctx context.Context, docID string) ([]outline.Record, error) {
	nodes, err := c.listChildren(ctx, fmt.Sprintf("%s/%s/paragraphs", documentsPrefix, docID), 0)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(nodes, func(a, b node) int { return strings.Compare(lastSegment(a.Key), lastSegment(b.Key)) })

	records := make([]outline.Record, 0, len(nodes))
	for _, n := range nodes {
		var sr storedRecord
		if err := json.Unmarshal(n.Value, &sr); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", n.Key, err)
		}
		rec := sr.Record
		rec.Breadcrumb = sr.Breadcrumb
		records = append(records, rec)
	}
	return records, nil
}

// DeleteDocument removes a document's metadata and records.
func (c *Client) DeleteDocument(ctx context.Context, docID string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/kv/"+documentsPrefix+"/"+docID+"?children=true", nil)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp, "delete document "+docID, http.StatusOK, http.StatusNoContent)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) putNode(ctx context.Context, key string, req nodeRequest) error {
	resp, err := c.do(ctx, http.MethodPut, "/kv/"+key, req)
	if err != nil {
		return fmt.Errorf("put node: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp, "put node "+key, http.StatusOK, http.StatusCreated)
}

func (c *Client) listChildren(ctx context.Context, key string, limit int) ([]node, error) {
	path := "/kv/" + key + "/*"
	if limit > 0 {
		path += "?limit=" + url.QueryEscape(fmt.Sprintf("%d", limit))
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "list children "+key, http.StatusOK); err != nil {
		return nil, err
	}

	var result struct {
		Nodes []node `json:"nodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode children: %w", err)
	}
	return result.Nodes, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return c.httpClient.Do(req)
}

// checkStatus turns an unexpected status into an error. 5xx and 429 are
// returned as *RetryableError.
func checkStatus(resp *http.Response, op string, ok ...int) error {
	if slices.Contains(ok, resp.StatusCode) {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return &RetryableError{StatusCode: resp.StatusCode, Message: op + ": " + string(respBody)}
	}
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, string(respBody))
}

// lastSegment returns the final component of a key path. The service may
// echo keys with either '/' or '.' separators.
func lastSegment(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '/' || r == '.' })
	if len(parts) == 0 {
		return key
	}
	return parts[len(parts)-1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
