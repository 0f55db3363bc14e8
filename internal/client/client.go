// Package client talks to the product import REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/zander/internal/core"
)

// DefaultTimeout bounds a single round trip when no option overrides it.
const DefaultTimeout = 2 * time.Minute

// Credentials authenticate every request. They are passed explicitly
// rather than read from the environment by the client.
type Credentials struct {
	Token string
}

// ValidateResponse is the body of POST /products/import/validate.
type ValidateResponse struct {
	Data    []core.ValidationResult `json:"data"`
	Summary core.ValidationSummary  `json:"summary"`
}

type importResponse struct {
	Data *core.ImportResult `json:"data"`
}

type historyResponse struct {
	Data []core.AuditEntry `json:"data"`
}

// APIError is a non-2xx response. Error returns the server's message verbatim.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	creds   Credentials
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The client is not
// modified; combined with WithTimeout a copy carries the timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
	}
	for _, opt := range opts {
		opt(c)
	}

	switch {
	case c.http == nil:
		timeout := c.timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	case c.timeout > 0:
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// Validate asks the server to check rows without writing them. lines holds
// the file line of each row and may be nil, in which case the server numbers
// rows by position starting at 2.
func (c *Client) Validate(ctx context.Context, rows []core.ImportRow, lines []int) (*ValidateResponse, error) {
	var out ValidateResponse
	body := rowsBody(rows, lines)
	if err := c.do(ctx, http.MethodPost, "/products/import/validate", body, &out); err != nil {
		return nil, annotate("validate", err)
	}
	return &out, nil
}

// Import commits rows with the given duplicate policy. lines is as for Validate.
func (c *Client) Import(ctx context.Context, rows []core.ImportRow, lines []int, action core.DuplicateAction) (*core.ImportResult, error) {
	var out importResponse
	body := rowsBody(rows, lines)
	body["duplicateAction"] = action
	if err := c.do(ctx, http.MethodPost, "/products/import", body, &out); err != nil {
		return nil, annotate("import", err)
	}
	if out.Data == nil {
		return nil, fmt.Errorf("import: empty response")
	}
	return out.Data, nil
}

func rowsBody(rows []core.ImportRow, lines []int) map[string]any {
	body := map[string]any{"rows": rows}
	if lines != nil {
		body["lines"] = lines
	}
	return body
}

// Template downloads the CSV import template.
func (c *Client) Template(ctx context.Context) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, "/products/import/template", nil)
	if err != nil {
		return nil, annotate("template", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("template: read body: %w", err)
	}
	return b, nil
}

// History returns the tenant's most recent import audit entries.
func (c *Client) History(ctx context.Context, limit int) ([]core.AuditEntry, error) {
	var out historyResponse
	path := fmt.Sprintf("/products/import/history?limit=%d", limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, annotate("history", err)
	}
	return out.Data, nil
}

// annotate prefixes transport and decoding failures with op. Server errors
// are returned as the bare *APIError so callers show the server's message.
func annotate(op string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return fmt.Errorf("%s: %w", op, err)
}

// do sends body as JSON and decodes a 2xx response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	resp, err := c.send(ctx, method, path, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send performs the request and turns non-2xx responses into *APIError.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.creds.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.creds.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return nil, apiErr
	}
	return resp, nil
}
