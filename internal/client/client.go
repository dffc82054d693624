// Package client is a small HTTP client for the rpnd API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a running rpnd service.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// APIError is a non-2xx response from the service.
type APIError struct {
	// StatusCode is the HTTP status returned.
	StatusCode int
	// Detail is the service's error message.
	Detail string
}

func (e *APIError) Error() string {
	if e == nil {
		return "api error"
	}
	if e.Detail == "" {
		return fmt.Sprintf("rpnd returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("rpnd returned %d: %s", e.StatusCode, e.Detail)
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var target *APIError
	return errors.As(err, &target) && target.StatusCode == http.StatusNotFound
}

// New parses baseURL and returns a Client with the given per-request timeout.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q must use http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: u, httpClient: &http.Client{Timeout: timeout}}, nil
}

// Create asks the service for a new stack and returns its id.
func (c *Client) Create(ctx context.Context) (string, error) {
	var out struct {
		StackID string `json:"stack_id"`
	}
	if err := c.do(ctx, http.MethodPost, "rpn/stack", nil, &out); err != nil {
		return "", err
	}
	return out.StackID, nil
}

// List returns all stack ids.
func (c *Client) List(ctx context.Context) ([]string, error) {
	var out struct {
		Stacks []string `json:"stacks"`
	}
	if err := c.do(ctx, http.MethodGet, "rpn/stack", nil, &out); err != nil {
		return nil, err
	}
	return out.Stacks, nil
}

// Get returns the stack contents bottom to top.
func (c *Client) Get(ctx context.Context, id string) ([]float64, error) {
	return c.stackCall(ctx, http.MethodGet, stackPath(id), nil)
}

// Push appends value and returns the updated stack.
func (c *Client) Push(ctx context.Context, id string, value float64) ([]float64, error) {
	return c.stackCall(ctx, http.MethodPost, stackPath(id), map[string]float64{"value": value})
}

// Pop removes the top value and returns it with the remaining stack.
func (c *Client) Pop(ctx context.Context, id string) (float64, []float64, error) {
	var out struct {
		Value float64   `json:"value"`
		Stack []float64 `json:"stack"`
	}
	if err := c.do(ctx, http.MethodPost, stackPath(id)+"/pop", nil, &out); err != nil {
		return 0, nil, err
	}
	return out.Value, out.Stack, nil
}

// Clear empties the stack.
func (c *Client) Clear(ctx context.Context, id string) error {
	_, err := c.stackCall(ctx, http.MethodPost, stackPath(id)+"/clear", nil)
	return err
}

// Delete removes the stack.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, stackPath(id), nil, nil)
}

// operatorPaths maps symbols to the path names the service accepts, since
// "/" cannot travel inside a single path segment.
var operatorPaths = map[string]string{
	"+": "add",
	"-": "sub",
	"*": "mul",
	"/": "div",
}

// Operate applies op to the top two values and returns the updated stack.
// op may be a symbol or a name such as "div".
func (c *Client) Operate(ctx context.Context, id, op string) ([]float64, error) {
	return c.stackCall(ctx, http.MethodPost, operatePath(id, op), nil)
}

func operatePath(id, op string) string {
	segment, ok := operatorPaths[strings.TrimSpace(op)]
	if !ok {
		segment = url.PathEscape(op)
	}
	return "rpn/op/" + segment + "/stack/" + url.PathEscape(id)
}

func stackPath(id string) string {
	return "rpn/stack/" + url.PathEscape(id)
}

func (c *Client) stackCall(ctx context.Context, method, path string, body any) ([]float64, error) {
	var out struct {
		Stack []float64 `json:"stack"`
	}
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	if out.Stack == nil {
		out.Stack = []float64{}
	}
	return out.Stack, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	target := c.baseURL.String() + "/" + path
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(raw, &detail)
		return &APIError{StatusCode: resp.StatusCode, Detail: detail.Detail}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
