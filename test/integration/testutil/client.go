package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// Client wraps http.Client with test-friendly methods
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	token      string
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithToken returns a copy of the client that sends the bearer token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

type Response struct {
	*http.Response
	Body []byte
}

// Envelope is the JSON shape every API response shares.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
}

func (r *Response) UnmarshalJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

// DecodeData unmarshals the envelope's data field into target.
func (r *Response) DecodeData(t *testing.T, target any) {
	t.Helper()
	var env Envelope
	if err := r.UnmarshalJSON(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v. Body: %s", err, string(r.Body))
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		t.Fatalf("failed to decode data: %v. Body: %s", err, string(r.Body))
	}
}

func (c *Client) GET(t *testing.T, path string) *Response {
	t.Helper()
	return c.request(t, http.MethodGet, path, nil, nil)
}

func (c *Client) POST(t *testing.T, path string, body any) *Response {
	t.Helper()
	return c.request(t, http.MethodPost, path, body, nil)
}

func (c *Client) PUT(t *testing.T, path string, body any) *Response {
	t.Helper()
	return c.request(t, http.MethodPut, path, body, nil)
}

func (c *Client) DELETE(t *testing.T, path string) *Response {
	t.Helper()
	return c.request(t, http.MethodDelete, path, nil, nil)
}

// POSTRaw sends body untouched, for endpoints that verify the exact bytes.
func (c *Client) POSTRaw(t *testing.T, path string, body []byte, headers map[string]string) *Response {
	t.Helper()
	return c.do(t, http.MethodPost, path, bytes.NewReader(body), headers)
}

func (c *Client) request(t *testing.T, method, path string, body any, headers map[string]string) *Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(jsonData)
		if headers == nil {
			headers = map[string]string{}
		}
		headers["Content-Type"] = "application/json"
	}
	return c.do(t, method, path, reqBody, headers)
}

func (c *Client) do(t *testing.T, method, path string, body io.Reader, headers map[string]string) *Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, c.BaseURL+path, body)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}

	return &Response{
		Response: resp,
		Body:     respBody,
	}
}

// WaitForReady polls /ready until the API reports its database reachable.
func (c *Client) WaitForReady(t *testing.T, maxWait time.Duration) {
	t.Helper()

	deadline := time.Now().Add(maxWait)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		resp, err := c.HTTPClient.Get(c.BaseURL + "/ready")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		if resp != nil {
			resp.Body.Close()
		}
		<-ticker.C
	}

	t.Fatalf("service did not become ready within %v", maxWait)
}

func AssertStatusCode(t *testing.T, resp *Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d. Body: %s", expected, resp.StatusCode, string(resp.Body))
	}
}

func AssertContains(t *testing.T, resp *Response, substr string) {
	t.Helper()
	if !strings.Contains(string(resp.Body), substr) {
		t.Fatalf("response body does not contain %q. Body: %s", substr, string(resp.Body))
	}
}

// AssertErrorCode checks the envelope's machine-readable error code.
func AssertErrorCode(t *testing.T, resp *Response, code string) {
	t.Helper()
	var env Envelope
	if err := resp.UnmarshalJSON(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v. Body: %s", err, string(resp.Body))
	}
	if env.Success || env.Code != code {
		t.Fatalf("expected error code %q, got success=%v code=%q", code, env.Success, env.Code)
	}
}
