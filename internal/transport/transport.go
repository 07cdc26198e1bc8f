// Package transport provides the outbound request layer for sync.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Response is the outcome of a delivered request. A response exists
// whenever the backend answered at all, even with an error status.
type Response struct {
	Status int
	Body   json.RawMessage
}

// OK reports whether the backend accepted the request.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Transport delivers one request to the backend. An error return means
// the request never produced a response (network-level failure); a
// non-OK Response means the backend rejected it.
type Transport interface {
	Send(ctx context.Context, method, path string, body []byte) (*Response, error)
}

// HTTPClient is the net/http implementation of Transport against a
// fixed base URL. It enforces no timeout of its own; that is inherited
// from the injected http.Client.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates an HTTPClient. A nil client uses
// http.DefaultClient.
func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  client,
	}
}

// Send delivers one JSON request and reads the full response body.
func (c *HTTPClient) Send(ctx context.Context, method, path string, body []byte) (*Response, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response for %s %s: %w", method, path, err)
	}

	return &Response{
		Status: resp.StatusCode,
		Body:   json.RawMessage(payload),
	}, nil
}
