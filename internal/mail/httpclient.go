package mail

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

// maxResponseBody caps how much of an API error body is kept.
const maxResponseBody = 64 << 10

// DefaultHTTPClient wraps net/http.Client to implement HTTPClient.
type DefaultHTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a DefaultHTTPClient with the given timeout.
func NewHTTPClient(timeout time.Duration) *DefaultHTTPClient {
	return &DefaultHTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Do executes req and returns the status, headers and (capped) body.
func (c *DefaultHTTPClient) Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       body,
	}, nil
}
