// Package mail submits rendered newsletters to an outbound mail service.
package mail

import (
	"context"
)

// Transport submits one message and reports whether the service accepted it.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
	// Name returns the transport identifier (e.g. "ses", "smtp").
	Name() string
}

// Message is a single-recipient HTML email. From and FromName default to
// the transport's configured sender when empty.
type Message struct {
	ID       string
	From     string
	FromName string
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	Headers  map[string]string
}

// HTTPClient abstracts HTTP operations for testability.
type HTTPClient interface {
	Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error)
}

// HTTPRequest represents an outgoing HTTP request.
type HTTPRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// HTTPResponse represents an HTTP response from a mail API.
type HTTPResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

type sender struct {
	from     string
	fromName string
}

// resolve fills the sender fields of msg from the transport defaults.
func (s sender) resolve(msg *Message) (from, fromName string) {
	from, fromName = msg.From, msg.FromName
	if from == "" {
		from = s.from
	}
	if fromName == "" && msg.From == "" {
		fromName = s.fromName
	}
	return from, fromName
}
