package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	sendgridDefaultEndpoint = "https://api.sendgrid.com"
	sendgridSendPath        = "/v3/mail/send"
)

// SendGrid submits messages through the SendGrid v3 Mail Send API.
type SendGrid struct {
	sender
	apiKey   string
	endpoint string
	client   HTTPClient
}

// NewSendGrid creates a SendGrid transport from the given configuration.
func NewSendGrid(cfg Config, client HTTPClient) *SendGrid {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = sendgridDefaultEndpoint
	}
	return &SendGrid{
		sender:   sender{from: cfg.From, fromName: cfg.FromName},
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		client:   client,
	}
}

func (s *SendGrid) Name() string { return "sendgrid" }

// Send posts msg to the mail/send endpoint. Non-2xx replies are returned as
// a classified *DeliveryError.
func (s *SendGrid) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(s.buildPayload(msg))
	if err != nil {
		return fmt.Errorf("sendgrid: marshal request: %w", err)
	}

	resp, err := s.client.Do(ctx, &HTTPRequest{
		Method: http.MethodPost,
		URL:    s.endpoint + sendgridSendPath,
		Headers: map[string]string{
			"Authorization": "Bearer " + s.apiKey,
			"Content-Type":  "application/json",
		},
		Body: body,
	})
	if err != nil {
		return fmt.Errorf("sendgrid: send request: %w", err)
	}

	if de := ClassifyHTTPError("sendgrid", resp.StatusCode, string(resp.Body)); de != nil {
		return de
	}
	return nil
}

// sendgridPayload matches the SendGrid v3 mail/send JSON schema.
type sendgridPayload struct {
	Personalizations []sendgridPersonalization `json:"personalizations"`
	From             sendgridEmail             `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendgridContent         `json:"content"`
	Headers          map[string]string         `json:"headers,omitempty"`
}

type sendgridPersonalization struct {
	To []sendgridEmail `json:"to"`
}

type sendgridEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendgridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (s *SendGrid) buildPayload(msg *Message) sendgridPayload {
	from, fromName := s.resolve(msg)

	// SendGrid requires text/plain to precede text/html.
	var content []sendgridContent
	if msg.TextBody != "" {
		content = append(content, sendgridContent{Type: "text/plain", Value: msg.TextBody})
	}
	content = append(content, sendgridContent{Type: "text/html", Value: msg.HTMLBody})

	return sendgridPayload{
		Personalizations: []sendgridPersonalization{
			{To: []sendgridEmail{{Email: msg.To}}},
		},
		From:    sendgridEmail{Email: from, Name: fromName},
		Subject: msg.Subject,
		Content: content,
		Headers: msg.Headers,
	}
}
