package mail

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type mockHTTPClient struct {
	resp *HTTPResponse
	err  error
	reqs []*HTTPRequest
}

func (m *mockHTTPClient) Do(_ context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	m.reqs = append(m.reqs, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func TestSendGrid_buildPayload_HTMLOnly(t *testing.T) {
	sg := NewSendGrid(Config{From: "news@example.com", FromName: "News"}, nil)

	payload := sg.buildPayload(&Message{To: "a@example.com", Subject: "Hi", HTMLBody: "<h1>Hi</h1>"})

	if len(payload.Content) != 1 || payload.Content[0].Type != "text/html" {
		t.Fatalf("unexpected content %+v", payload.Content)
	}
	if payload.From.Email != "news@example.com" || payload.From.Name != "News" {
		t.Errorf("unexpected from %+v", payload.From)
	}
	if got := payload.Personalizations[0].To[0].Email; got != "a@example.com" {
		t.Errorf("to = %q", got)
	}
}

func TestSendGrid_buildPayload_TextFirst(t *testing.T) {
	sg := NewSendGrid(Config{From: "news@example.com"}, nil)

	payload := sg.buildPayload(&Message{To: "a@example.com", HTMLBody: "<p>x</p>", TextBody: "x"})

	if len(payload.Content) != 2 {
		t.Fatalf("expected 2 content parts, got %d", len(payload.Content))
	}
	if payload.Content[0].Type != "text/plain" || payload.Content[1].Type != "text/html" {
		t.Errorf("unexpected order %+v", payload.Content)
	}
}

func TestSendGrid_Send_Success(t *testing.T) {
	client := &mockHTTPClient{resp: &HTTPResponse{StatusCode: 202}}
	sg := NewSendGrid(Config{From: "news@example.com", APIKey: "SG.key", Endpoint: "http://sg.test"}, client)

	if err := sg.Send(context.Background(), &Message{To: "a@example.com", Subject: "s", HTMLBody: "b"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(client.reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(client.reqs))
	}
	req := client.reqs[0]
	if req.URL != "http://sg.test/v3/mail/send" {
		t.Errorf("URL = %q", req.URL)
	}
	if req.Headers["Authorization"] != "Bearer SG.key" {
		t.Errorf("Authorization = %q", req.Headers["Authorization"])
	}
	var body map[string]any
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if body["subject"] != "s" {
		t.Errorf("subject = %v", body["subject"])
	}
}

func TestSendGrid_Send_RejectedIsClassified(t *testing.T) {
	client := &mockHTTPClient{resp: &HTTPResponse{StatusCode: 400, Body: []byte(`{"errors":[{"message":"Invalid email"}]}`)}}
	sg := NewSendGrid(Config{From: "news@example.com", APIKey: "k"}, client)

	err := sg.Send(context.Background(), &Message{To: "bad"})
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DeliveryError, got %v", err)
	}
	if !de.Permanent {
		t.Error("expected permanent classification")
	}
}

func TestSendGrid_Send_TransportError(t *testing.T) {
	client := &mockHTTPClient{err: errors.New("connection refused")}
	sg := NewSendGrid(Config{From: "news@example.com", APIKey: "k"}, client)

	if err := sg.Send(context.Background(), &Message{To: "a@example.com"}); err == nil {
		t.Fatal("expected error")
	}
}
