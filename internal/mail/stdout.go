package mail

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Stdout writes a summary of each message to a writer instead of delivering
// it. Intended for development.
type Stdout struct {
	sender
	mu     sync.Mutex
	writer io.Writer
}

// NewStdout creates a Stdout transport writing to w.
func NewStdout(cfg Config, w io.Writer) *Stdout {
	return &Stdout{
		sender: sender{from: cfg.From, fromName: cfg.FromName},
		writer: w,
	}
}

func (s *Stdout) Name() string { return "stdout" }

// Send prints the message envelope and body size.
func (s *Stdout) Send(_ context.Context, msg *Message) error {
	from, fromName := s.resolve(msg)

	var b strings.Builder
	b.WriteString("--- stdout transport: message ---\n")
	fmt.Fprintf(&b, "From:    %s\n", formatAddress(fromName, from))
	fmt.Fprintf(&b, "To:      %s\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	fmt.Fprintf(&b, "Body:    (%d bytes html)\n", len(msg.HTMLBody))
	b.WriteString("--- end ---\n")

	// Concurrent broadcasts share the writer.
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.writer, b.String()); err != nil {
		return fmt.Errorf("stdout: write: %w", err)
	}
	return nil
}
