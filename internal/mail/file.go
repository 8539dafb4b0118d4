package mail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultOutputDir = "./mail_output"

// File writes each message as an .eml file in an output directory instead
// of delivering it. Intended for development.
type File struct {
	sender
	outputDir string
	now       func() time.Time
}

// NewFile creates a File transport. OutputDir defaults to ./mail_output.
func NewFile(cfg Config) *File {
	dir := cfg.OutputDir
	if dir == "" {
		dir = defaultOutputDir
	}
	return &File{
		sender:    sender{from: cfg.From, fromName: cfg.FromName},
		outputDir: dir,
		now:       time.Now,
	}
}

func (f *File) Name() string { return "file" }

// Send writes msg to <outputDir>/<timestamp>_<id>.eml.
func (f *File) Send(_ context.Context, msg *Message) error {
	if err := os.MkdirAll(f.outputDir, 0o750); err != nil {
		return fmt.Errorf("file: create output dir: %w", err)
	}

	id := msg.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := f.now()
	from, fromName := f.resolve(msg)
	body, err := buildMIME(&Message{
		ID:       id,
		To:       msg.To,
		Subject:  msg.Subject,
		HTMLBody: msg.HTMLBody,
		TextBody: msg.TextBody,
		Headers:  msg.Headers,
	}, from, fromName, now)
	if err != nil {
		return fmt.Errorf("file: build message: %w", err)
	}

	safeID := strings.NewReplacer("/", "_", "@", "_").Replace(id)
	path := filepath.Join(f.outputDir, fmt.Sprintf("%s_%s.eml", now.Format("20060102_150405"), safeID))
	if err := os.WriteFile(path, body, 0o640); err != nil {
		return fmt.Errorf("file: write %s: %w", path, err)
	}
	return nil
}
