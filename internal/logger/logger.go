package logger

import (
	"context"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config mirrors config.LoggingConfig so this package stays import-free of
// the config layer.
type Config struct {
	Level     string
	Output    string // stdout (default) or file
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
}

type contextKey string

const (
	loggerKey        contextKey = "logger"
	correlationIDKey contextKey = "correlation_id"
	boundKey         contextKey = "bound"
)

// New creates a JSON zerolog.Logger writing to stdout. An unparseable level
// falls back to info.
func New(level string) zerolog.Logger {
	return build(os.Stdout, level)
}

// NewFromConfig creates a logger whose destination is chosen by cfg.Output:
// "file" writes to a rotating file, anything else to stdout.
func NewFromConfig(cfg Config) zerolog.Logger {
	var w io.Writer = os.Stdout
	if cfg.Output == "file" && cfg.FilePath != "" {
		w = NewFileWriter(FileConfig{
			Path:      cfg.FilePath,
			MaxSizeMB: cfg.MaxSizeMB,
			MaxFiles:  cfg.MaxFiles,
		})
	}
	return build(w, cfg.Level)
}

func build(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "newsletter").
		Logger()
}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithBoundLogger stores a logger that already carries the request's
// correlation ID, so FromContext does not attach it a second time.
func WithBoundLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(WithLogger(ctx, logger), boundKey, true)
}

// WithCorrelationID stores a correlation ID in the context.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// CorrelationIDFromContext returns the correlation ID, or "" when unset.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext returns the context logger (or a default info logger) with the
// correlation ID attached when one is present.
func FromContext(ctx context.Context) zerolog.Logger {
	log, ok := ctx.Value(loggerKey).(zerolog.Logger)
	if !ok {
		log = New("info")
	}
	return withCorrelation(ctx, log)
}

// FromContextOr is FromContext with an explicit fallback for contexts that
// carry no logger.
func FromContextOr(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	log, ok := ctx.Value(loggerKey).(zerolog.Logger)
	if !ok {
		log = fallback
	}
	return withCorrelation(ctx, log)
}

func withCorrelation(ctx context.Context, log zerolog.Logger) zerolog.Logger {
	if bound, _ := ctx.Value(boundKey).(bool); bound {
		return log
	}
	if id := CorrelationIDFromContext(ctx); id != "" {
		log = log.With().Str("correlation_id", id).Logger()
	}
	return log
}

// NewCorrelationID generates a new UUID-based correlation ID.
func NewCorrelationID() string {
	return uuid.New().String()
}
