package mail

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// New creates the transport selected by cfg.Provider.
func New(cfg Config, logger zerolog.Logger) (Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mail config: %w", err)
	}

	var (
		t   Transport
		err error
	)
	switch cfg.Provider {
	case "ses":
		t, err = NewSESFromConfig(cfg)
	case "smtp":
		t = NewSMTP(cfg)
	case "sendgrid":
		t = NewSendGrid(cfg, NewHTTPClient(cfg.Timeout))
	case "stdout":
		t = NewStdout(cfg, os.Stdout)
	case "file":
		t = NewFile(cfg)
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("provider", t.Name()).
		Str("from", cfg.From).
		Msg("mail transport initialized")
	return t, nil
}
