package mail

import (
	"errors"
	"time"
)

// Config holds configuration for a mail transport.
type Config struct {
	// Provider identifies the transport: "ses", "smtp", "sendgrid", "stdout", "file".
	Provider string

	From     string
	FromName string

	// Timeout bounds a single submission.
	Timeout time.Duration

	// SES. Static credentials are optional; the default AWS chain is used
	// when both are empty.
	Region          string
	AccessKeyID     string
	SecretAccessKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	// SMTPSecurity is "starttls", "tls" or "none". Empty selects "tls" on
	// port 465 and "starttls" otherwise.
	SMTPSecurity string

	// APIKey authenticates SendGrid.
	APIKey string

	// Endpoint overrides the default API URL (useful for testing).
	Endpoint string

	// OutputDir is where the file transport writes messages.
	OutputDir string
}

const defaultTimeout = 30 * time.Second

// Validate checks that required fields are set based on provider type.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return errors.New("mail provider is required")
	}

	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}

	switch c.Provider {
	case "ses":
		if c.From == "" {
			return errors.New("ses: from is required")
		}
		if c.Region == "" {
			return errors.New("ses: region is required")
		}
		if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
			return errors.New("ses: access_key_id and secret_access_key must be set together")
		}
	case "smtp":
		if c.From == "" {
			return errors.New("smtp: from is required")
		}
		if c.SMTPHost == "" {
			return errors.New("smtp: smtp_host is required")
		}
		if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
			return errors.New("smtp: smtp_port must be between 1 and 65535")
		}
		switch c.SMTPSecurity {
		case "", SecurityStartTLS, SecurityTLS, SecurityNone:
		default:
			return errors.New("smtp: smtp_security must be starttls, tls or none")
		}
	case "sendgrid":
		if c.From == "" {
			return errors.New("sendgrid: from is required")
		}
		if c.APIKey == "" {
			return errors.New("sendgrid: api_key is required")
		}
	case "stdout":
		// No configuration required.
	case "file":
		// OutputDir is optional (defaults to ./mail_output).
	default:
		return errors.New("unknown mail provider: " + c.Provider)
	}

	return nil
}
