package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
	"github.com/google/uuid"
)

// Connection security modes for the SMTP transport.
const (
	SecurityStartTLS = "starttls"
	SecurityTLS      = "tls"
	SecurityNone     = "none"
)

// implicitTLSPort is the SMTPS submission port. An unset security mode
// means implicit TLS on this port and STARTTLS everywhere else.
const implicitTLSPort = 465

func smtpSecurity(cfg Config) string {
	if cfg.SMTPSecurity != "" {
		return cfg.SMTPSecurity
	}
	if cfg.SMTPPort == implicitTLSPort {
		return SecurityTLS
	}
	return SecurityStartTLS
}

// SMTP submits messages to a relay over one connection per message.
type SMTP struct {
	sender
	addr      string
	host      string
	username  string
	password  string
	timeout   time.Duration
	security  string
	tlsConfig *tls.Config
	dial      func(ctx context.Context, network, addr string) (net.Conn, error)
	now       func() time.Time
}

// NewSMTP creates an SMTP transport from the given configuration.
func NewSMTP(cfg Config) *SMTP {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	d := &net.Dialer{Timeout: timeout}
	return &SMTP{
		sender:    sender{from: cfg.From, fromName: cfg.FromName},
		addr:      net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		host:      cfg.SMTPHost,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		timeout:   timeout,
		security:  smtpSecurity(cfg),
		tlsConfig: &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12},
		dial:      d.DialContext,
		now:       time.Now,
	}
}

func (s *SMTP) Name() string { return "smtp" }

// Send dials the relay, secures the connection according to the security
// mode, authenticates with PLAIN when credentials are configured and submits
// msg.
func (s *SMTP) Send(ctx context.Context, msg *Message) error {
	from, fromName := s.resolve(msg)
	m := *msg
	if m.ID == "" {
		m.ID = uuid.NewString() + "@" + s.host
	}
	body, err := buildMIME(&m, from, fromName, s.now())
	if err != nil {
		return fmt.Errorf("smtp: build message: %w", err)
	}

	conn, err := s.dial(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("smtp: dial %s: %w", s.addr, err)
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(s.timeout)
	}
	// go-smtp manages per-command deadlines itself; cancellation closes the
	// connection instead.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := s.newClient(conn)
	if err != nil {
		conn.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("smtp: %w", ctxErr)
		}
		return fmt.Errorf("smtp: %s handshake: %w", s.security, err)
	}
	defer c.Close()
	if remaining := time.Until(deadline); remaining > 0 {
		c.CommandTimeout = remaining
		c.SubmissionTimeout = remaining
	}

	if s.username != "" {
		if ok, _ := c.Extension("AUTH"); !ok {
			return &DeliveryError{Transport: "smtp", Message: "server does not support AUTH", Permanent: true}
		}
		if err := c.Auth(sasl.NewPlainClient("", s.username, s.password)); err != nil {
			return classifySMTPError(err)
		}
	}

	if err := c.SendMail(from, []string{msg.To}, bytes.NewReader(body)); err != nil {
		return classifySMTPError(err)
	}

	// The relay has accepted the message once DATA completes.
	_ = c.Quit()
	return nil
}

// newClient wraps conn according to the configured security mode. STARTTLS
// fails when the relay does not offer it.
func (s *SMTP) newClient(conn net.Conn) (*gosmtp.Client, error) {
	switch s.security {
	case SecurityTLS:
		return gosmtp.NewClient(tls.Client(conn, s.tlsConfig)), nil
	case SecurityNone:
		return gosmtp.NewClient(conn), nil
	default:
		return gosmtp.NewClientStartTLS(conn, s.tlsConfig)
	}
}

// classifySMTPError maps SMTP replies onto DeliveryError: 5xx codes are
// permanent, 4xx codes transient.
func classifySMTPError(err error) error {
	var se *gosmtp.SMTPError
	if !errors.As(err, &se) {
		return fmt.Errorf("smtp: %w", err)
	}
	return &DeliveryError{
		Transport:  "smtp",
		StatusCode: se.Code,
		Message:    se.Message,
		Permanent:  se.Code >= 500,
	}
}
