package mail

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	netmail "net/mail"
	"net/textproto"
	"sort"
	"time"
)

// formatAddress renders "Name <addr>" with RFC 2047 encoding of the name.
func formatAddress(name, addr string) string {
	return (&netmail.Address{Name: name, Address: addr}).String()
}

// buildMIME renders msg as an RFC 5322 message. Messages with a text body
// become multipart/alternative.
func buildMIME(msg *Message, from, fromName string, now time.Time) ([]byte, error) {
	var b bytes.Buffer

	fmt.Fprintf(&b, "From: %s\r\n", formatAddress(fromName, from))
	fmt.Fprintf(&b, "To: %s\r\n", formatAddress("", msg.To))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	if msg.ID != "" {
		fmt.Fprintf(&b, "Message-ID: <%s>\r\n", msg.ID)
	}
	b.WriteString("MIME-Version: 1.0\r\n")

	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\r\n", textproto.CanonicalMIMEHeaderKey(k), mime.QEncoding.Encode("utf-8", msg.Headers[k]))
	}

	if msg.TextBody == "" {
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		if err := writeQP(&b, msg.HTMLBody); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	}

	mw := multipart.NewWriter(&b)
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	for _, part := range []struct{ ctype, body string }{
		{"text/plain; charset=UTF-8", msg.TextBody},
		{"text/html; charset=UTF-8", msg.HTMLBody},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.ctype},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, fmt.Errorf("mime: create part: %w", err)
		}
		qp := quotedprintable.NewWriter(w)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, fmt.Errorf("mime: write part: %w", err)
		}
		if err := qp.Close(); err != nil {
			return nil, fmt.Errorf("mime: close part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("mime: close multipart: %w", err)
	}
	return b.Bytes(), nil
}

func writeQP(b *bytes.Buffer, body string) error {
	qp := quotedprintable.NewWriter(b)
	if _, err := qp.Write([]byte(body)); err != nil {
		return fmt.Errorf("mime: write body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return fmt.Errorf("mime: close body: %w", err)
	}
	return nil
}
