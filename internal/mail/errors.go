package mail

import (
	"errors"
	"strings"
)

// DeliveryError wraps a rejected submission with classification metadata.
type DeliveryError struct {
	// Transport is the name of the transport that returned the error.
	Transport string
	// StatusCode is the HTTP or SMTP reply code, zero when unknown.
	StatusCode int
	Message    string
	// Permanent indicates the error will not succeed on retry.
	Permanent bool
}

func (e *DeliveryError) Error() string {
	return e.Transport + ": " + e.Message
}

// IsPermanent reports whether err is a permanent rejection, such as an
// invalid recipient or a suspended account.
func IsPermanent(err error) bool {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Permanent
	}
	return false
}

// ClassifyHTTPError creates a DeliveryError from an HTTP status code and
// response body. It returns nil for 2xx codes.
func ClassifyHTTPError(transport string, statusCode int, body string) *DeliveryError {
	de := &DeliveryError{
		Transport:  transport,
		StatusCode: statusCode,
		Message:    body,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil

	case statusCode == 400:
		de.Permanent = containsPermanentIndicator(body)

	case statusCode == 401, statusCode == 403, statusCode == 404:
		de.Permanent = true

	case statusCode == 429:
		de.Permanent = false

	case statusCode >= 500:
		de.Permanent = containsPermanentServerIndicator(body)

	default:
		de.Permanent = statusCode >= 400 && statusCode < 500
	}

	return de
}

func containsPermanentIndicator(body string) bool {
	return containsAny(body,
		"invalid recipient",
		"invalid email",
		"does not exist",
		"mailbox not found",
		"recipient rejected",
		"bad request",
		"validation error",
		"invalid address",
	)
}

func containsPermanentServerIndicator(body string) bool {
	return containsAny(body,
		"invalid api key",
		"authentication failed",
		"account suspended",
		"account disabled",
		"unauthorized",
	)
}

func containsAny(body string, patterns ...string) bool {
	lower := strings.ToLower(body)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
