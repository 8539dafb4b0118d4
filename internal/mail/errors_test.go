package mail

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantNil    bool
		wantPerm   bool
	}{
		{name: "202 returns nil", statusCode: 202, wantNil: true},
		{name: "400 invalid email is permanent", statusCode: 400, body: "Invalid email address", wantPerm: true},
		{name: "400 other is transient", statusCode: 400, body: "temporary glitch"},
		{name: "401 is permanent", statusCode: 401, wantPerm: true},
		{name: "403 is permanent", statusCode: 403, wantPerm: true},
		{name: "404 is permanent", statusCode: 404, wantPerm: true},
		{name: "413 is permanent", statusCode: 413, wantPerm: true},
		{name: "429 is transient", statusCode: 429, body: "slow down"},
		{name: "500 is transient", statusCode: 500, body: "internal error"},
		{name: "503 account suspended is permanent", statusCode: 503, body: "Account Suspended", wantPerm: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ClassifyHTTPError("sendgrid", tt.statusCode, tt.body)
			if tt.wantNil {
				if de != nil {
					t.Fatalf("expected nil, got %v", de)
				}
				return
			}
			if de == nil {
				t.Fatal("expected error, got nil")
			}
			if de.Permanent != tt.wantPerm {
				t.Errorf("Permanent = %v, want %v", de.Permanent, tt.wantPerm)
			}
			if de.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %d, want %d", de.StatusCode, tt.statusCode)
			}
		})
	}
}

func TestIsPermanent(t *testing.T) {
	perm := &DeliveryError{Transport: "smtp", Message: "no such user", Permanent: true}
	if !IsPermanent(fmt.Errorf("wrapped: %w", perm)) {
		t.Error("expected wrapped permanent error to be permanent")
	}
	if IsPermanent(&DeliveryError{Permanent: false}) {
		t.Error("expected transient error to not be permanent")
	}
	if IsPermanent(errors.New("plain")) {
		t.Error("expected unknown error to not be permanent")
	}
}

func TestDeliveryError_Error(t *testing.T) {
	de := &DeliveryError{Transport: "ses", Message: "rejected"}
	if de.Error() != "ses: rejected" {
		t.Errorf("Error() = %q", de.Error())
	}
}
