package apiclient

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantType      ErrorType
		wantSubtype   NetworkErrorSubtype
		wantRetryable bool
	}{
		{
			name: "timeout",
			err: &url.Error{Op: "Get", URL: "http://api.local", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: &timeoutError{},
			}},
			wantType:      ErrTypeTimeout,
			wantSubtype:   NetworkErrorTimeout,
			wantRetryable: true,
		},
		{
			name: "connection refused",
			err: &url.Error{Op: "Get", URL: "http://api.local", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED,
			}},
			wantType:      ErrTypeConnectionRefused,
			wantSubtype:   NetworkErrorConnectionRefused,
			wantRetryable: true,
		},
		{
			name:          "dns",
			err:           &net.DNSError{Err: "no such host", Name: "api.invalid", IsNotFound: true},
			wantType:      ErrTypeDNS,
			wantSubtype:   NetworkErrorDNS,
			wantRetryable: false,
		},
		{
			name: "host unreachable",
			err: &url.Error{Op: "Get", URL: "http://api.local", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH,
			}},
			wantType:      ErrTypeNetwork,
			wantSubtype:   NetworkErrorHostUnreachable,
			wantRetryable: true,
		},
		{
			name:          "generic",
			err:           errors.New("something broke"),
			wantType:      ErrTypeNetwork,
			wantSubtype:   NetworkErrorGeneral,
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := ClassifyNetworkError(tt.err)
			if apiErr == nil {
				t.Fatal("Expected APIError, got nil")
			}
			if apiErr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", apiErr.Type, tt.wantType)
			}
			if apiErr.NetworkSubtype != tt.wantSubtype {
				t.Errorf("NetworkSubtype = %v, want %v", apiErr.NetworkSubtype, tt.wantSubtype)
			}
			if apiErr.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", apiErr.Retryable, tt.wantRetryable)
			}
		})
	}

	if ClassifyNetworkError(nil) != nil {
		t.Error("ClassifyNetworkError(nil) should return nil")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("x"), false},
		{"network", NewNetworkError("down", errors.New("x")), true},
		{"500", NewHTTPError(500, "Internal Server Error"), true},
		{"503", NewHTTPError(503, "Service Unavailable"), true},
		{"429", NewHTTPError(429, "Too Many Requests"), true},
		{"404", NewHTTPError(404, "Not Found"), false},
		{"auth", NewAuthError(401, "Unauthorized"), false},
		{"parse", NewParseError("bad", nil), false},
		{"validation", NewValidationError("bad"), false},
		{"domain", NewDomainError(409, "BED_TAKEN", "taken"), false},
		{"wrapped 500", fmt.Errorf("load floors: %w", NewHTTPError(500, "x")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTypePredicates(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", NewDomainError(422, "", "phone is invalid"))

	if !IsDomainError(wrapped) {
		t.Error("IsDomainError() should see through wrapping")
	}
	if IsHTTPError(wrapped) || IsAuthError(wrapped) || IsParseError(wrapped) || IsValidationError(wrapped) {
		t.Error("a domain error should match no other predicate")
	}
	if !IsNetworkError(NewNetworkError("x", &net.DNSError{Name: "h"})) {
		t.Error("DNS errors are network errors")
	}
	if !IsAuthError(NewAuthError(403, "Forbidden")) {
		t.Error("IsAuthError() should match")
	}
}

func TestAPIErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewParseError("failed to decode", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if !strings.Contains(err.Error(), "failed to decode") || !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() = %q", err.Error())
	}
	if got := NewValidationError("bad").Error(); got != "Validation Error: bad" {
		t.Errorf("Error() = %q, want %q", got, "Validation Error: bad")
	}
}

func TestShortMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("plain"), "plain"},
		{"refused", &APIError{Type: ErrTypeConnectionRefused}, "API refused connection - is the server running?"},
		{"auth", NewAuthError(401, "x"), "Not authorized - log in again"},
		{"http", NewHTTPError(502, "Bad Gateway"), "Server error (HTTP 502)"},
		{"domain", NewDomainError(409, "", " bed already taken "), "bed already taken"},
		{"validation", NewValidationError("name is required"), "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortMessage(tt.err); got != tt.want {
				t.Errorf("ShortMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTroubleshootingHint(t *testing.T) {
	errs := []error{
		errors.New("x"),
		&APIError{Type: ErrTypeTimeout},
		&APIError{Type: ErrTypeConnectionRefused},
		&APIError{Type: ErrTypeDNS},
		NewAuthError(401, "x"),
		NewHTTPError(500, "x"),
		NewHTTPError(404, "x"),
		NewParseError("x", nil),
		NewValidationError("x"),
		NewDomainError(409, "", "x"),
	}
	for _, err := range errs {
		if hints := TroubleshootingHint(err); len(hints) == 0 {
			t.Errorf("TroubleshootingHint(%v) returned no hints", err)
		}
	}

	hints := TroubleshootingHint(NewAuthError(401, "x"))
	if !strings.Contains(strings.Join(hints, " "), "hostelctl login") {
		t.Errorf("auth hints should mention login, got %v", hints)
	}
}
