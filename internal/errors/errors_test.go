package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err    *AppError
		typ    ErrorType
		status int
	}{
		{NewValidationError("bad", cause), ErrorTypeValidation, http.StatusBadRequest},
		{NewDecodeError("bad image", cause), ErrorTypeDecode, http.StatusInternalServerError},
		{NewNetworkError("down", cause), ErrorTypeNetwork, http.StatusBadGateway},
		{NewProcessingError("failed", cause), ErrorTypeProcessing, http.StatusUnprocessableEntity},
		{NewTimeoutError("slow", cause), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{NewNotFoundError("gone", cause), ErrorTypeNotFound, http.StatusNotFound},
		{NewOverloadedError("busy", cause), ErrorTypeOverloaded, http.StatusServiceUnavailable},
		{NewInternalError("oops", cause), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if tt.err.Type != tt.typ {
			t.Errorf("Expected type %s, got %s", tt.typ, tt.err.Type)
		}
		if tt.err.StatusCode != tt.status {
			t.Errorf("%s: expected status %d, got %d", tt.typ, tt.status, tt.err.StatusCode)
		}
		if !errors.Is(tt.err, cause) {
			t.Errorf("%s: expected error to unwrap to its cause", tt.typ)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewDecodeError("invalid image", nil)
	if err.Error() != "decode: invalid image" {
		t.Errorf("Unexpected message %q", err.Error())
	}

	err = NewDecodeError("invalid image", errors.New("not a png"))
	if err.Error() != "decode: invalid image (caused by: not a png)" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestIsTypeAndStatusThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("digitize: %w", NewTimeoutError("deadline", nil))

	if !IsType(wrapped, ErrorTypeTimeout) {
		t.Error("Expected wrapped timeout error to be detected")
	}
	if IsType(wrapped, ErrorTypeDecode) {
		t.Error("Expected type mismatch to be false")
	}
	if code := GetStatusCode(wrapped); code != http.StatusGatewayTimeout {
		t.Errorf("Expected status 504, got %d", code)
	}
	if code := GetStatusCode(errors.New("plain")); code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 for plain errors, got %d", code)
	}
}

func TestWithDetails(t *testing.T) {
	base := NewValidationError("bad option", nil)
	detailed := base.WithDetails("sampling_rate must be positive")

	if detailed.Details != "sampling_rate must be positive" {
		t.Errorf("Expected details to be set, got %q", detailed.Details)
	}
	if base.Details != "" {
		t.Error("Expected original error to be unchanged")
	}
}
