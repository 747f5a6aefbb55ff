package refiner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ErrMissingCredential is wrapped by ExternalServiceError when a provider has no key configured.
var ErrMissingCredential = errors.New("service credential not configured")

// ValidationError reports every field that failed validation.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

// TimeoutError is returned when the external call did not complete in time.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("external refinement timed out after %s", e.After)
}

type ErrorKind string

const (
	KindCredential  ErrorKind = "credential"
	KindQuota       ErrorKind = "quota"
	KindTransport   ErrorKind = "transport"
	KindEmptyOutput ErrorKind = "empty_output"
	KindProvider    ErrorKind = "provider"
)

// ExternalServiceError wraps any failure of the text-generation provider.
type ExternalServiceError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// MissingCredential builds the error a provider returns when it has no key.
func MissingCredential(provider string) error {
	return &ExternalServiceError{Provider: provider, Kind: KindCredential, Err: ErrMissingCredential}
}

// NewExternalServiceError wraps err, classifying it from its type and message.
func NewExternalServiceError(provider string, err error) *ExternalServiceError {
	return &ExternalServiceError{Provider: provider, Kind: ClassifyProviderError(err), Err: err}
}

// ClassifyProviderError maps a provider error onto an ErrorKind. Providers that
// expose typed errors should classify those themselves and use ExternalServiceError directly.
func ClassifyProviderError(err error) ErrorKind {
	var serviceErr *ExternalServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Kind
	}
	if errors.Is(err, ErrMissingCredential) {
		return KindCredential
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransport
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransport
	}

	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "quota"), strings.Contains(message, "limit"), strings.Contains(message, "resource_exhausted"):
		return KindQuota
	case strings.Contains(message, "api key"), strings.Contains(message, "api_key"), strings.Contains(message, "unauthorized"), strings.Contains(message, "permission"):
		return KindCredential
	}
	return KindProvider
}

// FailureReason returns the metrics/log label for an error that triggered the fallback.
func FailureReason(err error) string {
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return "timeout"
	}
	return string(ClassifyProviderError(err))
}
