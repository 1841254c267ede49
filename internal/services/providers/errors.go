package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies adapter failures and drives retry/fallback behavior
type ErrorKind int

const (
	// KindTransient covers network blips, rate limits and 5xx responses;
	// these are retried with backoff
	KindTransient ErrorKind = iota
	// KindTerminal covers bad input, 4xx responses and malformed payloads;
	// these fail the stage immediately with no retry
	KindTerminal
	// KindUnconfigured means the capability is not enabled in this
	// deployment; it never fails a stage, the caller substitutes a fallback
	KindUnconfigured
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindTerminal:
		return "terminal"
	case KindUnconfigured:
		return "unconfigured"
	default:
		return "unknown"
	}
}

// Error is the classified error every capability adapter returns
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s provider: %v (%s)", e.Provider, e.Err, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient wraps err as a retryable provider error
func Transient(provider string, err error) *Error {
	return &Error{Kind: KindTransient, Provider: provider, Err: err}
}

// Terminal wraps err as a non-retryable provider error
func Terminal(provider string, err error) *Error {
	return &Error{Kind: KindTerminal, Provider: provider, Err: err}
}

// Unconfigured reports that the named capability is not set up
func Unconfigured(provider string) *Error {
	return &Error{Kind: KindUnconfigured, Provider: provider, Err: errors.New("not configured")}
}

// KindOf extracts the classification from any error. Unclassified errors
// default to Transient so the retry budget still bounds them; adapters are
// the classification boundary and wrap everything they return.
func KindOf(err error) ErrorKind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return KindTransient
	}
	return KindTransient
}

// IsUnconfigured returns true if err means the capability is not enabled
func IsUnconfigured(err error) bool {
	return err != nil && KindOf(err) == KindUnconfigured
}

// classifyStatus maps an HTTP response status to an error kind: 5xx and 429
// retry, every other non-2xx fails fast
func classifyStatus(provider string, status int) *Error {
	err := fmt.Errorf("unexpected status %d", status)
	if status >= 500 || status == 429 {
		return Transient(provider, err)
	}
	return Terminal(provider, err)
}
