package analysis

import (
	"errors"
	"fmt"
)

// Kind classifies a failed analysis call. Every kind is recoverable and
// leaves the decision untouched.
type Kind string

const (
	KindRateLimited   Kind = "rate_limited"
	KindQuotaExceeded Kind = "quota_exceeded"
	KindUnavailable   Kind = "unavailable"
	KindMalformed     Kind = "malformed"
)

type Error struct {
	Kind     Kind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("analysis %s", e.Kind)
	}
	if e.Provider != "" {
		return fmt.Sprintf("analysis %s (%s): %v", e.Kind, e.Provider, e.Err)
	}
	return fmt.Sprintf("analysis %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, provider string, err error) *Error {
	return &Error{Kind: kind, Provider: provider, Err: err}
}

// KindOf returns the analysis kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae.Kind, true
	}
	return "", false
}

var errInProgress = errors.New("analysis already in progress for this stage")
