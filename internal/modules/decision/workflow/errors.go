package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound covers both a missing decision and one owned by someone else.
	ErrNotFound = errors.New("decision not found")
	// ErrEntitlementRequired signals the subject must upgrade before advancing.
	ErrEntitlementRequired = errors.New("upgrade required to continue past this stage")
	// ErrLocked is returned for any mutation of a locked decision.
	ErrLocked = errors.New("decision is locked")
	// ErrStageConflict means a concurrent request moved the decision first.
	ErrStageConflict = errors.New("decision stage changed concurrently; reload and retry")
)

// ValidationError lists the fields that blocked an operation.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed")
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Fields, ", "))
	}
	return b.String()
}

func invalid(reason string, fields ...string) error {
	return &ValidationError{Reason: reason, Fields: fields}
}

// PersistenceError wraps a store failure. The client should re-fetch and retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
