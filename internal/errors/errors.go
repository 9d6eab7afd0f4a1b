// Package errors provides centralized error definitions for the parley
// codebase: sentinel errors for session and roster lookup failures, and a
// typed error for collaborator (completion service) faults.
//
// Callers are expected to import only this package for error handling:
//
//	if errors.Is(err, errors.ErrNoSuchSession) { ... }
//
//	var cerr *errors.CollaboratorError
//	if errors.As(err, &cerr) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Session and roster sentinel errors.
var (
	// ErrNoSuchSession indicates a session lookup by id failed.
	ErrNoSuchSession = New("no such session")
	// ErrSessionExists indicates a create collided with an existing session id.
	ErrSessionExists = New("session already exists")
	// ErrSessionClosed indicates an operation on a session whose event bus
	// has already delivered its end marker.
	ErrSessionClosed = New("session is closed")
	// ErrInvalidRoster indicates an empty roster or a duplicated participant id.
	ErrInvalidRoster = New("invalid roster")
	// ErrNoSuchParticipant indicates a participant id not present in the roster.
	ErrNoSuchParticipant = New("no such participant")
	// ErrNotManualParticipant indicates input was fed to a generated participant.
	ErrNotManualParticipant = New("participant is not human-driven")
	// ErrInputBacklog indicates a manual participant's input queue is full.
	ErrInputBacklog = New("input backlog full")
)

// Negotiation outcome sentinel errors.
var (
	// ErrConsensusNotReached is the terminal outcome after the retry bound
	// is exhausted without a validated agreement. It is an expected result,
	// not a bug.
	ErrConsensusNotReached = New("consensus not reached")
	// ErrCancelled indicates an operation was abandoned due to an explicit stop.
	ErrCancelled = New("cancelled")
)

// CollaboratorErrorKind classifies collaborator faults.
type CollaboratorErrorKind string

const (
	// CollaboratorUnavailable covers connection failures and non-success
	// responses from the completion service.
	CollaboratorUnavailable CollaboratorErrorKind = "unavailable"
	// CollaboratorTimeout covers deadline expiry while waiting for a completion.
	CollaboratorTimeout CollaboratorErrorKind = "timeout"
)

// CollaboratorError represents a failure of the external completion service.
// It aborts the current negotiation attempt but is not evidence that the
// negotiation itself failed, so it never consumes a retry.
type CollaboratorError struct {
	Kind CollaboratorErrorKind
	Op   string // what was being completed, e.g. "turn for traveler_A"
	Err  error
}

// NewCollaboratorError creates a CollaboratorError wrapping err.
func NewCollaboratorError(kind CollaboratorErrorKind, op string, err error) *CollaboratorError {
	return &CollaboratorError{Kind: kind, Op: op, Err: err}
}

func (e *CollaboratorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("collaborator %s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("collaborator %s: %s", e.Kind, e.Op)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// IsCollaboratorError reports whether err is (or wraps) a CollaboratorError.
func IsCollaboratorError(err error) bool {
	var cerr *CollaboratorError
	return As(err, &cerr)
}
