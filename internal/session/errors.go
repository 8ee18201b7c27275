package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for session operations.
// These can be checked using errors.Is().
var (
	// ErrDuplicateSession is returned when creating a session whose id is taken.
	ErrDuplicateSession = errors.New("session: id already exists")

	// ErrNotFound is returned when an operation references an unknown session id.
	ErrNotFound = errors.New("session: not found")

	// ErrOffline is returned when writing to a session whose process has exited
	// or whose input stream is unavailable.
	ErrOffline = errors.New("session: offline")

	// ErrUnknownControl is returned for an unsupported control symbol.
	ErrUnknownControl = errors.New("session: unknown control symbol")
)

// errNoProcess reports a started command with no process handle attached.
var errNoProcess = errors.New("no process handle after start")

// SpawnError indicates the agent process could not be created.
type SpawnError struct {
	Cmd string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Cmd, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
