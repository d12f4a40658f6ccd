package expect

import (
	"errors"
	"fmt"
)

var (
	// ErrInterrupted is returned when an Interrupter aborted the read
	ErrInterrupted = errors.New("expect: interrupted")
	// ErrClosed is returned when operating on a closed session
	ErrClosed = errors.New("expect: session is closed")
	// ErrBadCase is returned for malformed case lists
	ErrBadCase = errors.New("expect: bad case")
	// ErrUnsupported is returned on platforms without pty support
	ErrUnsupported = errors.New("expect: unsupported on this platform")

	errTimeout = errors.New("expect: timeout")
	errNoData  = errors.New("expect: no data")
)

// SpawnErrorKind tells which spawn stage failed
type SpawnErrorKind int

// The spawn failure kinds
const (
	SpawnPtyAllocation SpawnErrorKind = iota + 1
	SpawnFork
	SpawnExec
)

func (k SpawnErrorKind) String() string {
	switch k {
	case SpawnPtyAllocation:
		return "pty allocation"
	case SpawnFork:
		return "fork"
	case SpawnExec:
		return "exec"
	}
	return "unknown"
}

// SpawnError is returned by the spawn functions. The session is never
// created when it is returned.
type SpawnError struct {
	Kind    SpawnErrorKind
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("expect: spawn %s: %s failed: %v", e.Program, e.Kind, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// IOError reports a read or write failure on a session. The session buffer
// is left untouched but the descriptor should be considered suspect.
type IOError struct {
	Op      string
	Session string
	Err     error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("expect: %s %s: %v", e.Op, e.Session, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
