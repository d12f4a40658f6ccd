package expect

import (
	"io"
	"log"
	"regexp"
	"time"
)

const (
	// DefaultTimeout is the expect timeout used when none is configured
	DefaultTimeout = 10 * time.Second
	// DefaultMatchMax is the default per session buffer capacity in bytes
	DefaultMatchMax = 2000

	// Forever disables the timeout. Any negative duration behaves the same.
	Forever time.Duration = -1
)

// Matcher is the regular expression capability the engine delegates to.
// *regexp.Regexp satisfies it.
type Matcher interface {
	// FindIndex returns the leftmost match location in b or nil
	FindIndex(b []byte) []int
}

// Compiler turns a regular expression source into a Matcher
type Compiler func(expr string) (Matcher, error)

// RegexpCompiler compiles expr with the standard library regexp package
func RegexpCompiler(expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return re, nil
}

// Config holds the engine wide settings. Sessions copy the relevant values
// when they are created and may override them afterwards.
type Config struct {
	// Timeout is the default expect timeout. Negative means wait forever,
	// zero means poll once.
	Timeout time.Duration
	// MatchMax is the default session buffer capacity
	MatchMax int
	// RemoveNulls strips NUL bytes from the child output before matching
	RemoveNulls bool
	// FullBuffer makes a full buffer an expect outcome. When false the
	// oldest bytes are evicted instead.
	FullBuffer bool

	// LogUser receives a transcript of everything read from the sessions.
	// nil disables the transcript.
	LogUser io.Writer
	// Logger receives engine debug messages. nil disables them.
	Logger *log.Logger

	// Compile is used for KindRegexp cases. Defaults to RegexpCompiler.
	Compile Compiler
	// Interrupter, if set, lets a signal handler abort or restart a
	// blocked read.
	Interrupter *Interrupter
}

// DefaultConfig returns the classic expect defaults
func DefaultConfig() Config {
	return Config{
		Timeout:     DefaultTimeout,
		MatchMax:    DefaultMatchMax,
		RemoveNulls: true,
		FullBuffer:  false,
		Compile:     RegexpCompiler,
	}
}
