package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ferama/rexpect/pkg/expect"
	"github.com/ferama/rexpect/pkg/logger"
)

// ExpectConf holds the engine defaults of the expect section
type ExpectConf struct {
	Timeout     time.Duration `yaml:"timeout"`
	MatchMax    int           `yaml:"match_max"`
	RemoveNulls bool          `yaml:"remove_nulls"`
	FullBuffer  bool          `yaml:"full_buffer"`
	// LogUser copies the sessions output to stdout
	LogUser bool `yaml:"log_user"`
	// Debug logs the engine internals
	Debug bool `yaml:"debug"`
}

// DefaultExpectConf returns the classic expect defaults
func DefaultExpectConf() *ExpectConf {
	d := expect.DefaultConfig()
	return &ExpectConf{
		Timeout:     d.Timeout,
		MatchMax:    d.MatchMax,
		RemoveNulls: d.RemoveNulls,
		FullBuffer:  d.FullBuffer,
		LogUser:     true,
	}
}

// EngineConfig builds the engine configuration. transcript receives the
// sessions output when LogUser is set, nil means stdout.
func (c *ExpectConf) EngineConfig(transcript io.Writer) expect.Config {
	cfg := expect.DefaultConfig()
	cfg.Timeout = c.Timeout
	cfg.MatchMax = c.MatchMax
	cfg.RemoveNulls = c.RemoveNulls
	cfg.FullBuffer = c.FullBuffer
	if c.LogUser {
		if transcript == nil {
			transcript = os.Stdout
		}
		cfg.LogUser = transcript
	}
	if c.Debug {
		cfg.Logger = logger.NewLogger("[EXPECT] ", logger.Magenta)
	}
	return cfg
}

// ScriptConf is a named list of steps. Every script owns its sessions.
type ScriptConf struct {
	Name  string  `yaml:"name"`
	Steps []*Step `yaml:"steps"`
}

// Step is one script action. Exactly one action field must be set.
type Step struct {
	// Name names the session created by spawn, popen and remote
	Name   string   `yaml:"name"`
	Spawn  []string `yaml:"spawn"`
	Popen  string   `yaml:"popen"`
	Remote *string  `yaml:"remote"`
	// spawn options
	Stty string `yaml:"stty"`
	Dir  string `yaml:"dir"`
	// per session overrides of the expect section
	MatchMax    int            `yaml:"match_max"`
	Timeout     *time.Duration `yaml:"timeout"`
	RemoveNulls *bool          `yaml:"remove_nulls"`
	FullBuffer  *bool          `yaml:"full_buffer"`
	LogUser     *bool          `yaml:"log_user"`

	// Use makes the named session the current one
	Use      string        `yaml:"use"`
	Send     *string       `yaml:"send"`
	SendLine *string       `yaml:"sendline"`
	Expect   *ExpectStep   `yaml:"expect"`
	Close    bool          `yaml:"close"`
	Wait     bool          `yaml:"wait"`
	Sleep    time.Duration `yaml:"sleep"`
}

// ExpectStep runs one expect call on the current session
type ExpectStep struct {
	// Timeout overrides the engine default. Negative waits forever.
	Timeout *time.Duration `yaml:"timeout"`
	Cases   []*CaseConf    `yaml:"cases"`
	// without them an unhandled timeout or eof fails the script
	AllowTimeout bool `yaml:"allow_timeout"`
	AllowEOF     bool `yaml:"allow_eof"`
	// Sessions lists the sessions to expect on. Empty means the current one
	Sessions []string `yaml:"sessions"`
}

// CaseConf is one case of an expect step. Exactly one pattern field must
// be set.
type CaseConf struct {
	Exact   *string `yaml:"exact"`
	Glob    *string `yaml:"glob"`
	Regexp  *string `yaml:"regexp"`
	Null    bool    `yaml:"null"`
	EOF     bool    `yaml:"eof"`
	Timeout bool    `yaml:"timeout"`

	Value int `yaml:"value"`
	// Send is written to the session once the case matched
	Send *string `yaml:"send"`
	// Fail turns a match of this case into a script error
	Fail bool `yaml:"fail"`
	// Continue runs the same expect step again after the case matched
	Continue bool `yaml:"continue"`
	// Session restricts the case to the named session
	Session string `yaml:"session"`
}

func (s *Step) actions() int {
	n := 0
	for _, set := range []bool{
		len(s.Spawn) > 0, s.Popen != "", s.Remote != nil, s.Use != "",
		s.Send != nil, s.SendLine != nil, s.Expect != nil,
		s.Close, s.Wait, s.Sleep > 0,
	} {
		if set {
			n++
		}
	}
	return n
}

// Validate checks the step shape
func (s *Step) Validate() error {
	if n := s.actions(); n != 1 {
		return fmt.Errorf("a step needs exactly one action, got %d", n)
	}
	if s.Expect == nil {
		return nil
	}
	if len(s.Expect.Cases) == 0 {
		return errors.New("expect step without cases")
	}
	for i, c := range s.Expect.Cases {
		if err := c.validate(); err != nil {
			return fmt.Errorf("case %d: %w", i, err)
		}
	}
	return nil
}

func (c *CaseConf) validate() error {
	n := 0
	for _, set := range []bool{c.Exact != nil, c.Glob != nil, c.Regexp != nil, c.Null, c.EOF, c.Timeout} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("a case needs exactly one pattern, got %d", n)
	}
	if c.Continue && (c.EOF || c.Timeout) {
		return errors.New("continue is not allowed on eof and timeout cases")
	}
	return nil
}

// Case converts the conf to an engine case carrying index as its value
func (c *CaseConf) Case(index int, on *expect.Session) expect.Case {
	var ec expect.Case
	switch {
	case c.Exact != nil:
		ec = expect.Exact(*c.Exact, index)
	case c.Glob != nil:
		ec = expect.Glob(*c.Glob, index)
	case c.Regexp != nil:
		ec = expect.Regexp(*c.Regexp, index)
	case c.Null:
		ec = expect.Null(index)
	case c.EOF:
		ec = expect.EOF(index)
	case c.Timeout:
		ec = expect.Timeout(index)
	}
	ec.On = on
	return ec
}
