// Package expect drives interactive programs through a pseudo terminal.
//
// An Engine spawns (or attaches to) sessions and runs the expect loop on
// them: it reads the child output into a per session buffer and tests an
// ordered case list against it until a case matches, the timeout elapses,
// the child closes its output or the buffer fills up.
package expect

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// Engine holds the configuration shared by its sessions. Several engines
// with different policies can be used side by side.
type Engine struct {
	cfg Config
}

// New creates an Engine. A zero MatchMax or a nil Compile fall back to the
// defaults.
func New(cfg Config) *Engine {
	if cfg.MatchMax <= 0 {
		cfg.MatchMax = DefaultMatchMax
	}
	if cfg.Compile == nil {
		cfg.Compile = RegexpCompiler
	}
	return &Engine{cfg: cfg}
}

// Config returns a copy of the engine configuration
func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) debugf(format string, v ...any) {
	if e.cfg.Logger != nil {
		e.cfg.Logger.Printf(format, v...)
	}
}

// AttachOptions customizes a session built on caller managed descriptors
type AttachOptions struct {
	// Name defaults to the file name
	Name string
	// Writer receives the input sent to the session. Defaults to the
	// attached file itself.
	Writer io.Writer
	// Closers are closed together with the session
	Closers []io.Closer
	// Wait, if set, is used by Session.Wait
	Wait func() (int, error)
}

// Attach builds a session on an already open descriptor, typically the
// master side of a pty the caller manages. The descriptor must be pollable.
func (e *Engine) Attach(f *os.File, opts *AttachOptions) (*Session, error) {
	if f == nil {
		return nil, errors.New("expect: attach: nil file")
	}
	if opts == nil {
		opts = &AttachOptions{}
	}
	name := opts.Name
	if name == "" {
		name = filepath.Base(f.Name())
	}
	s := newSession(e, name, f, opts.Writer)
	s.closers = opts.Closers
	s.waitFn = opts.Wait
	e.debugf("%s: attached fd %d", name, s.fd)
	return s, nil
}

// SpawnFile spawns program with args using the default spawn options
func (e *Engine) SpawnFile(program string, args ...string) (*Session, error) {
	return e.Spawn(program, args, nil)
}

// Popen runs command through /bin/sh
func (e *Engine) Popen(command string, opts *SpawnOptions) (*Session, error) {
	var o SpawnOptions
	if opts != nil {
		o = *opts
	}
	if o.Name == "" {
		o.Name = "sh"
	}
	return e.Spawn("/bin/sh", []string{"-c", command}, &o)
}
