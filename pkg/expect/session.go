package expect

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"
)

const readChunk = 4096

// Session is one spawned (or attached) process and its pty.
//
// A session is not safe for concurrent expect calls: whoever runs an expect
// call against it owns its descriptor and buffer until the call returns.
// Send, Stats and the window accessors may be used from other goroutines.
type Session struct {
	engine *Engine

	name      string
	slaveName string
	cmd       *exec.Cmd

	file    *os.File
	fd      int
	writer  io.Writer
	closers []io.Closer

	buf     *Buffer
	scratch []byte

	timeout     time.Duration
	removeNulls bool
	fullBuffer  bool
	logging     bool

	closed   atomic.Bool
	wmu      sync.Mutex
	waitFn   func() (int, error)
	waitCode int
	waitErr  error
	waited   sync.Once

	statsMu sync.Mutex
	stats   Stats
}

// Stats is a point in time snapshot of a session
type Stats struct {
	Name        string `json:"Name"`
	SlaveName   string `json:"SlaveName"`
	Pid         int    `json:"Pid"`
	Closed      bool   `json:"Closed"`
	BytesRead   int64  `json:"BytesRead"`
	Matches     int64  `json:"Matches"`
	BufferLen   int    `json:"BufferLen"`
	MatchMax    int    `json:"MatchMax"`
	LastOutcome string `json:"LastOutcome"`
}

func newSession(e *Engine, name string, f *os.File, w io.Writer) *Session {
	cfg := e.cfg
	s := &Session{
		engine:      e,
		name:        name,
		file:        f,
		fd:          int(f.Fd()),
		writer:      w,
		buf:         NewBuffer(cfg.MatchMax),
		scratch:     make([]byte, readChunk),
		timeout:     cfg.Timeout,
		removeNulls: cfg.RemoveNulls,
		fullBuffer:  cfg.FullBuffer,
		logging:     cfg.LogUser != nil,
	}
	if s.writer == nil {
		s.writer = f
	}
	s.stats = Stats{Name: name, Pid: -1, MatchMax: cfg.MatchMax}
	return s
}

// Name returns the session name
func (s *Session) Name() string { return s.name }

// Pid returns the child process id or -1 for attached descriptors
func (s *Session) Pid() int {
	if s.cmd == nil || s.cmd.Process == nil {
		return -1
	}
	return s.cmd.Process.Pid
}

// SlaveName returns the pty slave device name if the engine allocated it
func (s *Session) SlaveName() string { return s.slaveName }

// File returns the master side of the session
func (s *Session) File() *os.File { return s.file }

// Timeout returns the session default timeout
func (s *Session) Timeout() time.Duration { return s.timeout }

// SetTimeout overrides the engine default timeout for this session
func (s *Session) SetTimeout(d time.Duration) { s.timeout = d }

// MatchMax returns the buffer capacity
func (s *Session) MatchMax() int { return s.buf.Cap() }

// SetMatchMax changes the buffer capacity. Under the eviction policy old
// bytes are dropped at once. Under the full buffer policy nothing is lost:
// the next expect call reports BufferFull with every buffered byte.
func (s *Session) SetMatchMax(n int) {
	s.buf.SetCap(n, !s.fullBuffer)
	s.statsMu.Lock()
	s.stats.MatchMax = s.buf.Cap()
	s.stats.BufferLen = s.buf.Len()
	s.statsMu.Unlock()
}

// SetRemoveNulls toggles NUL stripping for this session
func (s *Session) SetRemoveNulls(v bool) { s.removeNulls = v }

// SetFullBuffer selects the full buffer policy: true reports BufferFull,
// false evicts the oldest bytes
func (s *Session) SetFullBuffer(v bool) { s.fullBuffer = v }

// SetLogging toggles the transcript for this session
func (s *Session) SetLogging(v bool) { s.logging = v }

// Logging reports whether the output is copied to the engine transcript
func (s *Session) Logging() bool { return s.logging && s.engine.cfg.LogUser != nil }

// Buffer returns a copy of the unconsumed output
func (s *Session) Buffer() []byte {
	return append([]byte(nil), s.buf.Bytes()...)
}

// Write sends raw bytes to the child
func (s *Session) Write(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	n, err := s.writer.Write(p)
	if err != nil {
		return n, &IOError{Op: "write", Session: s.name, Err: err}
	}
	return n, nil
}

// Send writes text to the child
func (s *Session) Send(text string) error {
	_, err := s.Write([]byte(text))
	s.engine.debugf("%s: send %q", s.name, text)
	return err
}

// SendLine writes text followed by a carriage return, the way a user
// presses enter on a terminal
func (s *Session) SendLine(text string) error {
	return s.Send(text + "\r")
}

// Expect runs the expect loop with the session timeout
func (s *Session) Expect(cases ...Case) (*Result, error) {
	return s.engine.ExpectAny(s.timeout, []*Session{s}, cases...)
}

// ExpectTimeout runs the expect loop with an explicit timeout
func (s *Session) ExpectTimeout(timeout time.Duration, cases ...Case) (*Result, error) {
	return s.engine.ExpectAny(timeout, []*Session{s}, cases...)
}

// Close releases the master descriptor. A spawned child sees a hang up.
// It is safe to call Close multiple times.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.statsMu.Lock()
	s.stats.Closed = true
	s.statsMu.Unlock()

	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, err)
	}
	s.engine.debugf("%s: closed", s.name)
	return errors.Join(errs...)
}

// Closed reports whether Close was called
func (s *Session) Closed() bool { return s.closed.Load() }

// Kill sends SIGKILL to the child
func (s *Session) Kill() error {
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	return s.cmd.Process.Kill()
}

// Wait waits for the child to exit and returns its exit code. Attached
// sessions without a wait function return 0 immediately.
func (s *Session) Wait() (int, error) {
	if s.waitFn == nil {
		return 0, nil
	}
	s.waited.Do(func() {
		s.waitCode, s.waitErr = s.waitFn()
	})
	return s.waitCode, s.waitErr
}

func waitCmd(cmd *exec.Cmd) func() (int, error) {
	return func() (int, error) {
		err := cmd.Wait()
		if err == nil {
			return 0, nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}
}

// Stats returns a snapshot of the session counters
func (s *Session) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	st := s.stats
	st.Pid = s.Pid()
	st.SlaveName = s.slaveName
	return st
}

// fill performs one read into the buffer. With the full buffer policy the
// read never asks for more than the buffer can hold, so nothing is evicted.
func (s *Session) fill() (int, error) {
	size := len(s.scratch)
	if s.fullBuffer {
		if room := s.buf.Room(); room < size {
			size = room
		}
	}
	n, err := readFd(s.fd, s.scratch[:size])
	if n > 0 {
		data := s.scratch[:n]
		if s.logging && s.engine.cfg.LogUser != nil {
			s.engine.cfg.LogUser.Write(data)
		}
		if evicted := s.buf.Append(data, s.removeNulls); evicted > 0 {
			s.engine.debugf("%s: buffer full, evicted %d bytes", s.name, evicted)
		}
		s.statsMu.Lock()
		s.stats.BytesRead += int64(n)
		s.stats.BufferLen = s.buf.Len()
		s.statsMu.Unlock()
	}
	return n, err
}

func (s *Session) record(o Outcome) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	if o == Matched {
		s.stats.Matches++
	}
	s.stats.LastOutcome = o.String()
	s.stats.BufferLen = s.buf.Len()
}
