package expect

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Outcome is how an expect call ended
type Outcome int

// The expect outcomes
const (
	Matched Outcome = iota
	TimedOut
	EndOfFile
	BufferFull
	Interrupted
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case TimedOut:
		return "timeout"
	case EndOfFile:
		return "eof"
	case BufferFull:
		return "full_buffer"
	case Interrupted:
		return "interrupted"
	case Failed:
		return "error"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Code returns the classic libexpect return code of the outcome. Matched
// returns 0, callers use the case value instead.
func (o Outcome) Code() int {
	switch o {
	case TimedOut:
		return -2
	case BufferFull:
		return -5
	case EndOfFile:
		return -11
	case Interrupted, Failed:
		return -1
	}
	return 0
}

// Result describes how an expect call ended. Match is a copy: it stays
// valid whatever happens to the session buffer afterwards.
type Result struct {
	Outcome Outcome
	// Session is the session the outcome refers to, nil for timeouts and
	// interrupts on several sessions
	Session *Session
	// Case is the index of the case that produced the result or -1
	Case  int
	Value any
	// Match is the matched text. For BufferFull it is the whole buffer.
	Match []byte
	// Start and End locate Match in the buffer as it was when it matched
	Start, End int
}

// ExpectAny runs the expect loop over one or more sessions.
//
// Sessions are serviced in the given order when several are ready at
// once. The case list is tested in order, the first matching case wins.
// A negative timeout waits forever, zero polls once. The timeout budget is
// shared by all the reads of the call.
//
// EndOfFile, TimedOut and BufferFull are not errors. Interrupted returns
// ErrInterrupted and any other read failure returns an *IOError; in both
// cases the buffers are left as they were.
func (e *Engine) ExpectAny(timeout time.Duration, sessions []*Session, cases ...Case) (*Result, error) {
	if len(sessions) == 0 {
		return nil, errors.New("expect: no sessions")
	}
	seen := make(map[*Session]bool, len(sessions))
	for _, s := range sessions {
		if s == nil {
			return nil, errors.New("expect: nil session")
		}
		if seen[s] {
			return nil, fmt.Errorf("expect: session %s listed twice", s.name)
		}
		seen[s] = true
		if s.Closed() {
			return nil, ErrClosed
		}
	}
	armed, err := arm(cases)
	if err != nil {
		return nil, err
	}

	forever := timeout < 0
	deadline := time.Now().Add(timeout)

	var w *waiter
	if intr := e.cfg.Interrupter; intr != nil {
		w, err = intr.register()
		if err != nil {
			return nil, &IOError{Op: "pipe", Err: err}
		}
		defer intr.release(w)
	}

	// leftovers from a previous call are tested before reading
	for _, s := range sessions {
		s.buf.ResetScan()
		if s.buf.Len() == 0 {
			continue
		}
		res, err := e.tryMatch(s, armed)
		if err != nil {
			return e.fail(s, err)
		}
		if res != nil {
			return res, nil
		}
	}

	fds := make([]int, len(sessions))
	for i, s := range sessions {
		fds[i] = s.fd
	}

	for {
		for _, s := range sessions {
			if s.fullBuffer && s.buf.Full() {
				return e.full(s), nil
			}
		}

		ready, err := waitReadable(fds, w, deadline, forever)
		switch {
		case errors.Is(err, errTimeout):
			return e.timedOut(sessions, armed), nil
		case errors.Is(err, ErrInterrupted):
			for _, s := range sessions {
				s.record(Interrupted)
			}
			e.debugf("expect: interrupted")
			return &Result{Outcome: Interrupted, Case: -1}, ErrInterrupted
		case err != nil:
			return e.fail(nil, err)
		}

		for i, s := range sessions {
			if !ready[i] {
				continue
			}
			_, err := s.fill()
			switch {
			case errors.Is(err, errNoData):
				continue
			case errors.Is(err, io.EOF):
				return e.eof(s, armed)
			case err != nil:
				return e.fail(s, &IOError{Op: "read", Session: s.name, Err: err})
			}

			res, err := e.tryMatch(s, armed)
			if err != nil {
				return e.fail(s, err)
			}
			if res != nil {
				return res, nil
			}
		}
	}
}

// tryMatch tests the case list against the buffer of s. On a match the
// buffer is consumed up to the end of the match.
func (e *Engine) tryMatch(s *Session, armed []armedCase) (*Result, error) {
	data := s.buf.Bytes()
	scanned := s.buf.Scanned()

	for i := range armed {
		c := &armed[i]
		if c.pseudo() || !c.appliesTo(s) {
			continue
		}
		start, end, err := c.match(e.cfg.Compile, data, scanned)
		if err != nil {
			return nil, err
		}
		if start < 0 {
			continue
		}
		res := &Result{
			Outcome: Matched,
			Session: s,
			Case:    i,
			Value:   c.Value,
			Match:   append([]byte(nil), data[start:end]...),
			Start:   start,
			End:     end,
		}
		e.debugf("%s: case %d (%s %q) matched %q", s.name, i, c.Kind, c.Pattern, res.Match)
		s.buf.Consume(end)
		s.record(Matched)
		return res, nil
	}
	s.buf.MarkScanned(len(data))
	return nil, nil
}

// eof gives the case list a last chance on what is left in the buffer,
// then reports EndOfFile with the value of the first eof case, if any.
func (e *Engine) eof(s *Session, armed []armedCase) (*Result, error) {
	s.buf.ResetScan()
	if s.buf.Len() > 0 {
		res, err := e.tryMatch(s, armed)
		if err != nil {
			return e.fail(s, err)
		}
		if res != nil {
			return res, nil
		}
	}
	res := &Result{Outcome: EndOfFile, Session: s, Case: -1}
	for i, c := range armed {
		if c.Kind == KindEOF && c.appliesTo(s) {
			res.Case = i
			res.Value = c.Value
			break
		}
	}
	e.debugf("%s: eof", s.name)
	s.record(EndOfFile)
	return res, nil
}

func (e *Engine) timedOut(sessions []*Session, armed []armedCase) *Result {
	res := &Result{Outcome: TimedOut, Case: -1}
	if len(sessions) == 1 {
		res.Session = sessions[0]
	}
	for i, c := range armed {
		if c.Kind == KindTimeout {
			res.Case = i
			res.Value = c.Value
			break
		}
	}
	for _, s := range sessions {
		s.record(TimedOut)
	}
	e.debugf("expect: timeout")
	return res
}

// full hands the whole buffer to the caller and empties it
func (e *Engine) full(s *Session) *Result {
	data := s.buf.Bytes()
	res := &Result{
		Outcome: BufferFull,
		Session: s,
		Case:    -1,
		Match:   append([]byte(nil), data...),
		Start:   0,
		End:     len(data),
	}
	s.buf.Consume(len(data))
	s.record(BufferFull)
	e.debugf("%s: full buffer", s.name)
	return res
}

func (e *Engine) fail(s *Session, err error) (*Result, error) {
	if s != nil {
		s.record(Failed)
	}
	e.debugf("expect: %v", err)
	return &Result{Outcome: Failed, Session: s, Case: -1}, err
}
