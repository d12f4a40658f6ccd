package script

import (
	"errors"
	"fmt"
	"time"

	"github.com/ferama/rexpect/pkg/expect"
	"github.com/ferama/rexpect/pkg/logger"
	"github.com/ferama/rexpect/pkg/utils"
)

var log = logger.NewLogger("[SCRIPT] ", logger.Blue)

// maxContinues bounds the iterations of an expect step driven by continue
// cases
const maxContinues = 1000

// ErrCaseFailed is returned when a case marked with fail matched
var ErrCaseFailed = errors.New("failing case matched")

// RemoteSpawnFunc starts command on a remote host. Scripts without one
// reject remote steps.
type RemoteSpawnFunc func(e *expect.Engine, command string, name string) (*expect.Session, error)

// Runner executes the steps of a script in order. It owns the sessions it
// spawns and is not safe for concurrent use.
type Runner struct {
	name   string
	engine *expect.Engine
	steps  []*Step
	remote RemoteSpawnFunc

	current  *expect.Session
	sessions map[string]*expect.Session
	ids      map[*expect.Session]int
	last     *expect.Result
	value    int

	onStep func(done int)
}

// NewRunner creates a Runner. remote may be nil.
func NewRunner(conf *ScriptConf, engine *expect.Engine, remote RemoteSpawnFunc) *Runner {
	return &Runner{
		name:     conf.Name,
		engine:   engine,
		steps:    conf.Steps,
		remote:   remote,
		sessions: make(map[string]*expect.Session),
		ids:      make(map[*expect.Session]int),
	}
}

// Name returns the script name
func (r *Runner) Name() string { return r.name }

// Steps returns the number of steps of the script
func (r *Runner) Steps() int { return len(r.steps) }

// OnStep registers fn to be called after every completed step with the
// number of steps done so far
func (r *Runner) OnStep(fn func(done int)) { r.onStep = fn }

// Last returns the result of the last expect step
func (r *Runner) Last() *expect.Result { return r.last }

// Value returns the value of the case that ended the last expect step
func (r *Runner) Value() int { return r.value }

// Run executes the whole script. Sessions still open at the end are
// closed and reaped.
func (r *Runner) Run() error {
	defer r.cleanup()

	for i, step := range r.steps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("script %s: step %d: %w", r.name, i+1, err)
		}
	}
	for i, step := range r.steps {
		if err := r.runStep(step); err != nil {
			return fmt.Errorf("script %s: step %d: %w", r.name, i+1, err)
		}
		if r.onStep != nil {
			r.onStep(i + 1)
		}
	}
	log.Printf("script %s: done", r.name)
	return nil
}

func (r *Runner) runStep(step *Step) error {
	switch {
	case len(step.Spawn) > 0:
		s, err := r.engine.Spawn(step.Spawn[0], step.Spawn[1:], r.spawnOptions(step))
		if err != nil {
			return err
		}
		r.register(step, s)
	case step.Popen != "":
		s, err := r.engine.Popen(step.Popen, r.spawnOptions(step))
		if err != nil {
			return err
		}
		r.register(step, s)
	case step.Remote != nil:
		if r.remote == nil {
			return errors.New("remote step needs an sshclient section")
		}
		s, err := r.remote(r.engine, *step.Remote, step.Name)
		if err != nil {
			return err
		}
		r.register(step, s)
	case step.Use != "":
		s, ok := r.sessions[step.Use]
		if !ok {
			return fmt.Errorf("unknown session %q", step.Use)
		}
		r.current = s
	case step.Send != nil:
		return r.send(*step.Send)
	case step.SendLine != nil:
		return r.send(*step.SendLine + "\r")
	case step.Expect != nil:
		return r.expect(step.Expect)
	case step.Close:
		s, err := r.session()
		if err != nil {
			return err
		}
		r.unregister(s)
		return s.Close()
	case step.Wait:
		s, err := r.session()
		if err != nil {
			return err
		}
		code, err := s.Wait()
		if err != nil {
			return err
		}
		log.Printf("%s: exited with code %d", s.Name(), code)
	case step.Sleep > 0:
		time.Sleep(step.Sleep)
	}
	return nil
}

func (r *Runner) spawnOptions(step *Step) *expect.SpawnOptions {
	return &expect.SpawnOptions{
		Name:     step.Name,
		Dir:      step.Dir,
		SttyInit: step.Stty,
	}
}

func (r *Runner) register(step *Step, s *expect.Session) {
	if step.MatchMax > 0 {
		s.SetMatchMax(step.MatchMax)
	}
	if step.Timeout != nil {
		s.SetTimeout(*step.Timeout)
	}
	if step.RemoveNulls != nil {
		s.SetRemoveNulls(*step.RemoveNulls)
	}
	if step.FullBuffer != nil {
		s.SetFullBuffer(*step.FullBuffer)
	}
	if step.LogUser != nil {
		s.SetLogging(*step.LogUser)
	}

	name := step.Name
	if name == "" {
		name = s.Name()
	}
	if old, ok := r.sessions[name]; ok {
		log.Printf("session name %s reused, the previous one is still open", name)
		delete(r.sessions, name)
		r.sessions[fmt.Sprintf("%s#%d", name, r.ids[old])] = old
	}
	r.sessions[name] = s
	r.ids[s] = SessionRegistry().Add(s)
	r.current = s
	log.Printf("spawned %s (pid %d)", name, s.Pid())
}

func (r *Runner) unregister(s *expect.Session) {
	if id, ok := r.ids[s]; ok {
		SessionRegistry().Delete(id)
		delete(r.ids, s)
	}
}

func (r *Runner) session() (*expect.Session, error) {
	if r.current == nil {
		return nil, errors.New("no current session")
	}
	return r.current, nil
}

func (r *Runner) send(text string) error {
	s, err := r.session()
	if err != nil {
		return err
	}
	decoded, err := utils.DecodeEscapes(text)
	if err != nil {
		return err
	}
	return s.Send(decoded)
}

func (r *Runner) expect(step *ExpectStep) error {
	sessions := []*expect.Session{}
	for _, name := range step.Sessions {
		s, ok := r.sessions[name]
		if !ok {
			return fmt.Errorf("unknown session %q", name)
		}
		sessions = append(sessions, s)
	}
	if len(sessions) == 0 {
		s, err := r.session()
		if err != nil {
			return err
		}
		sessions = append(sessions, s)
	}

	cases := make([]expect.Case, len(step.Cases))
	for i, c := range step.Cases {
		var on *expect.Session
		if c.Session != "" {
			s, ok := r.sessions[c.Session]
			if !ok {
				return fmt.Errorf("unknown session %q", c.Session)
			}
			on = s
		}
		cases[i] = c.Case(i, on)
	}

	timeout := sessions[0].Timeout()
	if step.Timeout != nil {
		timeout = *step.Timeout
	}

	for range maxContinues {
		res, err := r.engine.ExpectAny(timeout, sessions, cases...)
		if err != nil {
			return err
		}
		r.last = res
		if res.Session != nil {
			r.current = res.Session
		}

		if res.Case < 0 {
			switch res.Outcome {
			case expect.TimedOut:
				if step.AllowTimeout {
					r.value = res.Outcome.Code()
					return nil
				}
			case expect.EndOfFile:
				if step.AllowEOF {
					r.value = res.Outcome.Code()
					return nil
				}
			}
			return fmt.Errorf("expect ended with %s", res.Outcome)
		}

		c := step.Cases[res.Case]
		r.value = c.Value
		if c.Send != nil {
			if err := r.send(*c.Send); err != nil {
				return err
			}
		}
		if c.Fail {
			return fmt.Errorf("%w: case %d (%q)", ErrCaseFailed, res.Case+1, res.Match)
		}
		if !c.Continue {
			return nil
		}
	}
	return fmt.Errorf("expect continued more than %d times", maxContinues)
}

func (r *Runner) cleanup() {
	for _, s := range r.sessions {
		r.unregister(s)
		s.Close()
		s.Kill()
		s.Wait()
	}
}
