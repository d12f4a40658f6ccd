//go:build !windows

package expect

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// Spawn starts program with args inside a pty. The slave becomes the
// controlling terminal of the child, the returned session owns the master.
//
// Errors are *SpawnError values; no descriptor allocated here outlives a
// failed spawn.
func (e *Engine) Spawn(program string, args []string, opts *SpawnOptions) (*Session, error) {
	if opts == nil {
		opts = &SpawnOptions{}
	}
	fail := func(kind SpawnErrorKind, err error) (*Session, error) {
		e.debugf("spawn %s: %s: %v", program, kind, err)
		return nil, &SpawnError{Kind: kind, Program: program, Err: err}
	}

	master, slave := opts.Master, opts.Slave
	owned := master == nil && slave == nil
	if owned {
		var err error
		master, slave, err = pty.Open()
		if err != nil {
			return fail(SpawnPtyAllocation, err)
		}
	} else if master == nil || slave == nil {
		return fail(SpawnPtyAllocation, errors.New("both master and slave must be provided"))
	}
	release := func() {
		if owned {
			slave.Close()
			master.Close()
		}
	}

	if err := e.setupTty(master, slave, opts); err != nil {
		release()
		return fail(SpawnPtyAllocation, err)
	}

	cmd := exec.Command(program, args...)
	if cmd.Err != nil {
		release()
		return fail(SpawnExec, cmd.Err)
	}
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = opts.Env
	}
	cmd.Stdin = slave
	cmd.Stdout = slave
	cmd.Stderr = slave
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}

	if opts.Prelude != nil {
		if err := opts.Prelude(cmd); err != nil {
			release()
			return fail(SpawnExec, err)
		}
	}

	if opts.Console {
		if err := redirectConsole(slave); err != nil {
			e.debugf("spawn %s: console redirect: %v", program, err)
		}
	}

	if err := cmd.Start(); err != nil {
		release()
		if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.ENOMEM) {
			return fail(SpawnFork, err)
		}
		return fail(SpawnExec, err)
	}

	slaveName := slave.Name()
	if owned {
		slave.Close()
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(program)
	}
	s := newSession(e, name, master, nil)
	s.cmd = cmd
	s.slaveName = slaveName
	s.waitFn = waitCmd(cmd)
	s.statsMu.Lock()
	s.stats.Pid = cmd.Process.Pid
	s.statsMu.Unlock()

	e.debugf("spawn %s: pid %d on %s", program, cmd.Process.Pid, slaveName)
	return s, nil
}

// setupTty applies the terminal options to the slave before the child
// inherits it
func (e *Engine) setupTty(master, slave *os.File, opts *SpawnOptions) error {
	if opts.TtyCopy && term.IsTerminal(int(os.Stdin.Fd())) {
		if err := copyTermios(os.Stdin, slave); err != nil {
			return err
		}
		if err := pty.InheritSize(os.Stdin, master); err != nil {
			return err
		}
	}
	if opts.TtyInit {
		if err := applyStty(slave, "sane"); err != nil {
			return err
		}
	}
	if opts.SttyInit != "" {
		if err := applyStty(slave, opts.SttyInit); err != nil {
			return err
		}
	}
	if opts.Rows > 0 || opts.Cols > 0 {
		ws, err := pty.GetsizeFull(master)
		if err != nil {
			return err
		}
		if opts.Rows > 0 {
			ws.Rows = opts.Rows
		}
		if opts.Cols > 0 {
			ws.Cols = opts.Cols
		}
		if err := pty.Setsize(master, ws); err != nil {
			return err
		}
	}
	return nil
}
