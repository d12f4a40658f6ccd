package sshc

import (
	"errors"
	"io"
	"os"

	"github.com/ferama/rexpect/pkg/expect"
	"golang.org/x/crypto/ssh"
)

// RemoteSpawnOptions customizes the pty requested on the server
type RemoteSpawnOptions struct {
	Name string
	// Term defaults to $TERM, then xterm
	Term string
	Rows int
	Cols int
	// Echo turns the remote tty echo on
	Echo bool
}

// RemoteSpawn runs command (or a login shell when command is empty) inside
// a remote pty and returns it as an expect session.
//
// The channel output is copied into a pipe whose read end becomes the
// session descriptor, so the expect loop polls it like a local pty. The
// pipe write end is closed once the remote command exits, which the
// session reports as EOF.
func RemoteSpawn(e *expect.Engine, conn *SshConnection, command string, opts *RemoteSpawnOptions) (*expect.Session, error) {
	if conn.Client == nil {
		return nil, errors.New("ssh connection is not established")
	}
	if opts == nil {
		opts = &RemoteSpawnOptions{}
	}

	session, err := conn.Client.NewSession()
	if err != nil {
		return nil, err
	}

	terminal := opts.Term
	if terminal == "" {
		terminal = os.Getenv("TERM")
	}
	if terminal == "" {
		terminal = "xterm"
	}
	rows, cols := opts.Rows, opts.Cols
	if rows == 0 {
		rows = 24
	}
	if cols == 0 {
		cols = 80
	}
	var echo uint32
	if opts.Echo {
		echo = 1
	}
	modes := ssh.TerminalModes{
		ssh.ECHO:          echo,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := session.RequestPty(terminal, rows, cols, modes); err != nil {
		session.Close()
		return nil, err
	}

	r, w, err := os.Pipe()
	if err != nil {
		session.Close()
		return nil, err
	}
	session.Stdout = w
	session.Stderr = w
	stdin, err := session.StdinPipe()
	if err != nil {
		r.Close()
		w.Close()
		session.Close()
		return nil, err
	}

	if command == "" {
		err = session.Shell()
	} else {
		err = session.Start(command)
	}
	if err != nil {
		r.Close()
		w.Close()
		session.Close()
		return nil, err
	}

	done := make(chan struct{})
	var code int
	var waitErr error
	go func() {
		defer close(done)
		err := session.Wait()
		w.Close()
		var exitErr *ssh.ExitError
		switch {
		case err == nil:
		case errors.As(err, &exitErr):
			code = exitErr.ExitStatus()
		default:
			code, waitErr = -1, err
		}
	}()

	name := opts.Name
	if name == "" {
		name = conn.ServerURI()
	}
	log.Printf("remote spawn on %s: %q", conn.ServerURI(), command)
	return e.Attach(r, &expect.AttachOptions{
		Name:    name,
		Writer:  stdin,
		Closers: []io.Closer{stdin, session},
		Wait: func() (int, error) {
			<-done
			return code, waitErr
		},
	})
}
