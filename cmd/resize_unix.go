//go:build !windows

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"github.com/ferama/rexpect/pkg/expect"
)

// watchResize keeps the session pty size in sync with the terminal
func watchResize(s *expect.Session) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	go func() {
		for range ch {
			if err := pty.InheritSize(os.Stdin, s.File()); err != nil {
				log.Printf("error resizing pty: %s", err)
			}
		}
	}()
	ch <- syscall.SIGWINCH

	return func() {
		signal.Stop(ch)
		close(ch)
	}
}
