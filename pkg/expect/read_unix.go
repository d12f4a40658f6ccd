//go:build !windows

package expect

import (
	"errors"
	"io"
	"time"

	"golang.org/x/sys/unix"
)

func wakePipe() (int, int, error) {
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return -1, -1, err
	}
	for _, fd := range p {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(p[0])
			unix.Close(p[1])
			return -1, -1, err
		}
	}
	return p[0], p[1], nil
}

// wake writes one byte. A full pipe already guarantees a wake up.
func wake(fd int) {
	unix.Write(fd, []byte{1})
}

func drain(fd int) {
	var buf [64]byte
	for {
		n, err := unix.Read(fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if n <= 0 || err != nil {
			return
		}
	}
}

func closeFd(fd int) error {
	return unix.Close(fd)
}

// pollTimeout converts the time left before deadline into a poll(2)
// timeout, rounding up so the call never returns before the deadline.
func pollTimeout(deadline time.Time, forever bool) int {
	if forever {
		return -1
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0
	}
	ms := int((left + time.Millisecond - 1) / time.Millisecond)
	return ms
}

// waitReadable blocks until one of fds is readable, the deadline passes or
// w is interrupted. Readable descriptors always win over a pending
// interrupt, so bytes that are already available are delivered first.
//
// EINTR and Restart directives re-issue the wait with whatever is left of
// the deadline. Abort returns ErrInterrupted.
func waitReadable(fds []int, w *waiter, deadline time.Time, forever bool) ([]bool, error) {
	pfds := make([]unix.PollFd, 0, len(fds)+1)
	for _, fd := range fds {
		pfds = append(pfds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	}
	if w != nil {
		pfds = append(pfds, unix.PollFd{Fd: int32(w.rfd), Events: unix.POLLIN})
	}
	ready := make([]bool, len(fds))

	for {
		for i := range pfds {
			pfds[i].Revents = 0
		}
		n, err := unix.Poll(pfds, pollTimeout(deadline, forever))
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return nil, &IOError{Op: "poll", Err: err}
		}

		got := false
		for i := range fds {
			if pfds[i].Revents != 0 {
				ready[i] = true
				got = true
			}
		}
		if got {
			return ready, nil
		}

		if w != nil && pfds[len(fds)].Revents != 0 {
			if w.take() == Abort {
				return nil, ErrInterrupted
			}
			continue
		}

		if n == 0 && !forever && !time.Now().Before(deadline) {
			return nil, errTimeout
		}
	}
}

// readFd performs one read. A pty master reports a hung up slave with EIO,
// which is the EOF of the child.
func readFd(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		switch {
		case err == nil && n > 0:
			return n, nil
		case err == nil:
			return 0, io.EOF
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return 0, errNoData
		case errors.Is(err, unix.EIO):
			return 0, io.EOF
		}
		return 0, err
	}
}
