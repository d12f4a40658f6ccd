package expect

import (
	"os"
	"time"
)

// Spawn is not available on windows
func (e *Engine) Spawn(program string, args []string, opts *SpawnOptions) (*Session, error) {
	return nil, &SpawnError{Kind: SpawnPtyAllocation, Program: program, Err: ErrUnsupported}
}

func GetRows(f *os.File) (int, error) { return 0, ErrUnsupported }
func GetColumns(f *os.File) (int, error) { return 0, ErrUnsupported }
func SetRows(f *os.File, rows int) error { return ErrUnsupported }
func SetColumns(f *os.File, cols int) error { return ErrUnsupported }

func (s *Session) Rows() (int, error) { return 0, ErrUnsupported }
func (s *Session) Columns() (int, error) { return 0, ErrUnsupported }
func (s *Session) SetRows(rows int) error { return ErrUnsupported }
func (s *Session) SetColumns(cols int) error { return ErrUnsupported }

func wakePipe() (int, int, error) { return -1, -1, ErrUnsupported }
func wake(fd int) {}
func drain(fd int) {}
func closeFd(fd int) error { return nil }

func waitReadable(fds []int, w *waiter, deadline time.Time, forever bool) ([]bool, error) {
	return nil, ErrUnsupported
}

func readFd(fd int, p []byte) (int, error) { return 0, ErrUnsupported }
