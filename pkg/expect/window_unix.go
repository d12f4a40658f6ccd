//go:build !windows

package expect

import (
	"os"

	"github.com/creack/pty"
)

// GetRows returns the number of rows of the terminal f
func GetRows(f *os.File) (int, error) {
	ws, err := pty.GetsizeFull(f)
	if err != nil {
		return 0, err
	}
	return int(ws.Rows), nil
}

// GetColumns returns the number of columns of the terminal f
func GetColumns(f *os.File) (int, error) {
	ws, err := pty.GetsizeFull(f)
	if err != nil {
		return 0, err
	}
	return int(ws.Cols), nil
}

// SetRows changes the number of rows of the terminal f. The foreground
// process group of the terminal gets a SIGWINCH.
func SetRows(f *os.File, rows int) error {
	return resize(f, func(ws *pty.Winsize) { ws.Rows = uint16(rows) })
}

// SetColumns changes the number of columns of the terminal f
func SetColumns(f *os.File, cols int) error {
	return resize(f, func(ws *pty.Winsize) { ws.Cols = uint16(cols) })
}

func resize(f *os.File, edit func(ws *pty.Winsize)) error {
	ws, err := pty.GetsizeFull(f)
	if err != nil {
		return err
	}
	edit(ws)
	return pty.Setsize(f, ws)
}

// Rows returns the number of rows of the session terminal
func (s *Session) Rows() (int, error) { return GetRows(s.file) }

// Columns returns the number of columns of the session terminal
func (s *Session) Columns() (int, error) { return GetColumns(s.file) }

// SetRows resizes the session terminal
func (s *Session) SetRows(rows int) error { return SetRows(s.file, rows) }

// SetColumns resizes the session terminal
func (s *Session) SetColumns(cols int) error { return SetColumns(s.file, cols) }
