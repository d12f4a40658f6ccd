//go:build !windows

package expect

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

func copyTermios(from, to *os.File) error {
	t, err := unix.IoctlGetTermios(int(from.Fd()), ioctlReadTermios)
	if err != nil {
		return fmt.Errorf("read termios of %s: %w", from.Name(), err)
	}
	if err := unix.IoctlSetTermios(int(to.Fd()), ioctlWriteTermios, t); err != nil {
		return fmt.Errorf("write termios of %s: %w", to.Name(), err)
	}
	return nil
}

// applyStty applies stty style words to the terminal f
func applyStty(f *os.File, words string) error {
	fd := int(f.Fd())
	t, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return fmt.Errorf("read termios of %s: %w", f.Name(), err)
	}
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return fmt.Errorf("read window size of %s: %w", f.Name(), err)
	}
	resized, err := stty(t, ws, words)
	if err != nil {
		return err
	}
	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, t); err != nil {
		return fmt.Errorf("write termios of %s: %w", f.Name(), err)
	}
	if resized {
		if err := unix.IoctlSetWinsize(fd, unix.TIOCSWINSZ, ws); err != nil {
			return fmt.Errorf("write window size of %s: %w", f.Name(), err)
		}
	}
	return nil
}

// stty edits t and ws according to words. It reports whether the window
// size changed.
func stty(t *unix.Termios, ws *unix.Winsize, words string) (bool, error) {
	resized := false
	fields := strings.Fields(words)
	for i := 0; i < len(fields); i++ {
		w := fields[i]
		switch w {
		case "raw", "-cooked":
			makeRaw(t)
		case "-raw", "cooked", "sane":
			makeSane(t)
		case "echo":
			t.Lflag |= unix.ECHO
		case "-echo":
			t.Lflag &^= unix.ECHO
		case "icanon":
			t.Lflag |= unix.ICANON
		case "-icanon":
			t.Lflag &^= unix.ICANON
		case "isig":
			t.Lflag |= unix.ISIG
		case "-isig":
			t.Lflag &^= unix.ISIG
		case "icrnl":
			t.Iflag |= unix.ICRNL
		case "-icrnl":
			t.Iflag &^= unix.ICRNL
		case "ixon":
			t.Iflag |= unix.IXON
		case "-ixon":
			t.Iflag &^= unix.IXON
		case "opost":
			t.Oflag |= unix.OPOST
		case "-opost":
			t.Oflag &^= unix.OPOST
		case "onlcr":
			t.Oflag |= unix.ONLCR
		case "-onlcr":
			t.Oflag &^= unix.ONLCR
		case "rows", "cols", "columns":
			if i+1 >= len(fields) {
				return resized, fmt.Errorf("stty: %s needs a value", w)
			}
			i++
			n, err := strconv.ParseUint(fields[i], 10, 16)
			if err != nil {
				return resized, fmt.Errorf("stty: bad %s value %q", w, fields[i])
			}
			if w == "rows" {
				ws.Row = uint16(n)
			} else {
				ws.Col = uint16(n)
			}
			resized = true
		default:
			return resized, fmt.Errorf("stty: unsupported setting %q", w)
		}
	}
	return resized, nil
}

func makeRaw(t *unix.Termios) {
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
}

func makeSane(t *unix.Termios) {
	t.Iflag |= unix.BRKINT | unix.ICRNL | unix.IXON
	t.Iflag &^= unix.IGNBRK | unix.INLCR | unix.IGNCR | unix.ISTRIP
	t.Oflag |= unix.OPOST | unix.ONLCR
	t.Lflag |= unix.ISIG | unix.ICANON | unix.IEXTEN | unix.ECHO | unix.ECHOE | unix.ECHOK
	t.Lflag &^= unix.ECHONL
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8 | unix.CREAD
	t.Cc[unix.VINTR] = 0x03
	t.Cc[unix.VQUIT] = 0x1c
	t.Cc[unix.VERASE] = 0x7f
	t.Cc[unix.VKILL] = 0x15
	t.Cc[unix.VEOF] = 0x04
	t.Cc[unix.VSUSP] = 0x1a
}

func redirectConsole(slave *os.File) error {
	return unix.IoctlSetInt(int(slave.Fd()), unix.TIOCCONS, 0)
}
