package expect

import (
	"os"
	"os/exec"
)

// SpawnOptions customizes Spawn. The zero value allocates a new pty and
// leaves its terminal modes alone.
type SpawnOptions struct {
	// Name defaults to the program base name
	Name string
	Dir  string
	Env  []string

	// Master and Slave let the caller provide its own pty pair. When both
	// are nil a pair is allocated automatically. A caller provided slave is
	// left open in the parent.
	Master *os.File
	Slave  *os.File

	// TtyCopy copies the terminal modes and window size of the controlling
	// terminal (stdin) when there is one
	TtyCopy bool
	// TtyInit puts the slave in a sane cooked state
	TtyInit bool
	// SttyInit is applied after TtyCopy and TtyInit, e.g. "raw -echo"
	SttyInit string
	// Console redirects the system console output to the new pty
	Console bool

	Rows uint16
	Cols uint16

	// Prelude runs right before the process is started and may adjust
	// the command. An error aborts the spawn.
	Prelude func(cmd *exec.Cmd) error
}
