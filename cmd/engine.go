package cmd

import (
	"os"
	"sync"
	"syscall"

	"github.com/ferama/rexpect/pkg/expect"
	"github.com/ferama/rexpect/pkg/logger"
	"github.com/ferama/rexpect/pkg/script"
)

var log = logger.NewLogger("[REXPECT] ", logger.Green)

// newEngine builds an engine whose reads are aborted by SIGINT and SIGTERM.
// The returned function releases the signal relay, it may be called more
// than once.
func newEngine(conf *script.ExpectConf) (*expect.Engine, func()) {
	cfg := conf.EngineConfig(nil)

	intr := expect.NewInterrupter()
	stop := intr.Notify(func(os.Signal) expect.Directive {
		return expect.Abort
	}, os.Interrupt, syscall.SIGTERM)
	cfg.Interrupter = intr

	var once sync.Once
	return expect.New(cfg), func() {
		once.Do(func() {
			stop()
			intr.Close()
		})
	}
}
