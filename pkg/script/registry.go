package script

import (
	"sync"

	"github.com/ferama/rexpect/pkg/expect"
	"github.com/ferama/rexpect/pkg/registry"
)

var (
	once     sync.Once
	instance *registry.Registry[*expect.Session]
)

// SessionRegistry returns a singleton instance of Registry holding the
// sessions of the running scripts
func SessionRegistry() *registry.Registry[*expect.Session] {
	once.Do(func() {
		instance = registry.NewRegistry[*expect.Session]()
	})

	return instance
}
