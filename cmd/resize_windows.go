package cmd

import "github.com/ferama/rexpect/pkg/expect"

func watchResize(s *expect.Session) func() { return func() {} }
