package main

import (
	"github.com/ferama/rexpect/cmd"
)

func main() {
	cmd.Execute()
}
