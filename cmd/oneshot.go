package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/ferama/rexpect/pkg/expect"
	"github.com/ferama/rexpect/pkg/rio"
	"github.com/ferama/rexpect/pkg/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// parseCase parses a kind:pattern flag value. The case value is index+1
// so that it can be used as the process exit code.
func parseCase(index int, s string) (expect.Case, error) {
	kind, pattern, hasPattern := strings.Cut(s, ":")
	value := index + 1

	switch kind {
	case "exact", "glob", "regexp":
		if !hasPattern || pattern == "" {
			return expect.Case{}, fmt.Errorf("%s case needs a pattern", kind)
		}
		decoded, err := utils.DecodeEscapes(pattern)
		if err != nil {
			return expect.Case{}, err
		}
		switch kind {
		case "exact":
			return expect.Exact(decoded, value), nil
		case "glob":
			return expect.Glob(decoded, value), nil
		}
		return expect.Regexp(decoded, value), nil
	case "null", "eof", "timeout":
		if hasPattern {
			return expect.Case{}, fmt.Errorf("%s case takes no pattern", kind)
		}
		switch kind {
		case "null":
			return expect.Null(value), nil
		case "eof":
			return expect.EOF(value), nil
		}
		return expect.Timeout(value), nil
	}
	return expect.Case{}, fmt.Errorf("unknown case kind %q", kind)
}

// exitCode maps a result to a process exit code: the case value on a
// match, the classic negative code truncated to a byte otherwise.
func exitCode(res *expect.Result) int {
	if v, ok := res.Value.(int); ok && res.Case >= 0 {
		return v
	}
	return res.Outcome.Code() & 0xff
}

func outcomeString(o expect.Outcome) string {
	switch o {
	case expect.Matched:
		return color.GreenString(o.String())
	case expect.TimedOut, expect.EndOfFile:
		return color.YellowString(o.String())
	}
	return color.RedString(o.String())
}

// oneShot sends the --send texts, runs a single expect call with the
// --expect cases and optionally hands the session to the user. It returns
// the exit code.
func oneShot(cmd *cobra.Command, s *expect.Session) (int, error) {
	sends, _ := cmd.Flags().GetStringArray("send")
	exps, _ := cmd.Flags().GetStringArray("expect")
	interactive, _ := cmd.Flags().GetBool("interact")

	cases := make([]expect.Case, 0, len(exps))
	for i, e := range exps {
		c, err := parseCase(i, e)
		if err != nil {
			return 1, err
		}
		cases = append(cases, c)
	}

	for _, text := range sends {
		decoded, err := utils.DecodeEscapes(text)
		if err != nil {
			return 1, err
		}
		if err := s.Send(decoded); err != nil {
			return 1, err
		}
	}

	code := 0
	if len(cases) > 0 || !interactive {
		if len(cases) == 0 {
			cases = append(cases, expect.EOF(0))
		}
		res, err := s.Expect(cases...)
		if err != nil && !errors.Is(err, expect.ErrInterrupted) {
			return 1, err
		}
		log.Printf("%s: %s (case %d)", s.Name(), outcomeString(res.Outcome), res.Case+1)
		code = exitCode(res)
		if res.Outcome == expect.EndOfFile || res.Outcome == expect.Interrupted {
			return code, nil
		}
	}

	if interactive {
		if err := interact(s); err != nil {
			return 1, err
		}
	}
	return code, nil
}

// interact connects the terminal to the session until the session output
// ends
func interact(s *expect.Session) error {
	if !s.Logging() {
		os.Stdout.Write(s.Buffer())
	}

	stdin := int(os.Stdin.Fd())
	if term.IsTerminal(stdin) {
		oldState, err := term.MakeRaw(stdin)
		if err != nil {
			return err
		}
		defer term.Restore(stdin, oldState)

		if s.SlaveName() != "" {
			defer watchResize(s)()
		}
	}

	stats, err := rio.Splice(struct {
		io.Reader
		io.Writer
	}{s.File(), s}, os.Stdin, os.Stdout)
	log.Printf("%s: interact ended, %d bytes sent, %d received", s.Name(), stats.Sent, stats.Received)
	return err
}
