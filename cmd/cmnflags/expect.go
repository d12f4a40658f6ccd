package cmnflags

import (
	"github.com/ferama/rexpect/pkg/script"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// AddExpectFlags adds the engine defaults flags to FlagSet
func AddExpectFlags(fs *pflag.FlagSet) {
	d := script.DefaultExpectConf()

	fs.DurationP("timeout", "t", d.Timeout, "default expect timeout. Negative waits forever, 0 polls once")
	fs.IntP("match-max", "m", d.MatchMax, "session buffer size in bytes")
	fs.Bool("keep-nulls", !d.RemoveNulls, "keep NUL bytes in the child output")
	fs.Bool("full-buffer", d.FullBuffer, "end expect calls when the buffer fills up instead of dropping old output")
	fs.Bool("no-log-user", !d.LogUser, "do not copy the session output to stdout")
	fs.BoolP("debug", "d", false, "log the engine internals")
}

// GetExpectConf builds an ExpectConf object from cmd
func GetExpectConf(cmd *cobra.Command) *script.ExpectConf {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	matchMax, _ := cmd.Flags().GetInt("match-max")
	keepNulls, _ := cmd.Flags().GetBool("keep-nulls")
	fullBuffer, _ := cmd.Flags().GetBool("full-buffer")
	noLogUser, _ := cmd.Flags().GetBool("no-log-user")
	debug, _ := cmd.Flags().GetBool("debug")

	return &script.ExpectConf{
		Timeout:     timeout,
		MatchMax:    matchMax,
		RemoveNulls: !keepNulls,
		FullBuffer:  fullBuffer,
		LogUser:     !noLogUser,
		Debug:       debug,
	}
}

// AddCaseFlags adds the one shot expect flags to FlagSet
func AddCaseFlags(fs *pflag.FlagSet) {
	fs.StringArrayP("expect", "e", []string{}, "a case as kind:pattern. Kinds are exact, glob, regexp, null, eof and timeout.\nCan be repeated, the first matching case wins")
	fs.StringArrayP("send", "S", []string{}, "text sent before expecting. Escapes like \\r and \\x03 are decoded.\nCan be repeated")
	fs.Bool("interact", false, "connect the terminal to the session once the expect call returned")
}
