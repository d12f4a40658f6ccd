package cmd

import (
	"os"
	"strings"

	"github.com/ferama/rexpect/cmd/cmnflags"
	"github.com/ferama/rexpect/pkg/autocomplete"
	"github.com/ferama/rexpect/pkg/sshc"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(sshCmd)

	cmnflags.AddRemoteFlags(sshCmd.Flags())
	cmnflags.AddExpectFlags(sshCmd.Flags())
	cmnflags.AddCaseFlags(sshCmd.Flags())
	sshCmd.Flags().Bool("echo", false, "turn on the remote tty echo")
}

var sshCmd = &cobra.Command{
	Use:   "ssh [user@]host[:port] [command]",
	Short: "Runs a command in a remote pty and expects on its output",
	Long: `Runs a command (or a login shell) in a remote pty and expects on its output.
Exit codes are the same as the spawn ones.`,
	Example: `
  # waits for the shell prompt and runs uptime
  $ rexpect ssh -e 'regexp:[$#] $' -S 'uptime\r' -e 'exact:load average' user@server

  # runs a command through a jump host
  $ rexpect ssh -j user@bastion -e eof user@internal:2222 'ls /tmp'
	`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: autocomplete.Host(),
	Run: func(cmd *cobra.Command, args []string) {
		conn, err := sshc.NewSshConnection(cmnflags.GetRemoteConf(cmd, args[0]))
		if err != nil {
			log.Fatalln(err)
		}
		if err := conn.Connect(); err != nil {
			log.Fatalln(err)
		}
		defer conn.Close()

		engine, release := newEngine(cmnflags.GetExpectConf(cmd))
		defer release()

		echo, _ := cmd.Flags().GetBool("echo")
		opts := &sshc.RemoteSpawnOptions{Echo: echo}
		if cols, rows, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			opts.Rows, opts.Cols = rows, cols
		}

		s, err := sshc.RemoteSpawn(engine, conn, strings.Join(args[1:], " "), opts)
		if err != nil {
			log.Fatalln(err)
		}

		code, err := oneShot(cmd, s)
		if err != nil {
			log.Println(err)
		}
		s.Close()
		if status, err := s.Wait(); err == nil {
			log.Printf("remote command exited with code %d", status)
		}
		release()
		conn.Close()
		os.Exit(code)
	},
}
