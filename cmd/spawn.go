package cmd

import (
	"os"

	"github.com/ferama/rexpect/cmd/cmnflags"
	"github.com/ferama/rexpect/pkg/expect"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(spawnCmd)

	cmnflags.AddExpectFlags(spawnCmd.Flags())
	cmnflags.AddCaseFlags(spawnCmd.Flags())
	spawnCmd.Flags().String("stty", "", "stty words applied to the pty before the program starts")
	spawnCmd.Flags().String("dir", "", "the program working directory")
}

var spawnCmd = &cobra.Command{
	Use:   "spawn [flags] -- program [args...]",
	Short: "Runs a program in a pty and expects on its output",
	Long: `Runs a program in a pty and expects on its output.
The exit code is the number of the matching case, or the expect return
code (timeout 254, eof 245, full buffer 251, error 255) when no case matched.`,
	Example: `
  # waits for the login prompt, then gives the terminal to the user
  $ rexpect spawn -e 'glob:*login: ' --interact -- /bin/login

  # checks a banner within 2 seconds
  $ rexpect spawn -t 2s -e 'exact:ready' -e 'regexp:[Ee]rror' -- ./server
	`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine, release := newEngine(cmnflags.GetExpectConf(cmd))
		defer release()

		stty, _ := cmd.Flags().GetString("stty")
		dir, _ := cmd.Flags().GetString("dir")

		s, err := engine.Spawn(args[0], args[1:], &expect.SpawnOptions{
			Dir:      dir,
			TtyCopy:  true,
			SttyInit: stty,
		})
		if err != nil {
			log.Fatalln(err)
		}

		code, err := oneShot(cmd, s)
		if err != nil {
			log.Println(err)
		}
		s.Close()
		if status, err := s.Wait(); err == nil {
			log.Printf("%s exited with code %d", s.Name(), status)
		}
		release()
		os.Exit(code)
	},
}
