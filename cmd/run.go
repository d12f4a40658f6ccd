package cmd

import (
	"os"

	"github.com/ferama/rexpect/pkg/conf"
	"github.com/ferama/rexpect/pkg/expect"
	"github.com/ferama/rexpect/pkg/script"
	"github.com/ferama/rexpect/pkg/sshc"
	"github.com/ferama/rexpect/pkg/web"
	rootapi "github.com/ferama/rexpect/pkg/web/api/root"
	"github.com/ferama/rexpect/pkg/worker"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("dev", "D", false, "run the web api in dev mode")
	runCmd.Flags().BoolP("progress", "P", false, "show a progress bar per script instead of the sessions output")
}

var runCmd = &cobra.Command{
	Use:   "run config_file_path.yaml",
	Short: "Runs the scripts of a config file.",
	Long:  "Runs the scripts of a config file.",
	Args:  cobra.MinimumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return []string{"yaml"}, cobra.ShellCompDirectiveFilterFileExt
	},
	Run: func(cmd *cobra.Command, args []string) {
		conf, err := conf.LoadConfig(args[0])
		if err != nil {
			log.Fatalln(err)
		}

		showProgress, _ := cmd.Flags().GetBool("progress")
		if showProgress {
			conf.Expect.LogUser = false
		}
		engine, release := newEngine(conf.Expect)
		defer release()

		var remote script.RemoteSpawnFunc
		if conf.SshClient != nil {
			sshConn, err := sshc.NewSshConnection(conf.SshClient)
			if err != nil {
				log.Fatalln(err)
			}
			if err := sshConn.Connect(); err != nil {
				log.Fatalln(err)
			}
			defer sshConn.Close()

			remote = func(e *expect.Engine, command, name string) (*expect.Session, error) {
				return sshc.RemoteSpawn(e, sshConn, command, &sshc.RemoteSpawnOptions{Name: name})
			}
		}

		if conf.Web != nil {
			dev, _ := cmd.Flags().GetBool("dev")
			info := &rootapi.Info{
				Version:     Version,
				Timeout:     conf.Expect.Timeout.String(),
				MatchMax:    conf.Expect.MatchMax,
				RemoveNulls: conf.Expect.RemoveNulls,
				FullBuffer:  conf.Expect.FullBuffer,
				Scripts:     len(conf.Scripts),
			}
			if conf.SshClient != nil {
				info.SshClient = conf.SshClient.ServerURI
			}
			go func() {
				if err := web.StartServer(dev, info, conf.Web); err != nil {
					log.Fatalln(err)
				}
			}()
		}

		var progress *mpb.Progress
		if showProgress {
			progress = mpb.New(mpb.WithWidth(60), mpb.WithOutput(os.Stderr))
		}

		pool := worker.NewPool(conf.Parallel)
		for _, sc := range conf.Scripts {
			runner := script.NewRunner(sc, engine, remote)
			if progress == nil {
				pool.Enqueue(runner.Run)
				continue
			}
			bar := addScriptBar(progress, runner)
			pool.Enqueue(func() error {
				err := runner.Run()
				if err != nil {
					bar.Abort(false)
				} else {
					bar.SetTotal(-1, true)
				}
				return err
			})
		}
		err = pool.Wait()
		pool.Stop()
		if progress != nil {
			progress.Wait()
		}
		if err != nil {
			log.Println(err)
			release()
			os.Exit(1)
		}
	},
}

func addScriptBar(progress *mpb.Progress, runner *script.Runner) *mpb.Bar {
	bar := progress.AddBar(int64(runner.Steps()),
		mpb.PrependDecorators(
			decor.Name(color.BlueString("▶ %s ", runner.Name())),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("%d / %d steps "),
			decor.Percentage(decor.WC{W: 5}),
		),
	)
	runner.OnStep(func(done int) {
		bar.SetCurrent(int64(done))
	})
	return bar
}
