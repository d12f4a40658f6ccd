package cmnflags

import (
	"os/user"
	"path/filepath"

	"github.com/ferama/rexpect/pkg/sshc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func sshFile(name string) string {
	usr, err := user.Current()
	if err != nil {
		return ""
	}
	return filepath.Join(usr.HomeDir, ".ssh", name)
}

// AddRemoteFlags adds the flags used to open the remote pty that the ssh
// command expects on
func AddRemoteFlags(fs *pflag.FlagSet) {
	fs.BoolP("insecure", "i", false,
		"skip the host key check before spawning the remote pty")
	fs.Bool("accept-new", false,
		"trust and record the key of a host seen for the first time")
	fs.StringP("jump-host", "j", "",
		"[user@]host[:port] to hop through before reaching the spawn host")
	fs.StringP("user-identity", "s", sshFile("id_rsa"),
		"private key used for both the jump host and the spawn host")
	fs.StringP("known-hosts", "k", sshFile("known_hosts"),
		"known_hosts file checked before spawning")
	fs.StringP("password", "p", "",
		"password login, tried when the key is refused")
}

// GetRemoteConf builds the connection settings for the host the remote
// session is spawned on
func GetRemoteConf(cmd *cobra.Command, host string) *sshc.SshClientConf {
	flags := cmd.Flags()
	identity, _ := flags.GetString("user-identity")
	jump, _ := flags.GetString("jump-host")

	conf := &sshc.SshClientConf{
		ServerURI: host,
		Identity:  identity,
		JumpHosts: []*sshc.JumpHostConf{},
	}
	conf.KnownHosts, _ = flags.GetString("known-hosts")
	conf.Password, _ = flags.GetString("password")
	conf.Insecure, _ = flags.GetBool("insecure")
	conf.AcceptNew, _ = flags.GetBool("accept-new")

	if jump != "" {
		conf.JumpHosts = append(conf.JumpHosts, &sshc.JumpHostConf{
			URI:      jump,
			Identity: identity,
		})
	}
	return conf
}
