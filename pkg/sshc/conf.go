package sshc

import "github.com/ferama/rexpect/pkg/utils"

// JumpHostConf holds a jump host configuration
type JumpHostConf struct {
	// user@server:port
	URI      string `yaml:"uri"`
	Identity string `yaml:"identity"`
	Password string `yaml:"password"`
}

// SshClientConf holds the ssh client configuration
type SshClientConf struct {
	Identity   string `yaml:"identity"`
	Password   string `yaml:"password"`
	KnownHosts string `yaml:"known_hosts"`
	ServerURI  string `yaml:"server"`
	// it this value is true host keys are not checked
	// against known_hosts file
	Insecure bool `yaml:"insecure"`
	// AcceptNew adds unknown host keys to the known_hosts file instead
	// of refusing the connection
	AcceptNew bool            `yaml:"accept_new"`
	JumpHosts []*JumpHostConf `yaml:"jump_hosts"`
}

// GetServerEndpoint Builds a server endpoint object from the Server string
func (c *SshClientConf) GetServerEndpoint() (*utils.Endpoint, error) {
	return utils.NewEndpoint(c.ServerURI)
}
