package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// NodeConfig is one host block of an OpenSSH client config file
type NodeConfig struct {
	Host                  string
	Port                  int
	HostName              string
	User                  string
	IdentityFile          string
	StrictHostKeyChecking bool
	UserKnownHostsFile    string
}

// ParseSSHConfig decodes an OpenSSH client config. Wildcard host entries
// are skipped.
func ParseSSHConfig(r io.Reader) ([]NodeConfig, error) {
	nodes := []NodeConfig{}

	cfg, err := ssh_config.Decode(r)
	if err != nil {
		return nodes, err
	}
	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			if strings.ContainsAny(pattern.String(), "*?") {
				continue
			}

			nodeConf := NodeConfig{
				Host:                  pattern.String(),
				Port:                  defaultPort,
				StrictHostKeyChecking: true,
			}

			for _, node := range host.Nodes {
				kv, ok := node.(*ssh_config.KV)
				if !ok {
					continue
				}
				value := kv.Value

				switch strings.ToLower(kv.Key) {
				case "hostname":
					nodeConf.HostName = value
				case "port":
					port, err := strconv.Atoi(value)
					if err != nil {
						return nodes, fmt.Errorf("invalid value for Port: %s", value)
					}
					nodeConf.Port = port
				case "user":
					nodeConf.User = value
				case "identityfile":
					nodeConf.IdentityFile = value
				case "userknownhostsfile":
					nodeConf.UserKnownHostsFile = value
				case "stricthostkeychecking":
					switch strings.ToLower(value) {
					case "no", "false", "off":
						nodeConf.StrictHostKeyChecking = false
					case "yes", "true", "ask", "accept-new":
						nodeConf.StrictHostKeyChecking = true
					default:
						return nodes, fmt.Errorf("invalid value for StrictHostKeyChecking: %s", value)
					}
				}
			}
			nodes = append(nodes, nodeConf)
		}
	}

	return nodes, nil
}

func userSSHConfig() ([]NodeConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(home, ".ssh", "config"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseSSHConfig(f)
}

// LookupSSHConfig returns the ~/.ssh/config block for host, if any
func LookupSSHConfig(host string) (*NodeConfig, bool) {
	nodes, err := userSSHConfig()
	if err != nil {
		return nil, false
	}
	return findNode(nodes, host)
}

// SSHConfigHostNames lists the hosts declared in ~/.ssh/config
func SSHConfigHostNames() []string {
	nodes, _ := userSSHConfig()
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Host)
	}
	return names
}

func findNode(nodes []NodeConfig, host string) (*NodeConfig, bool) {
	for i := range nodes {
		if nodes[i].Host == host {
			return &nodes[i], true
		}
	}
	return nil, false
}
