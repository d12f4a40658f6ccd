package utils

import (
	"strings"
	"testing"
)

const sshConfig = `
Host *
    ServerAliveInterval 60

Host test1
    HostName 127.0.0.1
    User user1

Host test2
    HostName myhost.link
    Port 2222
    User user2
    IdentityFile ~/identities/myhost

Host test3
    HostName myhost.link
    Port 2222
    User user2
    StrictHostKeyChecking no
    UserKnownHostsFile /dev/null
`

func TestSSHConfigParser(t *testing.T) {
	nodes, err := ParseSSHConfig(strings.NewReader(sshConfig))
	if err != nil {
		t.Fatalf("Error parsing SSH config: %v", err)
	}

	expected := []NodeConfig{
		{
			Host:                  "test1",
			Port:                  22,
			HostName:              "127.0.0.1",
			User:                  "user1",
			StrictHostKeyChecking: true,
		},
		{
			Host:                  "test2",
			Port:                  2222,
			HostName:              "myhost.link",
			User:                  "user2",
			IdentityFile:          "~/identities/myhost",
			StrictHostKeyChecking: true,
		},
		{
			Host:                  "test3",
			Port:                  2222,
			HostName:              "myhost.link",
			User:                  "user2",
			StrictHostKeyChecking: false,
			UserKnownHostsFile:    "/dev/null",
		},
	}
	if len(nodes) != len(expected) {
		t.Fatalf("expected %d nodes, got %d", len(expected), len(nodes))
	}
	for i, node := range nodes {
		if node != expected[i] {
			t.Errorf("node %d: expected %+v, got %+v", i, expected[i], node)
		}
	}

	if n, ok := findNode(nodes, "test2"); !ok || n.Port != 2222 {
		t.Fatal("test2 not found")
	}
	if _, ok := findNode(nodes, "missing"); ok {
		t.Fatal("unexpected node")
	}
}

func TestSSHConfigBadPort(t *testing.T) {
	_, err := ParseSSHConfig(strings.NewReader("Host x\n    Port abc\n"))
	if err == nil {
		t.Fatal("bad port accepted")
	}
}
