package utils

import (
	"os/user"
	"testing"
)

func TestSSHUrlParser(t *testing.T) {
	currentUser, _ := user.Current()

	list := []string{
		"user@192.168.0.1:22",
		"192.168.0.1",
		"192.168.0.1:2222",
		":22",
		"user-name@192.168.0.1:2222",
		"user@dm1.dm2.dm3.com",
		"user@dm1.dm2.dm3.com:2222",
	}

	expected := []SshUrl{
		{Username: "user", Host: "192.168.0.1", Port: 22},
		{Username: currentUser.Username, Host: "192.168.0.1", Port: 22},
		{Username: currentUser.Username, Host: "192.168.0.1", Port: 2222},
		{Username: currentUser.Username, Host: "127.0.0.1", Port: 22},
		{Username: "user-name", Host: "192.168.0.1", Port: 2222},
		{Username: "user", Host: "dm1.dm2.dm3.com", Port: 22},
		{Username: "user", Host: "dm1.dm2.dm3.com", Port: 2222},
	}
	for idx, s := range list {
		parsed, err := ParseSSHUrl(s)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if *parsed != expected[idx] {
			t.Fatalf("%s: expected %+v got %+v", s, expected[idx], *parsed)
		}
	}
}

func TestExpandHome(t *testing.T) {
	usr, _ := user.Current()
	p, err := ExpandUserHome("~/.ssh")
	if err != nil {
		t.Fail()
	}
	if p != usr.HomeDir+"/.ssh" {
		t.Fatalf("got %s", p)
	}
	p, err = ExpandUserHome("/app/.ssh")
	if err != nil || p != "/app/.ssh" {
		t.Fail()
	}
}

func TestDecodeEscapes(t *testing.T) {
	tests := map[string]string{
		`plain`:       "plain",
		`yes\r`:       "yes\r",
		`a\tb\nc`:     "a\tb\nc",
		`\x1b[A`:      "\x1b[A",
		`\e[B`:        "\x1b[B",
		`nul\0`:       "nul\x00",
		`back\\slash`: `back\slash`,
		`\x03`:        "\x03",
	}
	for in, want := range tests {
		got, err := DecodeEscapes(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if got != want {
			t.Errorf("%s: got %q want %q", in, got, want)
		}
	}

	for _, bad := range []string{`\`, `\q`, `\x1`, `\xzz`} {
		if _, err := DecodeEscapes(bad); err == nil {
			t.Errorf("%s accepted", bad)
		}
	}
}
