package sshc

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ferama/rexpect/pkg/expect"
	"golang.org/x/crypto/ssh"
)

// writeClientKey stores a fresh private key and returns its path and
// public part
func writeClientKey(t *testing.T) (string, ssh.PublicKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "client")
	data := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	pub, err := ssh.NewPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	return path, pub
}

// startLoginServer runs an ssh server whose only program prints a login
// prompt, greets the user and exits
func startLoginServer(t *testing.T, authorized ssh.PublicKey) string {
	t.Helper()
	hostKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := ssh.NewSignerFromKey(hostKey)
	if err != nil {
		t.Fatal(err)
	}
	config := &ssh.ServerConfig{
		PublicKeyCallback: func(c ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if bytes.Equal(key.Marshal(), authorized.Marshal()) {
				return nil, nil
			}
			return nil, errors.New("unknown key")
		},
	}
	config.AddHostKey(signer)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })

	go func() {
		for {
			nConn, err := l.Accept()
			if err != nil {
				return
			}
			go serveConn(nConn, config)
		}
	}()
	return l.Addr().String()
}

func serveConn(nConn net.Conn, config *ssh.ServerConfig) {
	_, chans, reqs, err := ssh.NewServerConn(nConn, config)
	if err != nil {
		return
	}
	go ssh.DiscardRequests(reqs)
	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			newCh.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		ch, requests, err := newCh.Accept()
		if err != nil {
			continue
		}
		go func() {
			for req := range requests {
				switch req.Type {
				case "pty-req":
					req.Reply(true, nil)
				case "exec", "shell":
					req.Reply(true, nil)
					go runLogin(ch)
				default:
					req.Reply(false, nil)
				}
			}
		}()
	}
}

func runLogin(ch ssh.Channel) {
	defer ch.Close()
	ch.Write([]byte("Welcome\r\nlogin: "))
	var name []byte
	b := make([]byte, 1)
	for {
		if _, err := ch.Read(b); err != nil {
			return
		}
		if b[0] == '\r' || b[0] == '\n' {
			break
		}
		name = append(name, b[0])
	}
	fmt.Fprintf(ch, "hello %s\r\n", name)
	status := struct{ Status uint32 }{0}
	ch.SendRequest("exit-status", false, ssh.Marshal(&status))
}

func TestRemoteSpawn(t *testing.T) {
	identity, pub := writeClientKey(t)
	addr := startLoginServer(t, pub)
	knownHosts := filepath.Join(t.TempDir(), "known_hosts")

	conf := &SshClientConf{
		Identity:   identity,
		KnownHosts: knownHosts,
		ServerURI:  "tester@" + addr,
		AcceptNew:  true,
	}
	conn, err := NewSshConnection(conf)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.Connect(); err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if conn.GetConnectionStatus() != STATUS_CONNECTED {
		t.Fatalf("status %s", conn.GetConnectionStatus())
	}

	cfg := expect.DefaultConfig()
	cfg.Timeout = 5 * time.Second
	e := expect.New(cfg)

	s, err := RemoteSpawn(e, conn, "login", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	res, err := s.Expect(expect.Glob("login: ", 1))
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != expect.Matched || res.Value != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if err := s.SendLine("bob"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Expect(expect.Exact("hello bob", nil)); err != nil {
		t.Fatal(err)
	}
	res, err = s.Expect(expect.EOF("bye"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != expect.EndOfFile || res.Value != "bye" {
		t.Fatalf("unexpected result %+v", res)
	}
	if code, err := s.Wait(); code != 0 || err != nil {
		t.Fatalf("exit %d: %v", code, err)
	}

	// the host key was recorded
	data, err := os.ReadFile(knownHosts)
	if err != nil || len(data) == 0 {
		t.Fatalf("known_hosts not updated: %v", err)
	}
	conf.AcceptNew = false
	again, err := NewSshConnection(conf)
	if err != nil {
		t.Fatal(err)
	}
	if err := again.Connect(); err != nil {
		t.Fatalf("known host refused: %v", err)
	}
	again.Close()
	if again.GetConnectionStatus() != STATUS_CLOSED {
		t.Fail()
	}
}

func TestUnknownHostRefused(t *testing.T) {
	identity, pub := writeClientKey(t)
	addr := startLoginServer(t, pub)

	conn, err := NewSshConnection(&SshClientConf{
		Identity:   identity,
		KnownHosts: filepath.Join(t.TempDir(), "known_hosts"),
		ServerURI:  "tester@" + addr,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = conn.Connect()
	if err == nil {
		conn.Close()
		t.Fatal("unknown host accepted")
	}
	if !strings.Contains(err.Error(), ErrUnknownHost.Error()) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestNoAuthMethod(t *testing.T) {
	conn, err := NewSshConnection(&SshClientConf{
		Identity:   filepath.Join(t.TempDir(), "missing"),
		KnownHosts: filepath.Join(t.TempDir(), "known_hosts"),
		ServerURI:  "tester@127.0.0.1:1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.Connect(); err == nil {
		t.Fatal("connected without credentials")
	}
}

func TestRemoteSpawnNotConnected(t *testing.T) {
	conn, err := NewSshConnection(&SshClientConf{ServerURI: "tester@127.0.0.1:1", KnownHosts: "/dev/null"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := RemoteSpawn(expect.New(expect.DefaultConfig()), conn, "", nil); err == nil {
		t.Fatal("spawned without a connection")
	}
}
