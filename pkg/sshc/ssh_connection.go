package sshc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ferama/rexpect/pkg/logger"
	"github.com/ferama/rexpect/pkg/utils"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

var log = logger.NewLogger("[SSHC] ", logger.Green)

// The ssh connection available statuses
const (
	STATUS_CONNECTING = "Connecting..."
	STATUS_CONNECTED  = "Connected"
	STATUS_CLOSED     = "Closed"
)

// ErrUnknownHost is returned when the server key is not in known_hosts
// and AcceptNew is off
var ErrUnknownHost = errors.New("host is not trusted")

// SshConnection implements an ssh client
type SshConnection struct {
	username   string
	identity   string
	password   string
	knownHosts string

	serverEndpoint *utils.Endpoint

	insecure  bool
	acceptNew bool
	jumpHosts []*JumpHostConf

	keepAliveInterval time.Duration
	dialTimeout       time.Duration

	Client *ssh.Client

	connectionStatus   string
	connectionStatusMU sync.Mutex
	stopKeepAlive      chan struct{}
}

// NewSshConnection creates a new SshConnection instance. Hosts found in
// ~/.ssh/config are resolved the way the ssh command does.
func NewSshConnection(conf *SshClientConf) (*SshConnection, error) {
	parsed, err := utils.ParseSSHUrl(conf.ServerURI)
	if err != nil {
		return nil, err
	}
	endpoint := &utils.Endpoint{Host: parsed.Host, Port: parsed.Port}

	c := &SshConnection{
		username:       parsed.Username,
		identity:       conf.Identity,
		password:       conf.Password,
		knownHosts:     conf.KnownHosts,
		serverEndpoint: endpoint,
		insecure:       conf.Insecure,
		acceptNew:      conf.AcceptNew,
		jumpHosts:      conf.JumpHosts,

		keepAliveInterval: 5 * time.Second,
		dialTimeout:       15 * time.Second,
		connectionStatus:  STATUS_CLOSED,
	}

	if node, ok := utils.LookupSSHConfig(parsed.Host); ok {
		c.applyNode(node, conf)
	}

	if c.knownHosts == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		c.knownHosts = filepath.Join(home, ".ssh", "known_hosts")
	} else if c.knownHosts, err = utils.ExpandUserHome(c.knownHosts); err != nil {
		return nil, err
	}
	return c, nil
}

// applyNode fills what the uri and conf left unset from an ssh config block
func (s *SshConnection) applyNode(node *utils.NodeConfig, conf *SshClientConf) {
	log.Printf("using ssh config for host %s", node.Host)
	if node.HostName != "" {
		s.serverEndpoint.Host = node.HostName
	}
	if s.serverEndpoint.Port == 22 && node.Port != 0 {
		s.serverEndpoint.Port = node.Port
	}
	if node.User != "" && !strings.Contains(conf.ServerURI, "@") {
		s.username = node.User
	}
	if s.identity == "" {
		s.identity = node.IdentityFile
	}
	if s.knownHosts == "" {
		s.knownHosts = node.UserKnownHostsFile
	}
	if !node.StrictHostKeyChecking {
		s.insecure = true
	}
}

// Connect dials the server, through the jump hosts if any, and starts the
// keep alive loop
func (s *SshConnection) Connect() error {
	s.setStatus(STATUS_CONNECTING)
	sshConfig, err := s.clientConfig(s.username, s.identity, s.password)
	if err != nil {
		s.setStatus(STATUS_CLOSED)
		return err
	}

	var client *ssh.Client
	if len(s.jumpHosts) != 0 {
		client, err = s.jumpHostConnect(s.serverEndpoint, sshConfig)
	} else {
		client, err = s.directConnect(s.serverEndpoint, sshConfig)
	}
	if err != nil {
		s.setStatus(STATUS_CLOSED)
		return err
	}
	s.Client = client
	s.stopKeepAlive = make(chan struct{})
	s.setStatus(STATUS_CONNECTED)
	go s.keepAlive(client, s.stopKeepAlive)
	return nil
}

// Close closes the ssh conn instance client connection
func (s *SshConnection) Close() {
	s.connectionStatusMU.Lock()
	defer s.connectionStatusMU.Unlock()
	if s.connectionStatus == STATUS_CLOSED {
		return
	}
	if s.stopKeepAlive != nil {
		close(s.stopKeepAlive)
		s.stopKeepAlive = nil
	}
	if s.Client != nil {
		s.Client.Close()
	}
	s.connectionStatus = STATUS_CLOSED
}

// GetConnectionStatus returns the current connection status as a string
func (s *SshConnection) GetConnectionStatus() string {
	s.connectionStatusMU.Lock()
	defer s.connectionStatusMU.Unlock()
	return s.connectionStatus
}

// ServerURI returns user@host:port as actually dialed
func (s *SshConnection) ServerURI() string {
	return fmt.Sprintf("%s@%s", s.username, s.serverEndpoint.String())
}

func (s *SshConnection) setStatus(status string) {
	s.connectionStatusMU.Lock()
	s.connectionStatus = status
	s.connectionStatusMU.Unlock()
}

func (s *SshConnection) keepAlive(client *ssh.Client, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-time.After(s.keepAliveInterval):
		}
		if _, _, err := client.SendRequest("keepalive@rexpect", true, nil); err != nil {
			log.Printf("error while sending keep alive %s", err)
			return
		}
	}
}

func (s *SshConnection) clientConfig(user, identity, password string) (*ssh.ClientConfig, error) {
	authMethods := []ssh.AuthMethod{}

	keysAuth, err := utils.LoadIdentityFile(identity)
	if err == nil {
		authMethods = append(authMethods, keysAuth)
	} else {
		if password == "" {
			return nil, fmt.Errorf("no usable auth method defined: %w", err)
		}
		authMethods = append(authMethods, ssh.Password(password))
	}
	return &ssh.ClientConfig{
		User:            user,
		Auth:            authMethods,
		HostKeyCallback: s.verifyHostCallback(),
		Timeout:         s.dialTimeout,
	}, nil
}

func (s *SshConnection) verifyHostCallback() ssh.HostKeyCallback {
	if s.insecure {
		return ssh.InsecureIgnoreHostKey()
	}
	return func(host string, remote net.Addr, key ssh.PublicKey) error {
		clb, err := knownhosts.New(s.knownHosts)
		if err != nil {
			log.Printf("error while parsing 'known_hosts' file: %s: %v", s.knownHosts, err)
			f, fErr := os.OpenFile(s.knownHosts, os.O_CREATE, 0600)
			if fErr != nil {
				return fErr
			}
			f.Close()
			clb, err = knownhosts.New(s.knownHosts)
			if err != nil {
				return err
			}
		}
		var keyErr *knownhosts.KeyError
		e := clb(host, remote, key)
		if errors.As(e, &keyErr) && len(keyErr.Want) > 0 {
			log.Printf("ERROR: %v is not a key of %s, either a man in the middle attack or %s host pub key was changed.", key, host, host)
			return e
		} else if errors.As(e, &keyErr) && len(keyErr.Want) == 0 {
			if !s.acceptNew {
				return fmt.Errorf("%w: %s", ErrUnknownHost, host)
			}
			log.Printf("WARNING: %s is not trusted, adding this key: \n\n%s\n\nto known_hosts file.", host, utils.SerializePublicKey(key))
			return utils.AddHostKeyToKnownHosts(host, key, s.knownHosts)
		}
		return e
	}
}

func (s *SshConnection) jumpHostConnect(
	server *utils.Endpoint,
	sshConfig *ssh.ClientConfig,
) (*ssh.Client, error) {

	var jhClient *ssh.Client

	// traverse all the hops
	for idx, jh := range s.jumpHosts {
		parsed, err := utils.ParseSSHUrl(jh.URI)
		if err != nil {
			return nil, err
		}
		hop := &utils.Endpoint{
			Host: parsed.Host,
			Port: parsed.Port,
		}

		identity := jh.Identity
		if identity == "" {
			identity = s.identity
		}
		config, err := s.clientConfig(parsed.Username, identity, jh.Password)
		if err != nil {
			return nil, err
		}
		log.Printf("connecting to hop %s@%s", parsed.Username, hop.String())

		// if it is the first hop, use ssh Dial to create the first client
		if idx == 0 {
			jhClient, err = ssh.Dial("tcp", hop.String(), config)
			if err != nil {
				log.Printf("dial INTO remote server error. %s", err)
				return nil, err
			}
		} else {
			jhConn, err := jhClient.Dial("tcp", hop.String())
			if err != nil {
				return nil, err
			}
			ncc, chans, reqs, err := ssh.NewClientConn(jhConn, hop.String(), config)
			if err != nil {
				return nil, err
			}
			jhClient = ssh.NewClient(ncc, chans, reqs)
		}
		log.Printf("reached the jump host %s@%s", parsed.Username, hop.String())
	}

	// now I'm ready to reach the final hop, the server
	log.Printf("connecting to %s@%s", sshConfig.User, server.String())
	jhConn, err := jhClient.Dial("tcp", server.String())
	if err != nil {
		return nil, err
	}
	ncc, chans, reqs, err := ssh.NewClientConn(jhConn, server.String(), sshConfig)
	if err != nil {
		return nil, err
	}
	return ssh.NewClient(ncc, chans, reqs), nil
}

func (s *SshConnection) directConnect(
	server *utils.Endpoint,
	sshConfig *ssh.ClientConfig,
) (*ssh.Client, error) {

	log.Printf("connecting to %s", server.String())
	client, err := ssh.Dial("tcp", server.String(), sshConfig)
	if err != nil {
		log.Printf("dial INTO remote server error. %s", err)
		return nil, err
	}
	log.Println("connected to remote server.")
	return client, nil
}
