package utils

import (
	"fmt"
	"net"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultPort = 22
	defaultHost = "127.0.0.1"
)

// SshUrl is a parsed user@host:port string
type SshUrl struct {
	Username string
	Host     string
	Port     int
}

// ParseSSHUrl build an SshUrl object from an url string. The current user
// and port 22 are used when missing.
func ParseSSHUrl(url string) (*SshUrl, error) {
	parts := strings.Split(url, "@")

	conf := &SshUrl{}

	var hostPort string

	if len(parts) == 2 {
		conf.Username = parts[0]
		hostPort = parts[1]
	} else {
		usr, err := user.Current()
		if err != nil {
			return nil, err
		}
		conf.Username = usr.Username
		hostPort = parts[0]
	}

	host, port, err := net.SplitHostPort(hostPort)
	if err != nil {
		// error could be "missing port in address" so try again appending defaultPort
		host, port, err = net.SplitHostPort(fmt.Sprintf("%s:%d", hostPort, defaultPort))
		if err != nil {
			return nil, fmt.Errorf("bad ssh url %q: %w", url, err)
		}
	}

	conf.Host = defaultHost
	if host != "" {
		conf.Host = host

		ip := net.ParseIP(host)
		if ip != nil { // it could be a domain name
			if ip.To4() == nil {
				conf.Host = fmt.Sprintf("[%s]", host)
			}
		}
	}

	conf.Port = defaultPort
	if port != "" {
		port, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("bad ssh url port %q: %w", url, err)
		}
		conf.Port = port
	}

	return conf, nil
}

// ExpandUserHome resolve paths like "~/.ssh/id_rsa"
func ExpandUserHome(path string) (string, error) {
	// supports paths like "~/.ssh/id_rsa"
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(usr.HomeDir, path[2:]), nil
}

// DecodeEscapes interprets the backslash escapes scripts use to send
// control characters: \r \n \t \a \b \e \0, \xHH and \\.
func DecodeEscapes(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			return "", fmt.Errorf("trailing backslash in %q", s)
		}
		switch s[i] {
		case 'r':
			b.WriteByte('\r')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'e':
			b.WriteByte(0x1b)
		case '0':
			b.WriteByte(0)
		case '\\':
			b.WriteByte('\\')
		case 'x':
			if i+3 > len(s) {
				return "", fmt.Errorf("short \\x escape in %q", s)
			}
			v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("bad \\x escape in %q", s)
			}
			b.WriteByte(byte(v))
			i += 2
		default:
			return "", fmt.Errorf("unknown escape \\%c in %q", s[i], s)
		}
	}
	return b.String(), nil
}
