package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/term"
)

// LoadIdentityFile reads a private key file and returns it as an ssh auth
// method. Passphrase protected keys are unlocked prompting on the terminal.
func LoadIdentityFile(file string) (ssh.AuthMethod, error) {
	path, err := ExpandUserHome(file)
	if err != nil {
		return nil, err
	}

	// no path is set, try with a reasonable default
	if path == "" {
		usr, err := user.Current()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(usr.HomeDir, ".ssh", "id_rsa")
	}

	buffer, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read SSH identity key file %s: %w", path, err)
	}

	key, err := ssh.ParsePrivateKey(buffer)
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) {
		key, err = parseWithPassphrase(path, buffer)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse SSH identity key file %s: %w", path, err)
	}
	return ssh.PublicKeys(key), nil
}

func parseWithPassphrase(path string, buffer []byte) (ssh.Signer, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("key is encrypted and there is no terminal to ask the passphrase")
	}
	fmt.Printf("Enter passphrase for %s: ", path)
	password, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return nil, err
	}
	return ssh.ParsePrivateKeyWithPassphrase(buffer, password)
}

// AddHostKeyToKnownHosts updates user known_hosts file adding the host key
func AddHostKeyToKnownHosts(host string, key ssh.PublicKey, knownHostsPath string) error {
	f, err := os.OpenFile(knownHostsPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	knownHosts := knownhosts.Normalize(host)
	out := fmt.Sprintf("%s\n", knownhosts.Line([]string{knownHosts}, key))
	_, err = f.WriteString(out)
	return err
}

// SerializePublicKey converts an ssh.PublicKey to printable bas64 string
func SerializePublicKey(k ssh.PublicKey) string {
	return k.Type() + " " + base64.StdEncoding.EncodeToString(k.Marshal())
}
