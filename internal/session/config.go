package session

import (
	"net"
	"strconv"

	"golang.org/x/crypto/ssh"
)

// AuthMethod is the tagged variant of credential the caller supplies:
// either a Password or a PublicKey. It is a closed set (only this package's
// two concrete types implement it) so a switch on the concrete type is
// exhaustive in practice even though Go cannot enforce that statically.
type AuthMethod interface {
	isAuthMethod()
}

// Password authenticates with a plaintext secret.
type Password struct {
	Secret string
}

func (Password) isAuthMethod() {}

// PublicKey authenticates with a private key read from KeyPath. The
// orchestrator declares this unimplemented: it fails synchronously, before
// any network I/O, with a KindAuth error. Kept as a distinct case so a
// future implementation has a concrete type to hang a real signer off of.
type PublicKey struct {
	KeyPath string
}

func (PublicKey) isAuthMethod() {}

// Config is the immutable input bundle handed to Orchestrator.Connect. It
// is consumed read-only: Connect never mutates it.
type Config struct {
	Host     string
	Port     uint16
	Username string
	Auth     AuthMethod

	// VerifyHostKey, if set, is consulted for the server's host key instead
	// of the default accept-any policy. See the design notes on host-key
	// verification: production callers should always set this.
	VerifyHostKey func(hostname string, key ssh.PublicKey) bool
}

// Addr returns the "host:port" dial target for this config.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}

func (c Config) hostKeyCallback() ssh.HostKeyCallback {
	if c.VerifyHostKey == nil {
		return ssh.InsecureIgnoreHostKey() //nolint:gosec // accept-any is the documented default; see design notes.
	}
	verify := c.VerifyHostKey
	return func(hostname string, _ net.Addr, key ssh.PublicKey) error {
		if verify(hostname, key) {
			return nil
		}
		return errHostKeyRejected
	}
}

var errHostKeyRejected = hostKeyRejectedError{}

type hostKeyRejectedError struct{}

func (hostKeyRejectedError) Error() string { return "host key rejected by verification callback" }
