// Package session drives the SSH/SFTP handshake as a sequence of lifecycle
// transitions and, on success, hands off a ready transfer engine. It is the
// only component that dials the network or negotiates credentials; once
// Connect returns, the transfer engine it returns owns the SFTP channel.
package session

import (
	"net"
	"strings"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/restic/minisftp/internal/debug"
	"github.com/restic/minisftp/internal/errors"
	"github.com/restic/minisftp/internal/lifecycle"
	"github.com/restic/minisftp/internal/transfer"
)

// Orchestrator drives one connection attempt through the lifecycle state
// machine, notifying an Observer on every accepted transition.
type Orchestrator struct {
	machine  *lifecycle.Machine
	observer lifecycle.Observer
}

// New constructs an Orchestrator in state Idle. observer may be
// lifecycle.NopObserver if the caller does not care to watch transitions.
func New(observer lifecycle.Observer) *Orchestrator {
	if observer == nil {
		observer = lifecycle.NopObserver
	}
	return &Orchestrator{
		machine:  lifecycle.NewMachine(),
		observer: observer,
	}
}

// State returns the orchestrator's current lifecycle snapshot.
func (o *Orchestrator) State() lifecycle.Snapshot { return o.machine.Current() }

// advance transitions the machine to next and notifies the observer. It
// panics if next is not reachable from the current state: per the design,
// an illegal transition here is a programming error in this package, not
// something a caller can trigger, so failing loudly beats silently
// swallowing it.
func (o *Orchestrator) advance(next lifecycle.State) lifecycle.Snapshot {
	prev := o.machine.Current()
	snap, ok := o.machine.TransitionTo(next)
	if !ok {
		panic(errors.InvalidTransition(prev.Current, next))
	}
	o.observer.OnStateChanged(prev, snap)
	return snap
}

// fail transitions into the Error case and notifies the observer before
// returning, so that by the time the caller sees the error, the observer
// has already seen the state reflect it.
func (o *Orchestrator) fail(message string) {
	prev := o.machine.Current()
	snap := o.machine.Fail(message)
	o.observer.OnStateChanged(prev, snap)
}

// Connect drives the full handshake: TCP connect, SSH version/key
// exchange, authentication, channel open, and SFTP subsystem negotiation.
// On success it returns a ready transfer.Engine; the engine owns the SFTP
// channel from that point on. On any failure the orchestrator transitions
// into Error{prior, message}, notifies the observer, and returns a typed
// error; it never retries.
func (o *Orchestrator) Connect(cfg Config) (*transfer.Engine, error) {
	if _, isKey := cfg.Auth.(PublicKey); isKey {
		// Declared unimplemented: fail before any network I/O, per design.
		o.fail("public key authentication is not implemented")
		return nil, errors.Authf("public key authentication is not implemented")
	}

	o.advance(lifecycle.TcpConnecting)
	conn, err := net.Dial("tcp", cfg.Addr())
	if err != nil {
		o.fail(err.Error())
		return nil, errors.Protocol(err)
	}

	// golang.org/x/crypto/ssh performs the banner exchange, key exchange,
	// and authentication as a single blocking call; the library gives us
	// no hook between those sub-phases. We advance through them as the
	// conceptual pipeline the design calls for, accepting that the states
	// between TcpConnecting and the NewClientConn result are reported
	// optimistically rather than observed individually. See DESIGN.md.
	o.advance(lifecycle.VersionExchange)
	o.advance(lifecycle.KeyExchange)
	o.advance(lifecycle.Encrypted)
	o.advance(lifecycle.Authenticating)

	clientConfig := &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            []ssh.AuthMethod{authMethod(cfg.Auth)},
		HostKeyCallback: cfg.hostKeyCallback(),
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, cfg.Addr(), clientConfig)
	if err != nil {
		_ = conn.Close()
		o.fail(err.Error())
		if isAuthFailure(err) {
			return nil, errors.Auth(err)
		}
		return nil, errors.Protocol(err)
	}
	o.advance(lifecycle.Authenticated)

	sshClient := ssh.NewClient(sshConn, chans, reqs)

	o.advance(lifecycle.ChannelOpening)
	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		o.fail(err.Error())
		return nil, errors.Protocol(err)
	}
	o.advance(lifecycle.SftpReady)

	debug.Log("sftp session ready for %s@%s", cfg.Username, cfg.Addr())

	return transfer.New(sftpClient, sshClient, o.machine, o.observer), nil
}

// authMethod converts the tagged Config.Auth variant into the one
// ssh.AuthMethod the orchestrator supports. PublicKey is rejected earlier,
// in Connect, before this is ever reached.
func authMethod(a AuthMethod) ssh.AuthMethod {
	switch v := a.(type) {
	case Password:
		return ssh.Password(v.Secret)
	default:
		panic("session: unsupported auth method reached authMethod")
	}
}

// isAuthFailure reports whether err is the error golang.org/x/crypto/ssh
// returns when every offered auth method was rejected, as opposed to a
// transport-level failure earlier in the handshake.
func isAuthFailure(err error) bool {
	return strings.Contains(err.Error(), "unable to authenticate")
}
