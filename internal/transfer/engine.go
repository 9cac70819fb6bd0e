// Package transfer implements the resumable, cancellable file-transfer
// engine that runs over an established SFTP session: directory listing,
// metadata operations, and a FileZilla-style skip/resume/overwrite Get/Put.
package transfer

import (
	"io"
	"os"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/restic/minisftp/internal/debug"
	"github.com/restic/minisftp/internal/errors"
	"github.com/restic/minisftp/internal/lifecycle"
)

// chunkSize is the fixed unit Get and Put stream in. It is a transfer-engine
// constant, not a tunable.
const chunkSize = 64 * 1024

// sftpFS is the slice of *sftp.Client's behaviour the engine depends on,
// narrowed so tests can substitute a fake in place of a real server.
type sftpFS interface {
	ReadDir(path string) ([]os.FileInfo, error)
	Lstat(path string) (os.FileInfo, error)
	Mkdir(path string) error
	Remove(path string) error
	RealPath(path string) (string, error)
	OpenFile(path string, flags int) (remoteFile, error)
	Close() error
}

// remoteFile is the slice of *sftp.File's behaviour Get/Put depend on. A
// real *sftp.File satisfies it without any adapter.
type remoteFile interface {
	io.Reader
	io.Writer
	io.Closer
	Seek(offset int64, whence int) (int64, error)
}

// clientAdapter narrows a *sftp.Client down to sftpFS. Every method but
// OpenFile promotes unchanged; OpenFile needs a thin wrapper because
// *sftp.Client returns the concrete *sftp.File rather than the remoteFile
// interface this package tests against.
type clientAdapter struct {
	*sftp.Client
}

func (c clientAdapter) OpenFile(path string, flags int) (remoteFile, error) {
	f, err := c.Client.OpenFile(path, flags)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Engine is the handle a Session Orchestrator hands back once the SFTP
// subsystem is ready. It owns the SFTP channel exclusively for its
// lifetime; a single Engine is not safe for concurrent calls, since its
// operations share the underlying request/response stream.
type Engine struct {
	fs       sftpFS
	ssh      *ssh.Client
	machine  *lifecycle.Machine
	observer lifecycle.Observer
}

// New wraps an established SFTP client into a Transfer Engine. machine and
// observer are the same instances the Session Orchestrator drove during the
// handshake, so Close can continue reporting through them.
func New(sftpClient *sftp.Client, sshClient *ssh.Client, machine *lifecycle.Machine, observer lifecycle.Observer) *Engine {
	if observer == nil {
		observer = lifecycle.NopObserver
	}
	return &Engine{
		fs:       clientAdapter{sftpClient},
		ssh:      sshClient,
		machine:  machine,
		observer: observer,
	}
}

// Ls reads a remote directory, drops "." and "..", and returns entries
// sorted with directories first and lexicographic order within each class.
func (e *Engine) Ls(path string) ([]FileEntry, error) {
	infos, err := e.fs.ReadDir(path)
	if err != nil {
		return nil, errors.Protocol(err)
	}

	entries := make([]FileEntry, 0, len(infos))
	for _, fi := range infos {
		name := fi.Name()
		if name == "." || name == ".." {
			continue
		}
		entries = append(entries, remoteFileEntry(name, fi))
	}
	SortEntries(entries)
	return entries, nil
}

// Mkdir creates a remote directory.
func (e *Engine) Mkdir(path string) error {
	if err := e.fs.Mkdir(path); err != nil {
		return errors.Protocol(err)
	}
	return nil
}

// Rm removes a remote file. Removing directories is out of scope.
func (e *Engine) Rm(path string) error {
	if err := e.fs.Remove(path); err != nil {
		return errors.Protocol(err)
	}
	return nil
}

// Canonicalize resolves a possibly-relative, possibly-symlinked remote path
// to its absolute form via SFTP REALPATH.
func (e *Engine) Canonicalize(path string) (string, error) {
	resolved, err := e.fs.RealPath(path)
	if err != nil {
		return "", errors.Protocol(err)
	}
	return resolved, nil
}

// Close drives the lifecycle from its current state through Disconnecting
// to Disconnected and releases the SFTP channel and the underlying SSH
// connection. It reports whichever close error surfaces first but always
// attempts both releases.
func (e *Engine) Close() error {
	e.advance(lifecycle.Disconnecting)

	closeErr := e.fs.Close()
	sshErr := e.ssh.Close()

	e.advance(lifecycle.Disconnected)

	debug.Log("transfer engine closed")

	if closeErr != nil {
		return errors.Protocol(closeErr)
	}
	if sshErr != nil {
		return errors.Protocol(sshErr)
	}
	return nil
}

// advance transitions the shared machine and notifies the observer. Both
// targets it's ever called with (Disconnecting, Disconnected) are universal
// or pipeline edges from any state reachable here, so a false return would
// be a programming error rather than a runtime condition to handle.
func (e *Engine) advance(next lifecycle.State) {
	prev := e.machine.Current()
	snap, ok := e.machine.TransitionTo(next)
	if !ok {
		panic(errors.InvalidTransition(prev.Current, next))
	}
	e.observer.OnStateChanged(prev, snap)
}
