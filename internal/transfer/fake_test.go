package transfer

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/pkg/sftp"
)

// fakeFileInfo is a minimal os.FileInfo the fakes below hand back from
// ReadDir/Lstat. sys is nil by default, so remoteFileEntry degrades to
// absent Perms/UID/GID/Mtime exactly as it would for a server that omits
// FileStat; tests that need a specific remote mtime set it explicitly.
type fakeFileInfo struct {
	name  string
	size  int64
	isDir bool
	sys   any
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return f.size }
func (f fakeFileInfo) Mode() os.FileMode  { return 0o644 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return f.isDir }
func (f fakeFileInfo) Sys() any           { return f.sys }

// fakeRemoteFile is an in-memory remoteFile backed by a byte slice, letting
// get_test.go/put_test.go drive Engine.Get/Put without a real SFTP server.
type fakeRemoteFile struct {
	buf        []byte
	pos        int64
	appendMode bool
	closed     bool
}

func newFakeRemoteFile(data []byte) *fakeRemoteFile {
	return &fakeRemoteFile{buf: append([]byte(nil), data...)}
}

func (f *fakeRemoteFile) Read(p []byte) (int, error) {
	if f.pos >= int64(len(f.buf)) {
		return 0, io.EOF
	}
	n := copy(p, f.buf[f.pos:])
	f.pos += int64(n)
	return n, nil
}

// Write mimics a real server's OPEN|APPEND semantics: when appendMode is
// set, writes always land at the current end of the file regardless of
// pos, matching the design's "WRITE|APPEND for resume opens" contract.
func (f *fakeRemoteFile) Write(p []byte) (int, error) {
	if f.appendMode {
		f.buf = append(f.buf, p...)
		f.pos = int64(len(f.buf))
		return len(p), nil
	}
	if f.pos < int64(len(f.buf)) {
		f.buf = f.buf[:f.pos]
	}
	f.buf = append(f.buf, p...)
	f.pos += int64(len(p))
	return len(p), nil
}

func (f *fakeRemoteFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		f.pos = offset
	case io.SeekCurrent:
		f.pos += offset
	case io.SeekEnd:
		f.pos = int64(len(f.buf)) + offset
	}
	return f.pos, nil
}

func (f *fakeRemoteFile) Close() error {
	f.closed = true
	return nil
}

func (f *fakeRemoteFile) contents() []byte {
	return bytes.Clone(f.buf)
}

// fakeSftpFS is an in-memory sftpFS: a single flat namespace of named byte
// buffers, enough to drive Ls/Mkdir/Rm/Canonicalize and Get/Put without a
// live server.
type fakeSftpFS struct {
	files  map[string][]byte
	dirs   map[string]bool
	real   map[string]string
	mtimes map[string]int64
}

func newFakeSftpFS() *fakeSftpFS {
	return &fakeSftpFS{
		files:  map[string][]byte{},
		dirs:   map[string]bool{},
		real:   map[string]string{},
		mtimes: map[string]int64{},
	}
}

func (f *fakeSftpFS) sysFor(path string) any {
	mtime, ok := f.mtimes[path]
	if !ok {
		return nil
	}
	return &sftp.FileStat{Mtime: uint32(mtime)} //nolint:gosec // test fixture, values are small
}

func (f *fakeSftpFS) ReadDir(path string) ([]os.FileInfo, error) {
	var infos []os.FileInfo
	for name, data := range f.files {
		infos = append(infos, fakeFileInfo{name: name, size: int64(len(data)), sys: f.sysFor(name)})
	}
	for name := range f.dirs {
		infos = append(infos, fakeFileInfo{name: name, isDir: true})
	}
	return infos, nil
}

func (f *fakeSftpFS) Lstat(path string) (os.FileInfo, error) {
	if data, ok := f.files[path]; ok {
		return fakeFileInfo{name: path, size: int64(len(data)), sys: f.sysFor(path)}, nil
	}
	if f.dirs[path] {
		return fakeFileInfo{name: path, isDir: true}, nil
	}
	return nil, os.ErrNotExist
}

func (f *fakeSftpFS) Mkdir(path string) error {
	f.dirs[path] = true
	return nil
}

func (f *fakeSftpFS) Remove(path string) error {
	if _, ok := f.files[path]; !ok {
		return os.ErrNotExist
	}
	delete(f.files, path)
	return nil
}

func (f *fakeSftpFS) RealPath(path string) (string, error) {
	if resolved, ok := f.real[path]; ok {
		return resolved, nil
	}
	return path, nil
}

func (f *fakeSftpFS) OpenFile(path string, flags int) (remoteFile, error) {
	data, exists := f.files[path]
	if !exists && flags&os.O_CREATE == 0 {
		return nil, os.ErrNotExist
	}
	if flags&os.O_TRUNC != 0 {
		data = nil
	}

	rf := newFakeRemoteFile(data)
	rf.appendMode = flags&os.O_APPEND != 0
	if rf.appendMode {
		rf.pos = int64(len(rf.buf))
	}
	f.files[path] = data // ensure the key exists even before a write lands
	return &commitOnCloseFile{fakeRemoteFile: rf, fs: f, path: path}, nil
}

func (f *fakeSftpFS) Close() error { return nil }

// commitOnCloseFile writes the in-memory buffer back into the owning
// fakeSftpFS on Close, mimicking a real server's durable state after CLOSE.
type commitOnCloseFile struct {
	*fakeRemoteFile
	fs   *fakeSftpFS
	path string
}

func (c *commitOnCloseFile) Close() error {
	c.fs.files[c.path] = c.contents()
	return c.fakeRemoteFile.Close()
}
