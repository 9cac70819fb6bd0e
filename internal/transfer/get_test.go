package transfer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestGetFreshDownloadCompletes(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "out.bin")

	data := bytes.Repeat([]byte{0xAB}, 200000)
	fs := newFakeSftpFS()
	fs.files["remote.bin"] = data

	e := newTestEngine(fs)

	var callbacks int
	var lastTransferred uint64
	result, err := e.Get("remote.bin", local, func(p ProgressInfo) {
		callbacks++
		if p.Transferred <= lastTransferred && callbacks > 1 {
			t.Fatalf("transferred did not strictly increase: %d then %d", lastTransferred, p.Transferred)
		}
		lastTransferred = p.Transferred
	}, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if result.Kind != Completed {
		t.Fatalf("result.Kind = %v, want Completed", result.Kind)
	}
	if result.BytesTransferred != uint64(len(data)) {
		t.Fatalf("BytesTransferred = %d, want %d", result.BytesTransferred, len(data))
	}
	if callbacks < 4 {
		t.Fatalf("callbacks = %d, want at least ceil(200000/65536)=4", callbacks)
	}

	got, err := os.ReadFile(local)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("downloaded contents do not match the source")
	}
}

func TestGetResumePartialDownload(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "out.bin")

	data := bytes.Repeat([]byte{0xCD}, 200000)
	if err := os.WriteFile(local, data[:131072], 0o644); err != nil {
		t.Fatalf("seeding partial local file: %v", err)
	}

	fs := newFakeSftpFS()
	fs.files["remote.bin"] = data
	e := newTestEngine(fs)

	result, err := e.Get("remote.bin", local, nil, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if result.Kind != Resumed {
		t.Fatalf("result.Kind = %v, want Resumed", result.Kind)
	}
	if result.BytesTransferred != uint64(len(data)) {
		t.Fatalf("BytesTransferred = %d, want %d", result.BytesTransferred, len(data))
	}

	got, err := os.ReadFile(local)
	if err != nil {
		t.Fatalf("reading resumed file: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("resumed contents do not match the source")
	}
}

func TestGetSkipsWhenSizeAndMtimeMatch(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "out.bin")
	data := []byte("identical contents")
	if err := os.WriteFile(local, data, 0o644); err != nil {
		t.Fatalf("seeding local file: %v", err)
	}
	info, err := os.Stat(local)
	if err != nil {
		t.Fatalf("stat local file: %v", err)
	}

	fs := newFakeSftpFS()
	fs.files["remote.bin"] = data
	fs.mtimes["remote.bin"] = info.ModTime().Unix()
	e := newTestEngine(fs)

	callbacks := 0
	result, err := e.Get("remote.bin", local, func(ProgressInfo) { callbacks++ }, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if result.Kind != Skipped {
		t.Fatalf("result.Kind = %v, want Skipped", result.Kind)
	}
	if callbacks != 0 {
		t.Fatalf("callbacks = %d, want 0 for a skipped transfer", callbacks)
	}
}

func TestGetOverwritesWhenSizeMatchesButMtimeDiffers(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "out.bin")
	data := []byte("same size, different mtime")
	if err := os.WriteFile(local, data, 0o644); err != nil {
		t.Fatalf("seeding local file: %v", err)
	}

	fs := newFakeSftpFS()
	fs.files["remote.bin"] = data
	fs.mtimes["remote.bin"] = 1 // deliberately different from the local file's real mtime
	e := newTestEngine(fs)

	result, err := e.Get("remote.bin", local, nil, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if result.Kind != Completed {
		t.Fatalf("result.Kind = %v, want Completed (overwrite), not %v", Completed, result.Kind)
	}
}

func TestGetZeroByteFile(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "empty.bin")

	fs := newFakeSftpFS()
	fs.files["remote.bin"] = []byte{}
	// A remote mtime is needed: an absent local file stats as size 0,
	// mtime 0, which would match a zero-byte remote with no mtime and skip.
	fs.mtimes["remote.bin"] = 1
	e := newTestEngine(fs)

	callbacks := 0
	result, err := e.Get("remote.bin", local, func(ProgressInfo) { callbacks++ }, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if result.Kind != Completed || result.BytesTransferred != 0 {
		t.Fatalf("result = %+v, want Completed(0)", result)
	}
	if callbacks > 1 {
		t.Fatalf("callbacks = %d, want zero or one for a zero-byte file", callbacks)
	}
}

func TestGetCancellationStopsBetweenChunks(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "out.bin")

	data := bytes.Repeat([]byte{0xEF}, 10*1024*1024)
	fs := newFakeSftpFS()
	fs.files["remote.bin"] = data
	e := newTestEngine(fs)

	cancel := NewCancellationToken()
	result, err := e.Get("remote.bin", local, func(p ProgressInfo) {
		if p.Transferred >= chunkSize {
			cancel.Cancel()
		}
	}, cancel)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if result.Kind != Cancelled {
		t.Fatalf("result.Kind = %v, want Cancelled", result.Kind)
	}
	if result.BytesTransferred < chunkSize || result.BytesTransferred >= uint64(len(data)) {
		t.Fatalf("BytesTransferred = %d, want in [%d, %d)", result.BytesTransferred, chunkSize, len(data))
	}

	info, err := os.Stat(local)
	if err != nil {
		t.Fatalf("stat local file: %v", err)
	}
	if uint64(info.Size()) != result.BytesTransferred { //nolint:gosec // sizes are never negative
		t.Fatalf("local file size = %d, want %d", info.Size(), result.BytesTransferred)
	}
}
