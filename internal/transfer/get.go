package transfer

import (
	"io"
	"os"
	"time"

	"github.com/pkg/sftp"

	"github.com/restic/minisftp/internal/errors"
)

// remoteStat extracts the size and mtime Get/Put need from a remote Lstat,
// pulling mtime out of the pkg/sftp FileStat the library attaches via Sys().
func remoteStat(fs sftpFS, path string) (size uint64, mtime int64, err error) {
	fi, err := fs.Lstat(path)
	if err != nil {
		return 0, 0, errors.Protocol(err)
	}
	size = uint64(fi.Size()) //nolint:gosec // sizes are never negative
	if stat, ok := fi.Sys().(*sftp.FileStat); ok {
		mtime = int64(stat.Mtime) //nolint:gosec // Unix seconds fit comfortably in int64
	}
	return size, mtime, nil
}

// Get downloads remote to local, applying the skip/resume/overwrite
// decision from the package design: identical size and mtime skips
// entirely, a shorter local file resumes from its current length, anything
// else overwrites from zero. onProgress is called once per chunk; cancel,
// if non-nil, is raced against each remote read and wins any tie.
func (e *Engine) Get(remote, local string, onProgress ProgressFunc, cancel *CancellationToken) (Result, error) {
	remoteSize, remoteMtime, err := remoteStat(e.fs, remote)
	if err != nil {
		return Result{}, err
	}

	localInfo, err := statLocal(local)
	if err != nil {
		return Result{}, err
	}

	if localInfo.size == remoteSize && localInfo.mtime == remoteMtime {
		return Result{Kind: Skipped}, nil
	}

	offset := uint64(0)
	isResume := false
	if localInfo.size > 0 && localInfo.size < remoteSize {
		offset = localInfo.size
		isResume = true
	}

	rf, err := e.fs.OpenFile(remote, os.O_RDONLY)
	if err != nil {
		return Result{}, errors.Protocol(err)
	}
	if offset > 0 {
		if _, err := rf.Seek(int64(offset), io.SeekStart); err != nil { //nolint:gosec // offset bounded by remoteSize above
			_ = rf.Close()
			return Result{}, errors.Protocol(err)
		}
	}

	localFlags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if isResume {
		localFlags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	lf, err := os.OpenFile(local, localFlags, 0o644)
	if err != nil {
		_ = rf.Close()
		return Result{}, errors.Io(err)
	}
	defer lf.Close()

	transferred := offset
	start := time.Now()
	buf := make([]byte, chunkSize)

	for {
		n, readErr, cancelled := raceChunk(cancel, func() (int, error) { return rf.Read(buf) })
		if cancelled {
			_ = rf.Close()
			return Result{Kind: Cancelled, BytesTransferred: transferred}, nil
		}

		if n > 0 {
			if _, writeErr := lf.Write(buf[:n]); writeErr != nil {
				_ = rf.Close()
				return Result{}, errors.Io(writeErr)
			}
			transferred += uint64(n) //nolint:gosec // n is bounded by chunkSize
			if onProgress != nil {
				onProgress(ProgressInfo{
					Transferred: transferred,
					Total:       remoteSize,
					ElapsedSecs: time.Since(start).Seconds(),
				})
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = rf.Close()
			return Result{}, errors.Protocol(readErr)
		}
		if n == 0 {
			break
		}
	}

	if err := rf.Close(); err != nil {
		return Result{}, errors.Protocol(err)
	}

	if isResume {
		return Result{Kind: Resumed, BytesTransferred: transferred}, nil
	}
	return Result{Kind: Completed, BytesTransferred: transferred}, nil
}
