package transfer

import (
	"io"
	"os"
	"time"

	"github.com/restic/minisftp/internal/errors"
)

// Put uploads local to remote, symmetric with Get: identical size and
// mtime skips, a shorter remote file resumes from its current length
// (opened WRITE|APPEND — plain APPEND is insufficient on some servers),
// anything else overwrites from zero (CREATE|WRITE|TRUNCATE). cancel, if
// non-nil, is raced against each remote write and wins any tie.
func (e *Engine) Put(local, remote string, onProgress ProgressFunc, cancel *CancellationToken) (Result, error) {
	if _, err := os.Stat(local); err != nil {
		return Result{}, errors.Io(err)
	}
	localInfo, err := statLocal(local)
	if err != nil {
		return Result{}, err
	}

	remoteSize, remoteMtime, rErr := remoteStat(e.fs, remote)
	remoteExists := rErr == nil
	if !remoteExists {
		remoteSize, remoteMtime = 0, 0
	}

	if remoteExists && localInfo.size == remoteSize && localInfo.mtime == remoteMtime {
		return Result{Kind: Skipped}, nil
	}

	offset := uint64(0)
	isResume := false
	if remoteExists && remoteSize > 0 && remoteSize < localInfo.size {
		offset = remoteSize
		isResume = true
	}

	lf, err := os.Open(local)
	if err != nil {
		return Result{}, errors.Io(err)
	}
	defer lf.Close()
	if offset > 0 {
		if _, err := lf.Seek(int64(offset), io.SeekStart); err != nil { //nolint:gosec // offset bounded by local size above
			return Result{}, errors.Io(err)
		}
	}

	remoteFlags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if isResume {
		remoteFlags = os.O_WRONLY | os.O_APPEND
	}
	rf, err := e.fs.OpenFile(remote, remoteFlags)
	if err != nil {
		return Result{}, errors.Protocol(err)
	}

	transferred := offset
	start := time.Now()
	buf := make([]byte, chunkSize)

	for {
		n, readErr := lf.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			_, writeErr, cancelled := raceChunk(cancel, func() (int, error) { return rf.Write(chunk) })
			if cancelled {
				_ = rf.Close()
				return Result{Kind: Cancelled, BytesTransferred: transferred}, nil
			}
			if writeErr != nil {
				_ = rf.Close()
				return Result{}, errors.Protocol(writeErr)
			}
			transferred += uint64(n) //nolint:gosec // n is bounded by chunkSize
			if onProgress != nil {
				onProgress(ProgressInfo{
					Transferred: transferred,
					Total:       localInfo.size,
					ElapsedSecs: time.Since(start).Seconds(),
				})
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = rf.Close()
			return Result{}, errors.Io(readErr)
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
