package transfer

import (
	"os"

	"github.com/restic/minisftp/internal/errors"
)

// localStat describes what Get/Put need to know about the local side of a
// transfer before deciding skip/resume/overwrite. A missing file reports
// size 0, mtime 0, consistent with the design's "absent -> zero" rule.
type localStat struct {
	size  uint64
	mtime int64
}

func statLocal(path string) (localStat, error) {
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return localStat{}, nil
	}
	if err != nil {
		return localStat{}, errors.Io(err)
	}
	return localStat{size: uint64(fi.Size()), mtime: fi.ModTime().Unix()}, nil //nolint:gosec // sizes are never negative
}
