package transfer

import (
	"os"
	"syscall"
)

func localFileEntry(name string, fi os.FileInfo) FileEntry {
	entry := FileEntry{
		Name:  name,
		IsDir: fi.IsDir(),
		Size:  uint64(fi.Size()), //nolint:gosec // sizes are never negative
	}

	stat, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return entry
	}

	mode := uint32(fi.Mode().Perm())
	if entry.IsDir {
		mode |= modeDir
	}
	entry.Perms = &mode

	uid, gid := stat.Uid, stat.Gid
	entry.UID, entry.GID = &uid, &gid

	mtime := fi.ModTime().Unix()
	entry.Mtime = &mtime

	return entry
}
