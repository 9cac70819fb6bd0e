//go:build !linux && !darwin

package transfer

import "os"

// localFileEntry on platforms without POSIX stat metadata (notably
// Windows) leaves Perms/UID/GID nil, per the FileEntry contract: absent
// fields mean "unknown", not zero. Mtime is still available everywhere
// through os.FileInfo, so it's filled in here too.
func localFileEntry(name string, fi os.FileInfo) FileEntry {
	mtime := fi.ModTime().Unix()
	return FileEntry{
		Name:  name,
		IsDir: fi.IsDir(),
		Size:  uint64(fi.Size()), //nolint:gosec // sizes are never negative
		Mtime: &mtime,
	}
}
