package transfer

import (
	"os"
	"sort"

	"github.com/pkg/sftp"
)

// modeTypeMask and modeDir are the POSIX st_mode bits (0o170000 and
// 0o040000) that classify a node. PermissionString reads the node type from
// them, and remoteFileEntry/localFileEntry set modeDir from IsDir so Perms
// stays consistent with IsDir.
const (
	modeTypeMask = 0o170000
	modeDir      = 0o040000
)

// FileEntry describes one directory child, local or remote. Perms, UID,
// GID, and Mtime are pointers because they're absent on hosts without
// POSIX metadata (or, for the local side, on platforms where extracting
// them isn't supported); nil means "unknown", not zero.
type FileEntry struct {
	Name  string
	IsDir bool
	Size  uint64
	Perms *uint32
	UID   *uint32
	GID   *uint32
	Mtime *int64
}

// PermissionString renders Perms the way `ls -l` does: a leading file-type
// letter followed by three rwx triples. It returns "?---------" if Perms is
// unknown.
func (e FileEntry) PermissionString() string {
	if e.Perms == nil {
		return "?---------"
	}
	mode := *e.Perms

	typeChar := byte('-')
	switch mode & modeTypeMask {
	case modeDir:
		typeChar = 'd'
	case 0o120000:
		typeChar = 'l'
	}

	const rwx = "rwxrwxrwx"
	b := make([]byte, 10)
	b[0] = typeChar
	for i := 0; i < 9; i++ {
		if mode&(1<<uint(8-i)) != 0 {
			b[i+1] = rwx[i]
		} else {
			b[i+1] = '-'
		}
	}
	return string(b)
}

// SortEntries orders entries the way ls requires: directories strictly
// before non-directories, and lexicographic by name within each class.
func SortEntries(entries []FileEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.Name < b.Name
	})
}

// remoteFileEntry converts an os.FileInfo returned by the sftp client's
// ReadDir/Stat/Lstat into a FileEntry, pulling POSIX metadata out of the
// pkg/sftp FileStat the library attaches via Sys().
func remoteFileEntry(name string, fi os.FileInfo) FileEntry {
	entry := FileEntry{
		Name:  name,
		IsDir: fi.IsDir(),
		Size:  uint64(fi.Size()), //nolint:gosec // sizes are never negative
	}

	if stat, ok := fi.Sys().(*sftp.FileStat); ok {
		mode := uint32(fi.Mode().Perm())
		if entry.IsDir {
			mode |= modeDir
		}
		entry.Perms = &mode
		uid, gid := stat.UID, stat.GID
		entry.UID, entry.GID = &uid, &gid
		mtime := int64(stat.Mtime) //nolint:gosec // Unix seconds fit comfortably in int64
		entry.Mtime = &mtime
	}

	return entry
}
