package storage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	DirPerm  os.FileMode = 0o755
	FilePerm os.FileMode = 0o644
)

// EnsureDir creates a directory (and parents) if it does not exist.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, DirPerm); err != nil {
		return errors.Wrapf(err, "ensure dir %s", path)
	}
	return nil
}

// FsyncDir makes the directory entries under path durable.
func FsyncDir(path string) error {
	d, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "fsync dir open %s", path)
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return errors.Wrapf(err, "fsync dir %s", path)
	}
	return errors.Wrapf(d.Close(), "fsync dir close %s", path)
}

// AtomicWriteFile writes data to a temp file in tmpDir, fsyncs it, renames
// it over finalPath and fsyncs finalPath's directory. Readers see either the
// old or the new content, never a torn file. tmpDir must be on the same
// filesystem as finalPath.
func AtomicWriteFile(finalPath string, data []byte, tmpDir string) error {
	tmp, err := os.CreateTemp(tmpDir, "atomic-*")
	if err != nil {
		return errors.Wrapf(err, "atomic write: create temp in %s", tmpDir)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "atomic write: data")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "atomic write: fsync")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "atomic write: close")
	}
	if err := os.Chmod(tmpPath, FilePerm); err != nil {
		return errors.Wrap(err, "atomic write: chmod")
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return errors.Wrapf(err, "atomic write: rename to %s", finalPath)
	}
	if err := FsyncDir(filepath.Dir(finalPath)); err != nil {
		return err
	}

	success = true
	return nil
}

// RemoveFile deletes path and fsyncs its directory. A missing file is not an
// error.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", path)
	}
	return FsyncDir(filepath.Dir(path))
}

// ListFiles returns the sorted names of the regular files in dir whose name
// ends in ext. A missing directory yields no names.
func ListFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "list files %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ext) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// RemoveDirContents removes every entry in dir and returns the removed
// paths. A missing directory is not an error.
func RemoveDirContents(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "read dir %s", dir)
	}

	var removed []string
	for _, entry := range entries {
		p := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(p); err != nil {
			return removed, errors.Wrapf(err, "remove %s", p)
		}
		removed = append(removed, p)
	}
	if len(removed) > 0 {
		return removed, FsyncDir(dir)
	}
	return removed, nil
}

// MoveFile renames src to dst and fsyncs both parent directories.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return errors.Wrapf(err, "move %s to %s", src, dst)
	}
	if err := FsyncDir(filepath.Dir(dst)); err != nil {
		return err
	}
	return FsyncDir(filepath.Dir(src))
}
