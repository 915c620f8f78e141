// Package fsutil writes files so that readers see either the old content or
// the new content, never a partial write.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// AtomicWrite writes data to a temporary file next to dst, syncs it, applies
// perm and renames it over dst. The temporary file is removed on failure.
func AtomicWrite(dst string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(dst)
	tmpPath := TempName(dst)

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}

	// Remove the temp file on any error after creation
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = f.Write(data); err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return err
	}
	renamed = true

	return syncDir(dir)
}

// TempName returns a unique hidden file name in the directory of dst.
func TempName(dst string) string {
	return filepath.Join(filepath.Dir(dst), fmt.Sprintf(".%s.%s.tmp", filepath.Base(dst), uuid.NewString()))
}

// syncDir flushes the directory entry after a rename. Platforms that cannot
// open or sync directories are ignored.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return nil
	}
	defer d.Close()
	_ = d.Sync()
	return nil
}
