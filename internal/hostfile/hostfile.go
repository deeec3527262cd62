// Package hostfile is the thin seam between the storage engine and the
// operating system's view of the single backing file (and its defrag
// sidecar). It exposes only the handful of operations the engine actually
// issues — no directory tree walking, no cross-process locking.
package hostfile

import "os"

// File is the subset of *os.File the engine's positioned I/O needs.
type File interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Truncate(size int64) error
	Stat() (os.FileInfo, error)
	Sync() error
	Close() error
}

// FS is implemented by [Real] in production and can be swapped out in
// tests that want to exercise the engine without touching real disk.
type FS interface {
	// OpenFile is a passthrough wrapper for [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)
	// Stat is a passthrough wrapper for [os.Stat].
	Stat(path string) (os.FileInfo, error)
	// Remove is a passthrough wrapper for [os.Remove]. Missing files are not
	// an error.
	Remove(path string) error
	// Rename atomically replaces newpath with oldpath's contents.
	Rename(oldpath, newpath string) error
}

// Real implements [FS] using the real filesystem.
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

func (r *Real) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(path, flag, perm)
}

func (r *Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (r *Real) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	return err
}

func (r *Real) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// Compile-time interface check.
var _ FS = (*Real)(nil)
