package filevfs

import (
	"errors"
	"fmt"

	"github.com/vfsfile/filevfs/internal/storage"
)

// Public error taxonomy. NodeNotFound never escapes internal/storage: every
// facade operation knows whether it expected a file or a folder and
// translates accordingly.
var (
	ErrFileNotFound     = errors.New("filevfs: file not found")
	ErrFolderNotFound   = errors.New("filevfs: folder not found")
	ErrNodeExists       = errors.New("filevfs: node exists")
	ErrFileExists       = fmt.Errorf("filevfs: file exists: %w", ErrNodeExists)
	ErrFolderNotEmpty   = errors.New("filevfs: folder not empty")
	ErrCrossFSOperation = errors.New("filevfs: cross-filesystem operation")
	ErrCorruptFormat    = errors.New("filevfs: corrupt format")
	ErrShortRead        = errors.New("filevfs: short read")
	ErrInternal         = errors.New("filevfs: internal error")
)

// translate maps an internal/storage sentinel to its public equivalent.
// expectFolder says what kind of node the caller was looking for, which is
// what distinguishes FileNotFound from FolderNotFound for the same
// underlying NodeNotFound signal.
func translate(err error, expectFolder bool) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNodeNotFound):
		if expectFolder {
			return ErrFolderNotFound
		}

		return ErrFileNotFound
	case errors.Is(err, storage.ErrNodeExists):
		return ErrNodeExists
	case errors.Is(err, storage.ErrFolderNotEmpty):
		return ErrFolderNotEmpty
	case errors.Is(err, storage.ErrCorruptFormat):
		return ErrCorruptFormat
	case errors.Is(err, storage.ErrShortRead):
		return ErrShortRead
	case errors.Is(err, storage.ErrInternal):
		return ErrInternal
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
