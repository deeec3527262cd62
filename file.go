package filevfs

import (
	"github.com/vfsfile/filevfs/internal/storage"
	"github.com/vfsfile/filevfs/internal/vfscore"
)

// File is a handle to one file node.
type File struct {
	fs    *FS
	parts []string
}

var _ vfscore.File = (*File)(nil)

// Name returns the file's own name.
func (f *File) Name() string {
	if len(f.parts) == 0 {
		return ""
	}

	return f.parts[len(f.parts)-1]
}

// IsFolder always reports false.
func (f *File) IsFolder() bool { return false }

// AbsolutePath returns the file's path as a list of parts.
func (f *File) AbsolutePath() []string { return append([]string(nil), f.parts...) }

// Path renders the file's absolute path as a "/"-separated string.
func (f *File) Path() string { return representPath(f.parts) }

func (f *File) path() string { return pathString(f.parts) }

// Size returns the file's stored content length.
func (f *File) Size() (int64, error) {
	var size int64

	err := f.fs.engine.WithReadLock(func(fc *storage.Controller) error {
		st, err := f.fs.engine.Stat(fc, f.path())
		if err != nil {
			return translate(err, false)
		}

		if st.IsFolder {
			return ErrFileNotFound
		}

		size = st.Size

		return nil
	})
	if err != nil {
		return 0, err
	}

	return size, nil
}

// Read returns exactly the stored bytes.
func (f *File) Read() ([]byte, error) {
	var data []byte

	err := f.fs.engine.WithReadLock(func(fc *storage.Controller) error {
		frag, err := f.fs.engine.Navigate(fc, f.path())
		if err != nil {
			return translate(err, false)
		}

		if frag.IsFolder() {
			return ErrFileNotFound
		}

		data, err = fc.ReadFileContent(frag)

		return translate(err, false)
	})
	if err != nil {
		return nil, err
	}

	return data, nil
}

// Write replaces the file's content with data, choosing in-place rewrite
// or append-and-redirect depending on whether data grows the record.
func (f *File) Write(data []byte) error {
	return f.fs.engine.WithWriteLock(func(fc *storage.Controller) error {
		frag, err := f.fs.engine.Navigate(fc, f.path())
		if err != nil {
			return translate(err, false)
		}

		if frag.IsFolder() {
			return ErrFileNotFound
		}

		_, err = fc.UpdateFileContent(frag, data)

		return translate(err, false)
	})
}

// Remove deletes this file from its parent folder.
func (f *File) Remove() error {
	return f.fs.engine.WithWriteLock(func(fc *storage.Controller) error {
		self, err := f.fs.engine.Navigate(fc, f.path())
		if err != nil {
			return translate(err, false)
		}

		if self.IsFolder() {
			return ErrFileNotFound
		}

		_, err = f.fs.engine.RemoveChild(fc, self.Parent, self)

		return translate(err, true)
	})
}
