package filevfs

import (
	"errors"

	"github.com/vfsfile/filevfs/internal/format"
	"github.com/vfsfile/filevfs/internal/storage"
	"github.com/vfsfile/filevfs/internal/vfscore"
)

// Folder is a handle to one folder node. It carries no cached state beyond
// the path that reaches it; every operation re-navigates under the
// appropriate lock.
type Folder struct {
	fs    *FS
	parts []string
}

var _ vfscore.Folder = (*Folder)(nil)

// Name returns the folder's own name, or "" for the root.
func (f *Folder) Name() string {
	if len(f.parts) == 0 {
		return ""
	}

	return f.parts[len(f.parts)-1]
}

// IsFolder always reports true.
func (f *Folder) IsFolder() bool { return true }

// AbsolutePath returns the folder's path as a list of parts, empty for root.
func (f *Folder) AbsolutePath() []string { return append([]string(nil), f.parts...) }

// Path renders the folder's absolute path as a "/"-separated string.
func (f *Folder) Path() string { return representPath(f.parts) }

func (f *Folder) path() string { return pathString(f.parts) }

// List returns the folder's direct children, file or folder, in the order
// they were inserted.
func (f *Folder) List() ([]vfscore.Node, error) {
	var nodes []vfscore.Node

	err := f.fs.engine.WithReadLock(func(fc *storage.Controller) error {
		frag, err := f.fs.engine.Navigate(fc, f.path())
		if err != nil {
			return translate(err, true)
		}

		if !frag.IsFolder() {
			return ErrFolderNotFound
		}

		for _, c := range frag.Children {
			child, err := fc.ReadFragmentAt(c.RefPosition, frag)
			if err != nil {
				return translate(err, false)
			}

			nodes = append(nodes, f.toNode(child))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return nodes, nil
}

func (f *Folder) toNode(frag *storage.Fragment) vfscore.Node {
	if frag.IsFolder() {
		return &Folder{fs: f.fs, parts: childParts(f.parts, frag.Name)}
	}

	return &File{fs: f.fs, parts: childParts(f.parts, frag.Name)}
}

// CreateFile creates an empty file named name directly under this folder.
// Fails with ErrNodeExists if a sibling by that name already exists.
func (f *Folder) CreateFile(name string) (vfscore.File, error) {
	err := f.fs.engine.WithWriteLock(func(fc *storage.Controller) error {
		parent, err := f.fs.engine.Navigate(fc, f.path())
		if err != nil {
			return translate(err, true)
		}

		childPath := pathString(childParts(f.parts, name))
		if err := f.fs.engine.ExistsCheck(fc, childPath); err != nil {
			return translate(err, false)
		}

		dataPos, err := fc.Size()
		if err != nil {
			return translate(err, false)
		}

		ref := format.Reference{Mark: format.MarkFile, DataPosition: dataPos}

		child, err := fc.PutFileFragment(ref, name, nil, parent)
		if err != nil {
			return translate(err, false)
		}

		_, err = f.fs.engine.AddChild(fc, parent, child)

		return translate(err, true)
	})
	if err != nil {
		return nil, err
	}

	return &File{fs: f.fs, parts: childParts(f.parts, name)}, nil
}

// CreateFolder creates an empty folder named name directly under this
// folder. Fails with ErrNodeExists if a sibling by that name already
// exists.
func (f *Folder) CreateFolder(name string) (vfscore.Folder, error) {
	err := f.fs.engine.WithWriteLock(func(fc *storage.Controller) error {
		parent, err := f.fs.engine.Navigate(fc, f.path())
		if err != nil {
			return translate(err, true)
		}

		childPath := pathString(childParts(f.parts, name))
		if err := f.fs.engine.ExistsCheck(fc, childPath); err != nil {
			return translate(err, true)
		}

		dataPos, err := fc.Size()
		if err != nil {
			return translate(err, false)
		}

		ref := format.Reference{Mark: format.MarkFolder, DataPosition: dataPos}

		child, err := fc.PutFolderFragment(ref, name, nil, 0, parent)
		if err != nil {
			return translate(err, false)
		}

		_, err = f.fs.engine.AddChild(fc, parent, child)

		return translate(err, true)
	})
	if err != nil {
		return nil, err
	}

	return &Folder{fs: f.fs, parts: childParts(f.parts, name)}, nil
}

// ChildFolder resolves name directly under this folder as a Folder handle.
// Fails with ErrFolderNotFound if missing, or if it resolves to a file.
func (f *Folder) ChildFolder(name string) (vfscore.Folder, error) {
	childPath := pathString(childParts(f.parts, name))

	err := f.fs.engine.WithReadLock(func(fc *storage.Controller) error {
		frag, err := f.fs.engine.Navigate(fc, childPath)
		if err != nil {
			return translate(err, true)
		}

		if !frag.IsFolder() {
			return ErrFolderNotFound
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Folder{fs: f.fs, parts: childParts(f.parts, name)}, nil
}

// ChildFile resolves name directly under this folder as a File handle.
// Fails with ErrFileNotFound if missing, or if it resolves to a folder.
func (f *Folder) ChildFile(name string) (vfscore.File, error) {
	childPath := pathString(childParts(f.parts, name))

	err := f.fs.engine.WithReadLock(func(fc *storage.Controller) error {
		frag, err := f.fs.engine.Navigate(fc, childPath)
		if err != nil {
			return translate(err, false)
		}

		if frag.IsFolder() {
			return ErrFileNotFound
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &File{fs: f.fs, parts: childParts(f.parts, name)}, nil
}

// Remove deletes this folder from its parent. A non-empty folder fails with
// ErrFolderNotEmpty unless recursive is true, in which case the whole
// subtree becomes unreachable and is reclaimed by the next defragmentation.
func (f *Folder) Remove(recursive bool) error {
	if len(f.parts) == 0 {
		return errors.New("filevfs: cannot remove the root folder")
	}

	return f.fs.engine.WithWriteLock(func(fc *storage.Controller) error {
		self, err := f.fs.engine.Navigate(fc, f.path())
		if err != nil {
			return translate(err, true)
		}

		if !self.IsFolder() {
			return ErrFolderNotFound
		}

		if len(self.Children) > 0 && !recursive {
			return ErrFolderNotEmpty
		}

		_, err = f.fs.engine.RemoveChild(fc, self.Parent, self)

		return translate(err, true)
	})
}
