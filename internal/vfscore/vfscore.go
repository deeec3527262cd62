// Package vfscore defines the generic virtual-filesystem trait set treated
// as an external collaborator contract: Node, File, and Folder, plus
// CopyNode and MoveNode helpers that walk a tree through those interfaces
// alone. It
// is shaped after the node/file/folder split found in rclone's vfs
// package and the jacobsa/fuse node surface, but no published module
// ships this exact contract, so it lives here rather than behind a
// fabricated replace directive.
//
// Nothing in this package knows about the binary format, the lock, or
// paths beyond plain names; filevfs.FS/Folder/File are the only
// implementers.
package vfscore

import "errors"

// ErrNameExists is returned by CopyNode/MoveNode when the destination
// folder already has a child by that name and overwrite was not requested.
var ErrNameExists = errors.New("vfscore: destination name exists")

// Node is the common surface of files and folders: a name and a kind tag.
type Node interface {
	Name() string
	IsFolder() bool
}

// File is a Node that holds a byte string.
type File interface {
	Node

	Size() (int64, error)
	Read() ([]byte, error)
	Write(data []byte) error
	Remove() error
}

// Folder is a Node that contains named children.
type Folder interface {
	Node

	List() ([]Node, error)
	CreateFile(name string) (File, error)
	CreateFolder(name string) (Folder, error)
	ChildFolder(name string) (Folder, error)
	ChildFile(name string) (File, error)
	Remove(recursive bool) error
}

// findByName locates a child of dst by name, returning (nil, nil) when
// absent so callers can distinguish "no collision" from a lookup error.
func findByName(dst Folder, name string) (Node, error) {
	children, err := dst.List()
	if err != nil {
		return nil, err
	}

	for _, child := range children {
		if child.Name() == name {
			return child, nil
		}
	}

	return nil, nil
}

// CopyNode copies src (a File or a Folder) into dst under the given name.
// A folder is copied recursively. When a node by that name already exists
// under dst, CopyNode fails with ErrNameExists unless overwrite is true, in
// which case the existing node is removed first.
func CopyNode(src Node, dst Folder, name string, overwrite bool) (Node, error) {
	if err := prepareDestination(dst, name, overwrite); err != nil {
		return nil, err
	}

	if folder, ok := src.(Folder); ok {
		return copyFolder(folder, dst, name)
	}

	file, ok := src.(File)
	if !ok {
		return nil, errors.New("vfscore: source is neither File nor Folder")
	}

	return copyFile(file, dst, name)
}

func copyFile(src File, dst Folder, name string) (Node, error) {
	data, err := src.Read()
	if err != nil {
		return nil, err
	}

	created, err := dst.CreateFile(name)
	if err != nil {
		return nil, err
	}

	if err := created.Write(data); err != nil {
		return nil, err
	}

	return created, nil
}

func copyFolder(src Folder, dst Folder, name string) (Node, error) {
	created, err := dst.CreateFolder(name)
	if err != nil {
		return nil, err
	}

	children, err := src.List()
	if err != nil {
		return nil, err
	}

	for _, child := range children {
		if _, err := CopyNode(child, created, child.Name(), false); err != nil {
			return nil, err
		}
	}

	return created, nil
}

// MoveNode copies src into dst under name and then removes src from its
// origin. Folders are moved recursively via copy-then-remove, since the
// contract offers no in-place rename primitive across arbitrary folders.
func MoveNode(src Node, dst Folder, name string, overwrite bool) (Node, error) {
	moved, err := CopyNode(src, dst, name, overwrite)
	if err != nil {
		return nil, err
	}

	switch n := src.(type) {
	case Folder:
		if err := n.Remove(true); err != nil {
			return nil, err
		}
	case File:
		if err := n.Remove(); err != nil {
			return nil, err
		}
	}

	return moved, nil
}

func prepareDestination(dst Folder, name string, overwrite bool) error {
	existing, err := findByName(dst, name)
	if err != nil {
		return err
	}

	if existing == nil {
		return nil
	}

	if !overwrite {
		return ErrNameExists
	}

	switch n := existing.(type) {
	case Folder:
		return n.Remove(true)
	case File:
		return n.Remove()
	}

	return nil
}
