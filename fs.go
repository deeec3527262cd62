package filevfs

import (
	"errors"
	"os"

	"github.com/vfsfile/filevfs/internal/hostfile"
	"github.com/vfsfile/filevfs/internal/storage"
	"github.com/vfsfile/filevfs/internal/vfscore"
)

// FS is one virtual filesystem backed by a single host file.
type FS struct {
	engine *storage.Engine
}

// Open returns an FS backed by the real host filesystem at path. The
// backing file is created lazily, with default 0644 permissions, by the
// first operation of any kind; its empty root is written by the first
// write operation.
func Open(path string) *FS {
	return OpenWithHost(hostfile.NewReal(), path)
}

// OpenWithPerm is Open with an explicit creation permission.
func OpenWithPerm(path string, perm os.FileMode) *FS {
	return &FS{engine: storage.NewEngineWithPerm(hostfile.NewReal(), path, perm)}
}

// OpenWithHost returns an FS backed by path through a caller-supplied host
// seam — used by tests that want an in-memory or fault-injecting hostfile.FS.
func OpenWithHost(fs hostfile.FS, path string) *FS {
	return &FS{engine: storage.NewEngine(fs, path)}
}

// Root returns a handle to the filesystem's root folder. It is conceptual:
// it has the empty name, no parent, and exists independent of whether the
// backing file has been initialized yet.
func (fs *FS) Root() *Folder {
	return &Folder{fs: fs, parts: nil}
}

func owns(fs *FS, n vfscore.Node) bool {
	switch v := n.(type) {
	case *Folder:
		return v.fs == fs
	case *File:
		return v.fs == fs
	default:
		return false
	}
}

func nodeParts(n vfscore.Node) []string {
	switch v := n.(type) {
	case *Folder:
		return v.parts
	case *File:
		return v.parts
	default:
		return nil
	}
}

// Copy copies src into dst under name. Both src and dst must belong to fs,
// otherwise it fails with ErrCrossFSOperation. If src and the computed
// destination path coincide, it is a no-op that returns src unchanged.
// When the destination name already resolves to a node, it fails with
// ErrFileExists unless overwrite is true.
func (fs *FS) Copy(src vfscore.Node, dst vfscore.Folder, name string, overwrite bool) (vfscore.Node, error) {
	dstFolder, ok := dst.(*Folder)
	if !ok || !owns(fs, src) || dstFolder.fs != fs {
		return nil, ErrCrossFSOperation
	}

	if pathString(nodeParts(src)) == pathString(childParts(dstFolder.parts, name)) {
		return src, nil
	}

	node, err := vfscore.CopyNode(src, dst, name, overwrite)
	if err != nil {
		return nil, asPublicCollision(err)
	}

	return node, nil
}

// Move copies src into dst under name and removes src. Ownership and
// no-op rules mirror Copy.
func (fs *FS) Move(src vfscore.Node, dst vfscore.Folder, name string, overwrite bool) (vfscore.Node, error) {
	dstFolder, ok := dst.(*Folder)
	if !ok || !owns(fs, src) || dstFolder.fs != fs {
		return nil, ErrCrossFSOperation
	}

	if pathString(nodeParts(src)) == pathString(childParts(dstFolder.parts, name)) {
		return src, nil
	}

	node, err := vfscore.MoveNode(src, dst, name, overwrite)
	if err != nil {
		return nil, asPublicCollision(err)
	}

	return node, nil
}

// Init forces the backing file's lazy initialization (an empty root
// reference and record) without otherwise touching the tree. Every other
// write operation does this implicitly; Init exists for callers — like the
// CLI's init command — that want to create the file up front.
func (fs *FS) Init() error {
	return fs.engine.WithWriteLock(func(fc *storage.Controller) error {
		return nil
	})
}

// Defragment opens a write section with no mutation, letting the engine's
// usual end-of-write efficiency check decide whether to compact the backing
// file. Every write operation already runs this check; Defragment exists for
// callers that want an explicit point to trigger it, e.g. after a bulk
// deletion.
func (fs *FS) Defragment() error {
	return fs.engine.WithWriteLock(func(fc *storage.Controller) error {
		return nil
	})
}

// Resolve navigates an arbitrary "/"-separated path from the root and
// returns the node it names, as a *Folder or a *File.
func (fs *FS) Resolve(path string) (vfscore.Node, error) {
	parts := splitCLIPath(path)

	var node vfscore.Node

	err := fs.engine.WithReadLock(func(fc *storage.Controller) error {
		frag, err := fs.engine.Navigate(fc, pathString(parts))
		if err != nil {
			return translate(err, false)
		}

		if frag.IsFolder() {
			node = &Folder{fs: fs, parts: parts}
		} else {
			node = &File{fs: fs, parts: parts}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return node, nil
}

// ResolveFolder is Resolve narrowed to folders; it fails with
// ErrFolderNotFound when path names a file instead.
func (fs *FS) ResolveFolder(path string) (*Folder, error) {
	node, err := fs.Resolve(path)
	if err != nil {
		return nil, err
	}

	folder, ok := node.(*Folder)
	if !ok {
		return nil, ErrFolderNotFound
	}

	return folder, nil
}

// ResolveFile is Resolve narrowed to files; it fails with ErrFileNotFound
// when path names a folder instead.
func (fs *FS) ResolveFile(path string) (*File, error) {
	node, err := fs.Resolve(path)
	if err != nil {
		return nil, err
	}

	file, ok := node.(*File)
	if !ok {
		return nil, ErrFileNotFound
	}

	return file, nil
}

// Stat is a public projection of storage.NodeStat: shape and size without
// resolving to a typed handle.
type Stat struct {
	IsFolder   bool
	Size       int64
	ChildCount int
}

// Stat reports path's shape and size.
func (fs *FS) Stat(path string) (Stat, error) {
	parts := splitCLIPath(path)

	var st Stat

	err := fs.engine.WithReadLock(func(fc *storage.Controller) error {
		s, err := fs.engine.Stat(fc, pathString(parts))
		if err != nil {
			return translate(err, false)
		}

		st = Stat{IsFolder: s.IsFolder, Size: s.Size, ChildCount: s.ChildCount}

		return nil
	})
	if err != nil {
		return Stat{}, err
	}

	return st, nil
}

func asPublicCollision(err error) error {
	if errors.Is(err, vfscore.ErrNameExists) {
		return ErrFileExists
	}

	return err
}
