// Package storage implements the on-disk storage engine: the backing-file
// byte layout (delegated to internal/format), the writer-preferring lock
// that serializes access to it, and the navigate/add-child/remove-child/
// defragment algorithms that keep the tree consistent.
package storage

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/vfsfile/filevfs/internal/format"
	"github.com/vfsfile/filevfs/internal/hostfile"
	"github.com/vfsfile/filevfs/internal/rwlock"
)

// defragEfficiencyThreshold is the live/storage ratio below which a write
// operation triggers a defragmentation pass. A tuning knob, not a
// correctness property.
const defragEfficiencyThreshold = 0.4

// Engine owns the RWLock, the backing file path, and the one-shot
// initialization flag. A fresh Controller is opened per locked section;
// none is ever shared across goroutines.
type Engine struct {
	lock *rwlock.RWLock
	fs   hostfile.FS
	path string
	perm os.FileMode

	initMu      sync.Mutex
	initialized bool
}

// NewEngine returns an Engine backed by path, read and written through fs,
// using the default 0644 permission for a freshly created backing file.
func NewEngine(fs hostfile.FS, path string) *Engine {
	return NewEngineWithPerm(fs, path, 0o644)
}

// NewEngineWithPerm is NewEngine with an explicit creation permission, for
// callers (the CLI's config layer) that let the operator choose it.
func NewEngineWithPerm(fs hostfile.FS, path string, perm os.FileMode) *Engine {
	return &Engine{
		lock: rwlock.New(),
		fs:   fs,
		path: path,
		perm: perm,
	}
}

// WithReadLock acquires read-mode, opens a read-only controller, runs op,
// and releases everything on every exit path.
func (e *Engine) WithReadLock(op func(fc *Controller) error) error {
	e.lock.RLock()
	defer e.lock.RUnlock()

	f, err := e.fs.OpenFile(e.path, os.O_RDONLY|os.O_CREATE, e.perm)
	if err != nil {
		return fmt.Errorf("%w: open: %v", ErrInternal, err)
	}

	fc := NewController(f)
	defer fc.Close()

	return op(fc)
}

// WithWriteLock acquires write-mode, opens a read/write controller,
// lazily initializes an empty backing file, runs op, defragments, and
// releases everything on every exit path.
func (e *Engine) WithWriteLock(op func(fc *Controller) error) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	f, err := e.fs.OpenFile(e.path, os.O_RDWR|os.O_CREATE, e.perm)
	if err != nil {
		return fmt.Errorf("%w: open: %v", ErrInternal, err)
	}

	fc := NewController(f)
	defer fc.Close()

	if err := e.ensureInitialized(fc); err != nil {
		return err
	}

	if err := op(fc); err != nil {
		return err
	}

	return e.defragment(fc)
}

func (e *Engine) ensureInitialized(fc *Controller) error {
	e.initMu.Lock()
	defer e.initMu.Unlock()

	if e.initialized {
		return nil
	}

	size, err := fc.Size()
	if err != nil {
		return err
	}

	if size == 0 {
		if _, err := fc.PutReference(0, format.MarkFolder, format.RefSize); err != nil {
			return err
		}

		root := format.FolderRecord{ChildrenUsedSpace: 0, Children: nil, Name: ""}
		buf := format.EncodeFolderRecord(root)

		if err := fc.writeAt(format.RefSize, buf); err != nil {
			return err
		}
	}

	e.initialized = true

	return nil
}

// splitPath turns a "/"-separated absolute path into its non-empty parts.
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}

	return strings.Split(trimmed, "/")
}

// Navigate starts at the root fragment and walks path's parts in order,
// matching children by name. The final part may resolve to a file or a
// folder; every non-final part must resolve to a folder. A missing part
// fails with ErrNodeNotFound.
func (e *Engine) Navigate(fc *Controller, path string) (*Fragment, error) {
	current, err := fc.ReadFragmentAt(0, nil)
	if err != nil {
		return nil, err
	}

	for _, part := range splitPath(path) {
		if !current.IsFolder() {
			return nil, ErrNodeNotFound
		}

		match, err := matchChild(fc, current, part)
		if err != nil {
			return nil, err
		}

		current = match
	}

	return current, nil
}

func matchChild(fc *Controller, parent *Fragment, name string) (*Fragment, error) {
	for _, child := range parent.Children {
		frag, err := fc.ReadFragmentAt(child.RefPosition, parent)
		if err != nil {
			return nil, err
		}

		if frag.Name == name {
			return frag, nil
		}
	}

	return nil, ErrNodeNotFound
}

// ExistsCheck succeeds (returns nil) when path does not resolve to a node,
// and fails with ErrNodeExists when it does.
func (e *Engine) ExistsCheck(fc *Controller, path string) error {
	_, err := e.Navigate(fc, path)
	if err == nil {
		return ErrNodeExists
	}

	if errors.Is(err, ErrNodeNotFound) {
		return nil
	}

	return err
}

// AddChild appends a grown copy of parent's folder record to end-of-file,
// redirects parent's own external reference to it, and propagates the
// parent's size growth upward. Returns the fragment for the new parent
// record.
func (e *Engine) AddChild(fc *Controller, parent, child *Fragment) (*Fragment, error) {
	newChildren := append(parent.childReferences(), child.Reference)
	newUsedSpace := parent.ChildrenUsedSpace + child.TotalSizeBytes()

	dataPos, err := fc.Size()
	if err != nil {
		return nil, err
	}

	newRef := format.Reference{Mark: format.MarkFolder, DataPosition: dataPos}

	newParent, err := fc.PutFolderFragment(newRef, parent.Name, newChildren, newUsedSpace, parent.Parent)
	if err != nil {
		return nil, err
	}

	newParent.RefPosition = parent.RefPosition

	if _, err := fc.PutReference(parent.RefPosition, format.MarkFolder, dataPos); err != nil {
		return nil, err
	}

	delta := newParent.TotalSizeBytes() - parent.TotalSizeBytes()
	if err := fc.PropagateUsedSpaceChange(newParent, delta); err != nil {
		return nil, err
	}

	return newParent, nil
}

// RemoveChild drops exactly one child reference (matched by data position)
// from parent's record and rewrites the record in place, since it can only
// shrink. Propagates the resulting size delta upward.
func (e *Engine) RemoveChild(fc *Controller, parent, child *Fragment) (*Fragment, error) {
	newChildren := make([]format.Reference, 0, len(parent.Children))

	removed := false

	for _, c := range parent.Children {
		if !removed && c.Ref.DataPosition == child.Reference.DataPosition {
			removed = true

			continue
		}

		newChildren = append(newChildren, c.Ref)
	}

	newUsedSpace := parent.ChildrenUsedSpace - child.TotalSizeBytes()

	newParent, err := fc.PutFolderFragment(parent.Reference, parent.Name, newChildren, newUsedSpace, parent.Parent)
	if err != nil {
		return nil, err
	}

	newParent.RefPosition = parent.RefPosition

	delta := newParent.TotalSizeBytes() - parent.TotalSizeBytes()
	if err := fc.PropagateUsedSpaceChange(newParent, delta); err != nil {
		return nil, err
	}

	return newParent, nil
}

// NodeStat is a narrow read-only projection of a fragment, used by callers
// that only need size/kind/child-count without walking the full tree.
type NodeStat struct {
	IsFolder   bool
	Size       int64
	ChildCount int
}

// Stat resolves path and reports its shape without building child
// fragments beyond what Navigate already does.
func (e *Engine) Stat(fc *Controller, path string) (NodeStat, error) {
	frag, err := e.Navigate(fc, path)
	if err != nil {
		return NodeStat{}, err
	}

	if frag.IsFolder() {
		return NodeStat{IsFolder: true, Size: frag.TotalSizeBytes(), ChildCount: len(frag.Children)}, nil
	}

	return NodeStat{IsFolder: false, Size: frag.FileSize}, nil
}
