package storage

import "github.com/vfsfile/filevfs/internal/format"

// ChildRef is a child reference embedded in a folder record, paired with
// the byte offset at which that 9-byte reference itself lives on disk.
type ChildRef struct {
	Ref         format.Reference
	RefPosition int64
}

// Fragment is a short-lived, in-memory snapshot of one node: its
// reference, decoded metadata, a link to its parent fragment, and the
// size bookkeeping needed for defragmentation's threshold check. Fragments
// are never cached across lock releases; after any mutation, a
// previously-held fragment is stale.
type Fragment struct {
	Reference   format.Reference
	RefPosition int64 // offset of the reference pointing at this node; format.Intangible if not yet persisted
	Parent      *Fragment

	Name string

	// File-only.
	FileSize int64

	// Folder-only.
	ChildrenUsedSpace int64
	Children          []ChildRef

	// MetaSizeBytes is this node's own on-disk record length plus the 9
	// bytes its reference occupies.
	MetaSizeBytes int64
}

// IsFolder reports whether the fragment describes a folder.
func (f *Fragment) IsFolder() bool { return f.Reference.IsFolder() }

// IsFile reports whether the fragment describes a file.
func (f *Fragment) IsFile() bool { return f.Reference.IsFile() }

// TotalSizeBytes is this node's contribution to an ancestor's
// children_used_space: its own metadata size for files, or its metadata
// size plus its children's used space (minus the double-counted child
// reference bytes) for folders.
func (f *Fragment) TotalSizeBytes() int64 {
	if !f.IsFolder() {
		return f.MetaSizeBytes
	}

	return f.MetaSizeBytes + f.ChildrenUsedSpace - int64(len(f.Children))*format.RefSize
}

// ParentOrSelf returns the fragment's parent, or the fragment itself when
// it has none (the root's logical self-parent, per the design note: no
// cyclic ownership graph is introduced, this accessor just folds the
// absent case back to the node).
func (f *Fragment) ParentOrSelf() *Fragment {
	if f.Parent == nil {
		return f
	}

	return f.Parent
}

// childReferences returns the plain format.Reference list, dropping the
// on-disk positions — used when building a new parent record.
func (f *Fragment) childReferences() []format.Reference {
	refs := make([]format.Reference, len(f.Children))
	for i, c := range f.Children {
		refs[i] = c.Ref
	}

	return refs
}
