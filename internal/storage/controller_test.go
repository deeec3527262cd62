package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vfsfile/filevfs/internal/format"
	"github.com/vfsfile/filevfs/internal/hostfile"
)

func openController(t *testing.T) (*Controller, func()) {
	t.Helper()

	dir := t.TempDir()

	fs := hostfile.NewReal()

	f, err := fs.OpenFile(filepath.Join(dir, "f.vfs"), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	fc := NewController(f)

	return fc, func() { _ = fc.Close() }
}

func TestController_ReadFragmentAt_VirtualRootOnEmptyFile(t *testing.T) {
	fc, closeFC := openController(t)
	defer closeFC()

	frag, err := fc.ReadFragmentAt(0, nil)
	if err != nil {
		t.Fatalf("ReadFragmentAt: %v", err)
	}

	if !frag.IsFolder() {
		t.Fatal("virtual root must be a folder")
	}

	if frag.Reference.DataPosition != format.Intangible {
		t.Fatalf("data position=%d, want Intangible", frag.Reference.DataPosition)
	}

	if frag.Name != "" {
		t.Fatalf("name=%q, want empty", frag.Name)
	}
}

func TestController_PutReference_RoundTrip(t *testing.T) {
	fc, closeFC := openController(t)
	defer closeFC()

	if _, err := fc.PutReference(0, format.MarkFile, 42); err != nil {
		t.Fatalf("PutReference: %v", err)
	}

	fc.Seek(0)

	ref, err := fc.ReadReference()
	if err != nil {
		t.Fatalf("ReadReference: %v", err)
	}

	if ref.Mark != format.MarkFile || ref.DataPosition != 42 {
		t.Fatalf("ref=%+v, want {Mark:C, DataPosition:42}", ref)
	}
}

func TestController_PutFileFragment_ReadFileContent(t *testing.T) {
	fc, closeFC := openController(t)
	defer closeFC()

	ref := format.Reference{Mark: format.MarkFile, DataPosition: 0}

	frag, err := fc.PutFileFragment(ref, "greeting", []byte("hi there"), nil)
	if err != nil {
		t.Fatalf("PutFileFragment: %v", err)
	}

	content, err := fc.ReadFileContent(frag)
	if err != nil {
		t.Fatalf("ReadFileContent: %v", err)
	}

	if got, want := string(content), "hi there"; got != want {
		t.Fatalf("content=%q, want=%q", got, want)
	}
}

func TestController_PropagateUsedSpaceChange_MultipleAncestors(t *testing.T) {
	fc, closeFC := openController(t)
	defer closeFC()

	grandparent, err := fc.PutFolderFragment(format.Reference{Mark: format.MarkFolder, DataPosition: 0}, "gp", nil, 100, nil)
	if err != nil {
		t.Fatalf("PutFolderFragment gp: %v", err)
	}

	parent, err := fc.PutFolderFragment(format.Reference{Mark: format.MarkFolder, DataPosition: 50}, "p", nil, 40, grandparent)
	if err != nil {
		t.Fatalf("PutFolderFragment p: %v", err)
	}

	child, err := fc.PutFileFragment(format.Reference{Mark: format.MarkFile, DataPosition: 100}, "c", []byte("x"), parent)
	if err != nil {
		t.Fatalf("PutFileFragment c: %v", err)
	}

	if err := fc.PropagateUsedSpaceChange(child, 5); err != nil {
		t.Fatalf("PropagateUsedSpaceChange: %v", err)
	}

	if parent.ChildrenUsedSpace != 45 {
		t.Fatalf("parent.ChildrenUsedSpace=%d, want=45", parent.ChildrenUsedSpace)
	}

	if grandparent.ChildrenUsedSpace != 105 {
		t.Fatalf("grandparent.ChildrenUsedSpace=%d, want=105", grandparent.ChildrenUsedSpace)
	}

	reread, err := fc.ReadFragment(grandparent.Reference, format.Intangible, nil)
	if err != nil {
		t.Fatalf("ReadFragment grandparent: %v", err)
	}

	if reread.ChildrenUsedSpace != 105 {
		t.Fatalf("on-disk grandparent.ChildrenUsedSpace=%d, want=105", reread.ChildrenUsedSpace)
	}
}
