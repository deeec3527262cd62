package filevfs

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/vfsfile/filevfs/internal/vfscore"
)

func newTestFS(t *testing.T) *FS {
	t.Helper()

	dir := t.TempDir()

	return Open(filepath.Join(dir, "backing.vfs"))
}

// S1: an empty filesystem's root has no children, the empty name, and an
// empty absolute path.
func TestFS_EmptyRootShape(t *testing.T) {
	fs := newTestFS(t)
	root := fs.Root()

	if got := root.Name(); got != "" {
		t.Fatalf("root.Name()=%q, want empty", got)
	}

	if got := root.AbsolutePath(); len(got) != 0 {
		t.Fatalf("root.AbsolutePath()=%v, want empty", got)
	}

	children, err := root.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(children) != 0 {
		t.Fatalf("children=%v, want empty", children)
	}
}

// S2: create a file, read back empty content, write, read back the write.
func TestFS_CreateWriteReadFile(t *testing.T) {
	fs := newTestFS(t)
	root := fs.Root()

	f, err := root.CreateFile("sample")
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	data, err := f.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(data) != 0 {
		t.Fatalf("initial content=%q, want empty", data)
	}

	if err := f.Write([]byte("sample data")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err = f.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if string(data) != "sample data" {
		t.Fatalf("content=%q, want=sample data", data)
	}
}

// S3: successive rewrites of growing size produce matching size() and read().
func TestFS_RewriteMonotonicity(t *testing.T) {
	fs := newTestFS(t)
	root := fs.Root()

	f, err := root.CreateFile("grow")
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	for i := 10; i < 20; i++ {
		want := make([]byte, i)
		for j := range want {
			want[j] = byte(j)
		}

		if err := f.Write(want); err != nil {
			t.Fatalf("Write(%d): %v", i, err)
		}

		size, err := f.Size()
		if err != nil {
			t.Fatalf("Size(%d): %v", i, err)
		}

		if size != int64(i) {
			t.Fatalf("Size=%d, want=%d", size, i)
		}

		got, err := f.Read()
		if err != nil {
			t.Fatalf("Read(%d): %v", i, err)
		}

		if !bytes.Equal(got, want) {
			t.Fatalf("Read=%v, want=%v", got, want)
		}
	}
}

// S4: nested folder tree, listing order matches insertion order.
func TestFS_NestedTreeListingOrder(t *testing.T) {
	fs := newTestFS(t)
	root := fs.Root()

	if _, err := root.CreateFile("rootfile"); err != nil {
		t.Fatalf("CreateFile rootfile: %v", err)
	}

	subfolder, err := root.CreateFolder("subfolder")
	if err != nil {
		t.Fatalf("CreateFolder subfolder: %v", err)
	}

	if _, err := subfolder.CreateFolder("subsubfolder"); err != nil {
		t.Fatalf("CreateFolder subsubfolder: %v", err)
	}

	subsubfolder, err := subfolder.ChildFolder("subsubfolder")
	if err != nil {
		t.Fatalf("ChildFolder subsubfolder: %v", err)
	}

	if _, err := subsubfolder.CreateFile("subsubfile"); err != nil {
		t.Fatalf("CreateFile subsubfile: %v", err)
	}

	if _, err := subfolder.CreateFile("subfile"); err != nil {
		t.Fatalf("CreateFile subfile: %v", err)
	}

	third, err := subfolder.CreateFolder("thirdfolder")
	if err != nil {
		t.Fatalf("CreateFolder thirdfolder: %v", err)
	}

	if _, err := third.CreateFile("thirdfile"); err != nil {
		t.Fatalf("CreateFile thirdfile: %v", err)
	}

	rootNames := listNames(t, root)
	if want := []string{"rootfile", "subfolder"}; !equalNames(rootNames, want) {
		t.Fatalf("root listing=%v, want=%v", rootNames, want)
	}

	subNames := listNames(t, subfolder)
	if want := []string{"subsubfolder", "subfile", "thirdfolder"}; !equalNames(subNames, want) {
		t.Fatalf("subfolder listing=%v, want=%v", subNames, want)
	}
}

func listNames(t *testing.T, f vfscore.Folder) []string {
	t.Helper()

	nodes, err := f.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name()
	}

	return names
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// S5: copy with overwrite=false fails on an existing destination name;
// overwrite=true succeeds and matches source bytes.
func TestFS_CopyOverwriteSemantics(t *testing.T) {
	fs := newTestFS(t)
	root := fs.Root()

	src, err := root.CreateFile("src")
	if err != nil {
		t.Fatalf("CreateFile src: %v", err)
	}

	if err := src.Write([]byte("source bytes")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	existing, err := root.CreateFile("fff")
	if err != nil {
		t.Fatalf("CreateFile fff: %v", err)
	}

	if err := existing.Write([]byte("old")); err != nil {
		t.Fatalf("Write existing: %v", err)
	}

	_, err = fs.Copy(src, root, "fff", false)
	if !errors.Is(err, ErrFileExists) {
		t.Fatalf("err=%v, want ErrFileExists", err)
	}

	dst, err := fs.Copy(src, root, "fff", true)
	if err != nil {
		t.Fatalf("Copy overwrite: %v", err)
	}

	data, err := dst.(vfscore.File).Read()
	if err != nil {
		t.Fatalf("Read dst: %v", err)
	}

	if string(data) != "source bytes" {
		t.Fatalf("dst content=%q, want=source bytes", data)
	}

	srcData, err := src.Read()
	if err != nil {
		t.Fatalf("Read src: %v", err)
	}

	if string(srcData) != "source bytes" {
		t.Fatalf("src content mutated=%q", srcData)
	}
}

// Property 8: move removes the source.
func TestFS_MoveRemovesSource(t *testing.T) {
	fs := newTestFS(t)
	root := fs.Root()

	sub, err := root.CreateFolder("sub")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}

	src, err := root.CreateFile("movable")
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	if err := src.Write([]byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, err := fs.Move(src, sub, "movable", false); err != nil {
		t.Fatalf("Move: %v", err)
	}

	_, err = root.ChildFile("movable")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err=%v, want ErrFileNotFound", err)
	}

	moved, err := sub.ChildFile("movable")
	if err != nil {
		t.Fatalf("ChildFile in destination: %v", err)
	}

	data, err := moved.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if string(data) != "payload" {
		t.Fatalf("content=%q, want=payload", data)
	}
}

// Property 9: non-empty folder protection.
func TestFS_RemoveNonEmptyFolder(t *testing.T) {
	fs := newTestFS(t)
	root := fs.Root()

	sub, err := root.CreateFolder("sub")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}

	if _, err := sub.CreateFile("leaf"); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	if err := sub.Remove(false); !errors.Is(err, ErrFolderNotEmpty) {
		t.Fatalf("err=%v, want ErrFolderNotEmpty", err)
	}

	if err := sub.Remove(true); err != nil {
		t.Fatalf("Remove recursive: %v", err)
	}

	_, err = root.ChildFolder("sub")
	if !errors.Is(err, ErrFolderNotFound) {
		t.Fatalf("err=%v, want ErrFolderNotFound", err)
	}
}

// Property 5: name collisions fail with ErrNodeExists.
func TestFS_NameCollision(t *testing.T) {
	fs := newTestFS(t)
	root := fs.Root()

	if _, err := root.CreateFile("dup"); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	_, err := root.CreateFile("dup")
	if !errors.Is(err, ErrNodeExists) {
		t.Fatalf("err=%v, want ErrNodeExists", err)
	}

	_, err = root.CreateFolder("dup")
	if !errors.Is(err, ErrNodeExists) {
		t.Fatalf("err=%v, want ErrNodeExists", err)
	}
}

// Property 11: defragmentation invariance. The observable tree is identical
// before and after a defragmentation pass is triggered by churn.
func TestFS_DefragmentationInvariance(t *testing.T) {
	fs := newTestFS(t)
	root := fs.Root()

	sub, err := root.CreateFolder("sub")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}

	a, err := root.CreateFile("a")
	if err != nil {
		t.Fatalf("CreateFile a: %v", err)
	}

	b, err := sub.CreateFile("b")
	if err != nil {
		t.Fatalf("CreateFile b: %v", err)
	}

	if err := b.Write([]byte("stable content")); err != nil {
		t.Fatalf("Write b: %v", err)
	}

	for i := range 30 {
		data := bytes.Repeat([]byte{byte(i)}, 32+i)
		if err := a.Write(data); err != nil {
			t.Fatalf("Write a iteration %d: %v", i, err)
		}
	}

	rootNames := listNames(t, root)
	if want := []string{"sub", "a"}; !equalNames(rootNames, want) {
		t.Fatalf("root listing=%v, want=%v", rootNames, want)
	}

	bData, err := b.Read()
	if err != nil {
		t.Fatalf("Read b: %v", err)
	}

	if string(bData) != "stable content" {
		t.Fatalf("b content=%q, want=stable content", bData)
	}
}

// Property 10 / scenario S6: concurrent tasks reading and writing a shared
// set of homogeneous-content files never observe a torn write.
func TestFS_ConcurrencyInvariant(t *testing.T) {
	fs := newTestFS(t)
	root := fs.Root()

	const fileCount = 4

	files := make([]vfscore.File, fileCount)

	for i := range fileCount {
		f, err := root.CreateFile(fmt.Sprintf("f%d", i))
		if err != nil {
			t.Fatalf("CreateFile %d: %v", i, err)
		}

		if err := f.Write([]byte{0}); err != nil {
			t.Fatalf("initial Write %d: %v", i, err)
		}

		files[i] = f
	}

	const tasks = 4
	const iterations = 300

	var wg sync.WaitGroup

	for taskID := range tasks {
		wg.Add(1)

		go func(seed int) {
			defer wg.Done()

			for i := range iterations {
				f := files[(seed+i)%fileCount]

				if i%5 == 0 {
					k := byte((seed + i) % 251)
					data := bytes.Repeat([]byte{k}, int(k)+1)

					if err := f.Write(data); err != nil {
						t.Errorf("Write: %v", err)

						return
					}

					continue
				}

				data, err := f.Read()
				if err != nil {
					t.Errorf("Read: %v", err)

					return
				}

				if len(data) == 0 {
					t.Errorf("read empty content")

					return
				}

				k := data[0]
				if int(k)+1 != len(data) {
					t.Errorf("torn read: len=%d, want=%d", len(data), int(k)+1)

					return
				}

				for _, b := range data {
					if b != k {
						t.Errorf("torn read: byte=%d, want=%d", b, k)

						return
					}
				}
			}
		}(taskID)
	}

	wg.Wait()
}
