package storage

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/vfsfile/filevfs/internal/hostfile"
)

// TestEngine_Defragment_ReclaimsSpace exercises the threshold path directly:
// grow one file enough times that stale append-and-redirect records push
// the live/storage ratio below defragEfficiencyThreshold, then confirms the
// write-locked operations keep shrinking the backing file back down.
func TestEngine_Defragment_ReclaimsSpace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backing.vfs")
	fs := hostfile.NewReal()

	e := NewEngine(fs, path)

	createFile(t, e, "/", "churn", []byte(strings.Repeat("x", 64)))

	for i := range 50 {
		data := []byte(strings.Repeat(string(rune('a'+i%26)), 64+i+1))

		err := e.WithWriteLock(func(fc *Controller) error {
			frag, err := e.Navigate(fc, "/churn")
			if err != nil {
				return err
			}

			_, err = fc.UpdateFileContent(frag, data)

			return err
		})
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}

	info, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	// 50 growing rewrites, each appended as a new record, dwarf the live
	// content; the backing file must not have grown anywhere near 50x a
	// single record's footprint once defragmentation has been kicking in
	// along the way.
	if info.Size() > 2000 {
		t.Fatalf("backing file size=%d, expected defragmentation to bound growth", info.Size())
	}

	if got, want := string(readFile(t, e, "/churn")), strings.Repeat(string(rune('a'+49%26)), 64+49+1); got != want {
		t.Fatalf("content=%q, want=%q", got, want)
	}
}

func TestEngine_Defragment_RootAlwaysAtNine(t *testing.T) {
	e := newTestEngine(t)

	createFile(t, e, "/", "a", []byte(strings.Repeat("y", 200)))

	for i := range 20 {
		err := e.WithWriteLock(func(fc *Controller) error {
			frag, err := e.Navigate(fc, "/a")
			if err != nil {
				return err
			}

			_, err = fc.UpdateFileContent(frag, []byte(strings.Repeat(string(rune('a'+i)), 200+i+1)))

			return err
		})
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}

	err := e.WithReadLock(func(fc *Controller) error {
		root, err := e.Navigate(fc, "/")
		if err != nil {
			return err
		}

		if root.Reference.DataPosition != 9 {
			t.Fatalf("root data position=%d, want=9", root.Reference.DataPosition)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("WithReadLock: %v", err)
	}
}

func TestEngine_Defragment_EmptyTreeIsNoop(t *testing.T) {
	e := newTestEngine(t)

	err := e.WithWriteLock(func(fc *Controller) error {
		return nil
	})
	if err != nil {
		t.Fatalf("WithWriteLock on empty tree: %v", err)
	}
}
