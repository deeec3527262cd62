package storage

import (
	"container/heap"
	"fmt"
	"os"

	"github.com/natefinch/atomic"

	"github.com/vfsfile/filevfs/internal/format"
)

// defragQueue is a min-heap of pending fragments, ordered by their old
// data position. Children of a fragment are only pushed once that
// fragment has been popped, so the pop order is a parent-before-child
// traversal of the live tree in which, among pending fragments, the one
// with the lowest old data position always comes next.
type defragQueue []*Fragment

func (q defragQueue) Len() int { return len(q) }
func (q defragQueue) Less(i, j int) bool {
	return q[i].Reference.DataPosition < q[j].Reference.DataPosition
}
func (q defragQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *defragQueue) Push(x any)        { *q = append(*q, x.(*Fragment)) } //nolint:forcetypeassert
func (q *defragQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]

	return item
}

// defragment runs at the end of every write-locked operation. If the
// live/storage efficiency ratio is already at or above the threshold it
// is a no-op; otherwise it rewrites the backing file into a compacted
// sibling and atomically replaces the original with it.
func (e *Engine) defragment(fc *Controller) error {
	root, err := fc.ReadFragmentAt(0, nil)
	if err != nil {
		return err
	}

	storageSize, err := fc.Size()
	if err != nil {
		return err
	}

	if storageSize == 0 {
		return nil
	}

	live := root.TotalSizeBytes()
	if float64(storageSize)*defragEfficiencyThreshold <= float64(live) {
		return nil
	}

	order, oldToNew, err := planDefrag(fc, root)
	if err != nil {
		return err
	}

	defragPath := e.path + ".defrag"

	newFile, err := e.fs.OpenFile(defragPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, e.perm)
	if err != nil {
		return fmt.Errorf("%w: open defrag sidecar: %v", ErrInternal, err)
	}

	newFC := NewController(newFile)

	if err := writeDefrag(fc, newFC, order, oldToNew); err != nil {
		_ = newFC.Close()
		_ = e.fs.Remove(defragPath)

		return err
	}

	if err := newFC.Close(); err != nil {
		_ = e.fs.Remove(defragPath)

		return err
	}

	if err := atomic.ReplaceFile(defragPath, e.path); err != nil {
		return fmt.Errorf("%w: replace backing file: %v", ErrInternal, err)
	}

	return nil
}

// planDefrag performs the BFS assignment pass: every live fragment gets a
// new data position, starting at 9 (the root always lands there since it
// is the sole seed of the traversal). Returns the fragments in pop order
// (parent before child) and the old->new data-position map.
func planDefrag(fc *Controller, root *Fragment) ([]*Fragment, map[int64]int64, error) {
	queue := &defragQueue{root}
	heap.Init(queue)

	var order []*Fragment

	oldToNew := make(map[int64]int64)

	cursor := int64(format.RefSize)

	for queue.Len() > 0 {
		item := heap.Pop(queue).(*Fragment) //nolint:forcetypeassert

		oldToNew[item.Reference.DataPosition] = cursor
		cursor += item.MetaSizeBytes - format.RefSize

		order = append(order, item)

		if item.IsFolder() {
			for _, child := range item.Children {
				childFrag, err := fc.ReadFragmentAt(child.RefPosition, item)
				if err != nil {
					return nil, nil, err
				}

				heap.Push(queue, childFrag)
			}
		}
	}

	return order, oldToNew, nil
}

// writeDefrag replays the plan against the new backing file: the root
// reference first, then every fragment's record at its newly assigned
// position, with child references remapped through oldToNew.
func writeDefrag(oldFC, newFC *Controller, order []*Fragment, oldToNew map[int64]int64) error {
	if _, err := newFC.PutReference(0, format.MarkFolder, oldToNew[order[0].Reference.DataPosition]); err != nil {
		return err
	}

	for _, item := range order {
		newPos := oldToNew[item.Reference.DataPosition]

		if item.IsFile() {
			content, err := oldFC.ReadFileContent(item)
			if err != nil {
				return err
			}

			ref := format.Reference{Mark: format.MarkFile, DataPosition: newPos}
			if _, err := newFC.PutFileFragment(ref, item.Name, content, nil); err != nil {
				return err
			}

			continue
		}

		newChildren := make([]format.Reference, len(item.Children))
		for i, c := range item.Children {
			newChildren[i] = format.Reference{Mark: c.Ref.Mark, DataPosition: oldToNew[c.Ref.DataPosition]}
		}

		ref := format.Reference{Mark: format.MarkFolder, DataPosition: newPos}
		if _, err := newFC.PutFolderFragment(ref, item.Name, newChildren, item.ChildrenUsedSpace, nil); err != nil {
			return err
		}
	}

	return nil
}
