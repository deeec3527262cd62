package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/vfsfile/filevfs/internal/format"
	"github.com/vfsfile/filevfs/internal/hostfile"
)

// folderFixedHeaderSize mirrors format's children_used_space(8) +
// children_count(4) prefix, needed to compute child reference offsets
// without re-decoding the whole record.
const folderFixedHeaderSize = 12

// Controller is a thin typed cursor over one open handle to the backing
// file. It knows how to turn byte offsets into references and fragments
// and back; it has no notion of paths, locks, or trees.
type Controller struct {
	file hostfile.File
	pos  int64
}

// NewController wraps an already-open file handle.
func NewController(f hostfile.File) *Controller {
	return &Controller{file: f}
}

// Position returns the controller's current cursor offset.
func (c *Controller) Position() int64 { return c.pos }

// Seek moves the cursor to pos without performing I/O.
func (c *Controller) Seek(pos int64) { c.pos = pos }

// Size returns the current length of the backing file.
func (c *Controller) Size() (int64, error) {
	info, err := c.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: stat: %v", ErrInternal, err)
	}

	return info.Size(), nil
}

// Close flushes and releases the underlying handle.
func (c *Controller) Close() error {
	if err := c.file.Sync(); err != nil {
		_ = c.file.Close()

		return fmt.Errorf("%w: sync: %v", ErrInternal, err)
	}

	if err := c.file.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrInternal, err)
	}

	return nil
}

func (c *Controller) readAt(pos int64, n int) ([]byte, error) {
	buf := make([]byte, n)

	read, err := c.file.ReadAt(buf, pos)
	if read == n {
		return buf, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShortRead, err)
	}

	return nil, ErrShortRead
}

func (c *Controller) writeAt(pos int64, buf []byte) error {
	_, err := c.file.WriteAt(buf, pos)
	if err != nil {
		return fmt.Errorf("%w: write: %v", ErrInternal, err)
	}

	return nil
}

// ReadReference decodes 9 bytes at the controller's current position and
// advances past them.
func (c *Controller) ReadReference() (format.Reference, error) {
	buf, err := c.readAt(c.pos, format.RefSize)
	if err != nil {
		return format.Reference{}, err
	}

	ref, err := format.DecodeReference(buf)
	if err != nil {
		return format.Reference{}, fmt.Errorf("%w: %v", ErrCorruptFormat, err)
	}

	c.pos += format.RefSize

	return ref, nil
}

// PutReference writes a 9-byte reference at pos.
func (c *Controller) PutReference(pos int64, mark byte, dataPosition int64) (format.Reference, error) {
	buf := format.EncodeReference(mark, dataPosition)
	if err := c.writeAt(pos, buf[:]); err != nil {
		return format.Reference{}, err
	}

	return format.Reference{Mark: mark, DataPosition: dataPosition}, nil
}

// ReadFragment decodes the metadata record a reference points to and
// returns a fully populated fragment. File fragments read name and size
// only; content is fetched separately via ReadFileContent.
func (c *Controller) ReadFragment(ref format.Reference, refPosition int64, parent *Fragment) (*Fragment, error) {
	if ref.IsFile() {
		return c.readFileFragment(ref, refPosition, parent)
	}

	return c.readFolderFragment(ref, refPosition, parent)
}

func (c *Controller) readFileFragment(ref format.Reference, refPosition int64, parent *Fragment) (*Fragment, error) {
	header, err := c.readAt(ref.DataPosition, format.FileHeaderSize(""))
	if err != nil {
		return nil, err
	}

	fullSize, err := peekFileHeaderSize(header)
	if err != nil {
		return nil, err
	}

	if fullSize > len(header) {
		header, err = c.readAt(ref.DataPosition, fullSize)
		if err != nil {
			return nil, err
		}
	}

	fh, _, err := format.DecodeFileHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFormat, err)
	}

	return &Fragment{
		Reference:     ref,
		RefPosition:   refPosition,
		Parent:        parent,
		Name:          fh.Name,
		FileSize:      fh.Size,
		MetaSizeBytes: int64(format.FileHeaderSize(fh.Name)) + fh.Size + format.RefSize,
	}, nil
}

// peekFileHeaderSize reads the declared name length from a short buffer
// (at least 2 bytes) and returns the full header size
// (name_len:2 + name + file_size:8).
func peekFileHeaderSize(buf []byte) (int, error) {
	if len(buf) < 2 {
		return 0, fmt.Errorf("%w: file header truncated", ErrCorruptFormat)
	}

	nameLen := int(buf[0])<<8 | int(buf[1])

	return 2 + nameLen + 8, nil
}

func (c *Controller) readFolderFragment(ref format.Reference, refPosition int64, parent *Fragment) (*Fragment, error) {
	fixed, err := c.readAt(ref.DataPosition, folderFixedHeaderSize)
	if err != nil {
		return nil, err
	}

	childCount := int(binary.BigEndian.Uint32(fixed[8:12]))

	childrenBuf, err := c.readAt(ref.DataPosition+folderFixedHeaderSize, childCount*format.RefSize+2)
	if err != nil {
		return nil, err
	}

	nameLen := int(binary.BigEndian.Uint16(childrenBuf[len(childrenBuf)-2:]))

	fullSize := format.FolderRecordSize(childCount, nameLen)

	full, err := c.readAt(ref.DataPosition, fullSize)
	if err != nil {
		return nil, err
	}

	rec, err := format.DecodeFolderRecord(full)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFormat, err)
	}

	children := make([]ChildRef, len(rec.Children))
	for i, child := range rec.Children {
		children[i] = ChildRef{
			Ref:         child,
			RefPosition: ref.DataPosition + folderFixedHeaderSize + int64(i)*format.RefSize,
		}
	}

	return &Fragment{
		Reference:         ref,
		RefPosition:       refPosition,
		Parent:            parent,
		Name:              rec.Name,
		ChildrenUsedSpace: rec.ChildrenUsedSpace,
		Children:          children,
		MetaSizeBytes:     int64(fullSize) + format.RefSize,
	}, nil
}

// ReadFragmentAt is the entry point used by navigation: it seeks to
// refPosition, decodes the reference stored there, and delegates to
// ReadFragment — except when the backing file is entirely empty and
// refPosition is 0, in which case it synthesizes the virtual, not-yet
// persisted root fragment.
func (c *Controller) ReadFragmentAt(refPosition int64, parent *Fragment) (*Fragment, error) {
	if refPosition == 0 {
		size, err := c.Size()
		if err != nil {
			return nil, err
		}

		if size == 0 {
			return &Fragment{
				Reference:   format.Reference{Mark: format.MarkFolder, DataPosition: format.Intangible},
				RefPosition: format.Intangible,
				Parent:      parent,
				Name:        "",
			}, nil
		}
	}

	c.Seek(refPosition)

	ref, err := c.ReadReference()
	if err != nil {
		return nil, err
	}

	return c.ReadFragment(ref, refPosition, parent)
}

// ReadFileContent reads exactly fragment.FileSize bytes of content.
func (c *Controller) ReadFileContent(fragment *Fragment) ([]byte, error) {
	contentOffset := fragment.Reference.DataPosition + int64(format.FileHeaderSize(fragment.Name))

	buf, err := c.readAt(contentOffset, int(fragment.FileSize))
	if err != nil {
		return nil, err
	}

	return buf, nil
}

// PutFileFragment writes a complete file metadata record at
// reference.DataPosition and returns the resulting fragment.
func (c *Controller) PutFileFragment(reference format.Reference, name string, data []byte, parent *Fragment) (*Fragment, error) {
	header := format.EncodeFileHeader(name, int64(len(data)))
	record := append(header, data...)

	if err := c.writeAt(reference.DataPosition, record); err != nil {
		return nil, err
	}

	return &Fragment{
		Reference:     reference,
		RefPosition:   format.Intangible,
		Parent:        parent,
		Name:          name,
		FileSize:      int64(len(data)),
		MetaSizeBytes: int64(len(record)) + format.RefSize,
	}, nil
}

// PutFolderFragment writes a complete folder metadata record at
// reference.DataPosition and returns the resulting fragment.
func (c *Controller) PutFolderFragment(
	reference format.Reference,
	name string,
	children []format.Reference,
	childrenUsedSpace int64,
	parent *Fragment,
) (*Fragment, error) {
	rec := format.FolderRecord{ChildrenUsedSpace: childrenUsedSpace, Children: children, Name: name}
	buf := format.EncodeFolderRecord(rec)

	if err := c.writeAt(reference.DataPosition, buf); err != nil {
		return nil, err
	}

	childRefs := make([]ChildRef, len(children))
	for i, ref := range children {
		childRefs[i] = ChildRef{Ref: ref, RefPosition: reference.DataPosition + folderFixedHeaderSize + int64(i)*format.RefSize}
	}

	return &Fragment{
		Reference:         reference,
		RefPosition:       format.Intangible,
		Parent:            parent,
		Name:              name,
		ChildrenUsedSpace: childrenUsedSpace,
		Children:          childRefs,
		MetaSizeBytes:     int64(len(buf)) + format.RefSize,
	}, nil
}

// UpdateFileContent rewrites a file's content in place when it fits within
// the old footprint, or appends a new record and redirects the external
// reference when it grows. Either way the size delta is propagated to
// every ancestor's children_used_space.
func (c *Controller) UpdateFileContent(fragment *Fragment, data []byte) (*Fragment, error) {
	oldSize := fragment.FileSize
	newSize := int64(len(data))
	delta := newSize - oldSize

	var newFragment *Fragment

	if newSize <= oldSize {
		header := format.EncodeFileHeader(fragment.Name, newSize)
		record := append(header, data...)

		if err := c.writeAt(fragment.Reference.DataPosition, record); err != nil {
			return nil, err
		}

		newFragment = &Fragment{
			Reference:     fragment.Reference,
			RefPosition:   fragment.RefPosition,
			Parent:        fragment.Parent,
			Name:          fragment.Name,
			FileSize:      newSize,
			MetaSizeBytes: int64(len(record)) + format.RefSize,
		}
	} else {
		dataPos, err := c.Size()
		if err != nil {
			return nil, err
		}

		header := format.EncodeFileHeader(fragment.Name, newSize)
		record := append(header, data...)

		if err := c.writeAt(dataPos, record); err != nil {
			return nil, err
		}

		ref, err := c.PutReference(fragment.RefPosition, format.MarkFile, dataPos)
		if err != nil {
			return nil, err
		}

		newFragment = &Fragment{
			Reference:     ref,
			RefPosition:   fragment.RefPosition,
			Parent:        fragment.Parent,
			Name:          fragment.Name,
			FileSize:      newSize,
			MetaSizeBytes: int64(len(record)) + format.RefSize,
		}
	}

	if err := c.PropagateUsedSpaceChange(newFragment, delta); err != nil {
		return nil, err
	}

	return newFragment, nil
}

// PropagateUsedSpaceChange walks upward via parent fragments, rewriting
// the first 8 bytes of every ancestor's folder record to
// old_children_used_space + delta.
func (c *Controller) PropagateUsedSpaceChange(fragment *Fragment, delta int64) error {
	if delta == 0 || fragment == nil {
		return nil
	}

	for ancestor := fragment.Parent; ancestor != nil; ancestor = ancestor.Parent {
		newUsed := ancestor.ChildrenUsedSpace + delta

		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(newUsed))

		if err := c.writeAt(ancestor.Reference.DataPosition, buf); err != nil {
			return err
		}

		ancestor.ChildrenUsedSpace = newUsed
	}

	return nil
}
