// Package format encodes and decodes the binary records that make up the
// backing file: 9-byte references and variable-length file/folder metadata
// records. Byte order is big-endian throughout, per the on-disk contract;
// this is the one place that differs from most teacher-style binary
// formats (which lean little-endian) and it is a deliberate, not
// accidental, choice — see the on-disk format note in the design ledger.
//
// This package knows nothing about trees, locks, or paths. It only turns
// bytes into typed values and back.
package format

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// RefSize is the fixed on-disk size of a Reference.
const RefSize = 9

// Reference marks.
const (
	MarkFile   byte = 'C' // 0x43
	MarkFolder byte = 'F' // 0x46
)

// Intangible marks a Reference that has not yet been persisted. It never
// appears on disk.
const Intangible int64 = -239

// ErrInvalidMark is returned when a decoded reference's mark byte is
// neither MarkFile nor MarkFolder.
var ErrInvalidMark = errors.New("format: reference mark is neither 'C' nor 'F'")

// ErrBufferTooSmall is returned by decode routines when fewer bytes were
// supplied than the record declares it needs.
var ErrBufferTooSmall = errors.New("format: buffer too small for record")

// Reference is the fixed 9-byte pointer from one record to another.
type Reference struct {
	Mark         byte
	DataPosition int64
}

// IsFolder reports whether the reference points at a folder record.
func (r Reference) IsFolder() bool { return r.Mark == MarkFolder }

// IsFile reports whether the reference points at a file record.
func (r Reference) IsFile() bool { return r.Mark == MarkFile }

// EncodeReference writes mark and dataPosition into a 9-byte buffer.
func EncodeReference(mark byte, dataPosition int64) [RefSize]byte {
	var buf [RefSize]byte

	buf[0] = mark
	binary.BigEndian.PutUint64(buf[1:], uint64(dataPosition))

	return buf
}

// DecodeReference parses a 9-byte buffer into a Reference.
func DecodeReference(buf []byte) (Reference, error) {
	if len(buf) < RefSize {
		return Reference{}, ErrBufferTooSmall
	}

	mark := buf[0]
	if mark != MarkFile && mark != MarkFolder {
		return Reference{}, ErrInvalidMark
	}

	dataPosition := int64(binary.BigEndian.Uint64(buf[1:RefSize]))

	return Reference{Mark: mark, DataPosition: dataPosition}, nil
}

// nameHeaderSize is the length-prefix width for UTF-8 names: u16.
const nameHeaderSize = 2

// FileHeader is the fixed-shape part of a file metadata record, excluding
// the name and content bytes.
type FileHeader struct {
	Name string
	Size int64
}

// EncodeFileHeader returns `name_len:2 | name | file_size:8`. Content is
// appended separately by the caller.
func EncodeFileHeader(name string, size int64) []byte {
	nameBytes := []byte(name)
	buf := make([]byte, nameHeaderSize+len(nameBytes)+8)

	binary.BigEndian.PutUint16(buf[0:2], uint16(len(nameBytes)))
	copy(buf[2:2+len(nameBytes)], nameBytes)
	binary.BigEndian.PutUint64(buf[2+len(nameBytes):], uint64(size))

	return buf
}

// DecodeFileHeader parses `name_len:2 | name | file_size:8` from the start
// of buf and returns the header plus the number of bytes it consumed.
func DecodeFileHeader(buf []byte) (FileHeader, int, error) {
	if len(buf) < nameHeaderSize {
		return FileHeader{}, 0, ErrBufferTooSmall
	}

	nameLen := int(binary.BigEndian.Uint16(buf[0:2]))
	need := nameHeaderSize + nameLen + 8

	if len(buf) < need {
		return FileHeader{}, 0, ErrBufferTooSmall
	}

	name := string(buf[nameHeaderSize : nameHeaderSize+nameLen])
	size := int64(binary.BigEndian.Uint64(buf[nameHeaderSize+nameLen : need]))

	return FileHeader{Name: name, Size: size}, need, nil
}

// FileHeaderSize returns the encoded size of a file header for the given
// name, excluding content bytes.
func FileHeaderSize(name string) int {
	return nameHeaderSize + len(name) + 8
}

// FolderRecord is the fully decoded shape of a folder metadata record.
type FolderRecord struct {
	ChildrenUsedSpace int64
	Children          []Reference
	Name              string
}

const folderFixedHeaderSize = 8 + 4 // children_used_space:8 | children_count:4

// EncodeFolderRecord returns the full
// `children_used_space:8 | children_count:4 | child_refs:9*n | name_len:2 | name`
// record.
func EncodeFolderRecord(rec FolderRecord) []byte {
	nameBytes := []byte(rec.Name)
	size := FolderRecordSize(len(rec.Children), len(nameBytes))
	buf := make([]byte, size)

	binary.BigEndian.PutUint64(buf[0:8], uint64(rec.ChildrenUsedSpace))
	binary.BigEndian.PutUint32(buf[8:12], uint32(len(rec.Children)))

	offset := folderFixedHeaderSize
	for _, child := range rec.Children {
		ref := EncodeReference(child.Mark, child.DataPosition)
		copy(buf[offset:offset+RefSize], ref[:])
		offset += RefSize
	}

	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(nameBytes)))
	copy(buf[offset+2:], nameBytes)

	return buf
}

// DecodeFolderRecord parses a folder record from buf.
func DecodeFolderRecord(buf []byte) (FolderRecord, error) {
	if len(buf) < folderFixedHeaderSize {
		return FolderRecord{}, ErrBufferTooSmall
	}

	usedSpace := int64(binary.BigEndian.Uint64(buf[0:8]))
	count := int(binary.BigEndian.Uint32(buf[8:12]))

	offset := folderFixedHeaderSize

	need := offset + count*RefSize + nameHeaderSize
	if len(buf) < need {
		return FolderRecord{}, ErrBufferTooSmall
	}

	children := make([]Reference, count)

	for i := range count {
		ref, err := DecodeReference(buf[offset : offset+RefSize])
		if err != nil {
			return FolderRecord{}, fmt.Errorf("child %d: %w", i, err)
		}

		children[i] = ref
		offset += RefSize
	}

	nameLen := int(binary.BigEndian.Uint16(buf[offset : offset+2]))
	offset += 2

	if len(buf) < offset+nameLen {
		return FolderRecord{}, ErrBufferTooSmall
	}

	name := string(buf[offset : offset+nameLen])

	return FolderRecord{ChildrenUsedSpace: usedSpace, Children: children, Name: name}, nil
}

// FolderRecordSize returns the encoded size of a folder record with the
// given number of children and name length.
func FolderRecordSize(childCount, nameLen int) int {
	return folderFixedHeaderSize + childCount*RefSize + nameHeaderSize + nameLen
}
