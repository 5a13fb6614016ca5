// Package iostore provides the two narrow I/O collaborators the extenttree
// core consumes: an inode store and a block I/O channel. Both are modeled
// as small interfaces over github.com/diskfs/extenttree/backend.Storage.
package iostore

import (
	"fmt"

	"github.com/diskfs/extenttree/backend"
	"github.com/diskfs/extenttree/fsgeom"
)

// InodeStore reads and writes whole inode records by number.
// extenttree never parses inode fields other than the size words, the
// flags word and the inline 60-byte extent-tree region, all of which
// live at fixed offsets within the returned buffer.
type InodeStore interface {
	// ReadInodeFull reads the full on-disk inode record for ino into buf,
	// which must be geometry.InodeSize bytes.
	ReadInodeFull(ino uint32, buf []byte) error
	// WriteInodeFull writes buf back as the full on-disk inode record for ino.
	WriteInodeFull(ino uint32, buf []byte) error
}

// FileInodeStore is the reference InodeStore implementation:
// byteStart := inodeTableOffset + (ino-1)*inodeSize, against an explicit
// inode-table base offset supplied by the caller instead of one derived
// from group descriptors, since extenttree has no group-descriptor
// collaborator of its own. The table itself is windowed off the backing
// storage with backend.Sub.
type FileInodeStore struct {
	storage  backend.Storage
	geometry fsgeom.Geometry
}

// NewFileInodeStore builds a FileInodeStore. inodeTableOffset is the byte
// offset, from the start of storage, at which inode number 1 begins.
func NewFileInodeStore(storage backend.Storage, geometry fsgeom.Geometry, inodeTableOffset int64) *FileInodeStore {
	tableSize := int64(geometry.InodeSize) * int64(geometry.InodesCount)
	return &FileInodeStore{
		storage:  backend.Sub(storage, inodeTableOffset, tableSize),
		geometry: geometry,
	}
}

func (s *FileInodeStore) offsetFor(ino uint32) int64 {
	return int64(ino-1) * int64(s.geometry.InodeSize)
}

// ReadInodeFull implements InodeStore.
func (s *FileInodeStore) ReadInodeFull(ino uint32, buf []byte) error {
	if uint32(len(buf)) != s.geometry.InodeSize {
		return fmt.Errorf("iostore: read buffer size %d does not match inode size %d", len(buf), s.geometry.InodeSize)
	}
	n, err := s.storage.ReadAt(buf, s.offsetFor(ino))
	if err != nil {
		return fmt.Errorf("iostore: reading inode %d: %w", ino, err)
	}
	if n != len(buf) {
		return fmt.Errorf("iostore: short read of inode %d: got %d of %d bytes", ino, n, len(buf))
	}
	return nil
}

// WriteInodeFull implements InodeStore.
func (s *FileInodeStore) WriteInodeFull(ino uint32, buf []byte) error {
	if uint32(len(buf)) != s.geometry.InodeSize {
		return fmt.Errorf("iostore: write buffer size %d does not match inode size %d", len(buf), s.geometry.InodeSize)
	}
	w, err := s.storage.Writable()
	if err != nil {
		return fmt.Errorf("iostore: inode %d not writable: %w", ino, err)
	}
	n, err := w.WriteAt(buf, s.offsetFor(ino))
	if err != nil {
		return fmt.Errorf("iostore: writing inode %d: %w", ino, err)
	}
	if n != len(buf) {
		return fmt.Errorf("iostore: short write of inode %d: wrote %d of %d bytes", ino, n, len(buf))
	}
	return nil
}
