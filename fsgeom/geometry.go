// Package fsgeom models the filesystem-geometry collaborator that the
// extenttree core consumes through a narrow, read-only struct rather than a
// full superblock: just the handful of fields (block size, inode size,
// inode count, read-write and image-mode flags, volume UUID) that the
// core and its inode and block I/O need, without pulling in a real
// superblock parser.
package fsgeom

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Geometry carries the filesystem-level facts that extenttree.Open needs
// but does not derive itself: block size, inode size, how many inodes
// exist, whether the backing store is writable, and whether the handle is
// operating against a sparse "image mode" capture where sibling blocks
// outside the saved path may be absent.
type Geometry struct {
	// BlockSize is the size in bytes of a dedicated extent-tree node block.
	BlockSize uint32

	// InodeSize is the on-disk size in bytes of one inode record.
	InodeSize uint32

	// InodesCount is the total number of inodes in the table; inode
	// numbers above this value are rejected by Open.
	InodesCount uint32

	// ReadWrite reports whether mutation entry points (replace/insert/
	// delete) are permitted against this geometry.
	ReadWrite bool

	// ImageMode reports that the backing store is a partial image
	// capture: descents into blocks outside the saved path must be
	// satisfied with a zero-filled buffer rather than an I/O error.
	ImageMode bool

	// VolumeUUID identifies the filesystem volume this geometry was
	// read from. It is carried for diagnostics only; the core never
	// compares against it.
	VolumeUUID uuid.UUID
}

// New validates and returns a Geometry. BlockSize must be large enough to
// hold a header plus at least one record (the smallest real extent tree
// node); InodeSize and InodesCount must be nonzero. InodeSize is not
// checked against the inode layout extenttree reads.
func New(blockSize, inodeSize, inodesCount uint32, readWrite, imageMode bool, volumeUUID uuid.UUID) (Geometry, error) {
	const minBlockSize = 24 // header (12) + at least one 12-byte record
	if blockSize < minBlockSize {
		return Geometry{}, fmt.Errorf("fsgeom: block size %d smaller than minimum %d: %w", blockSize, minBlockSize, errInvalidGeometry)
	}
	if inodeSize == 0 {
		return Geometry{}, fmt.Errorf("fsgeom: inode size must be nonzero: %w", errInvalidGeometry)
	}
	if inodesCount == 0 {
		return Geometry{}, fmt.Errorf("fsgeom: inodes count must be nonzero: %w", errInvalidGeometry)
	}
	return Geometry{
		BlockSize:   blockSize,
		InodeSize:   inodeSize,
		InodesCount: inodesCount,
		ReadWrite:   readWrite,
		ImageMode:   imageMode,
		VolumeUUID:  volumeUUID,
	}, nil
}

var errInvalidGeometry = errors.New("fsgeom: invalid geometry")

// ValidInode reports whether ino is a legal inode number for this
// geometry: nonzero and no greater than InodesCount.
func (g Geometry) ValidInode(ino uint32) bool {
	return ino != 0 && ino <= g.InodesCount
}
