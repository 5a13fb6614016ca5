package iostore

import (
	"errors"
	"fmt"
	"io"

	"github.com/diskfs/extenttree/backend"
	"github.com/diskfs/extenttree/fsgeom"
)

// ErrBlockUnavailable is returned by ReadBlock when the requested physical
// block lies outside the bounds of the backing storage. A handle opened
// against fsgeom.Geometry.ImageMode treats this as "block not captured"
// and substitutes a zero-filled buffer instead of failing the descent;
// outside image mode it is a genuine I/O error.
var ErrBlockUnavailable = errors.New("iostore: block not available in backing storage")

// BlockIO reads and writes fixed-size physical blocks by address.
type BlockIO interface {
	// ReadBlock reads count blocks starting at pblk into buf, which must
	// be count*geometry.BlockSize bytes.
	ReadBlock(pblk uint64, count uint32, buf []byte) error
	// WriteBlock writes buf back starting at physical block pblk.
	WriteBlock(pblk uint64, count uint32, buf []byte) error
}

// FileBlockIO is the reference BlockIO implementation: byteStart :=
// base + pblk*blockSize. The block device region is windowed off the
// backing storage with backend.Sub; the window's size is left
// open-ended since, unlike the inode table, the device region runs to
// the end of storage.
type FileBlockIO struct {
	storage  backend.Storage
	geometry fsgeom.Geometry
}

// NewFileBlockIO builds a FileBlockIO. blockDevBase is the byte offset,
// from the start of storage, of physical block 0.
func NewFileBlockIO(storage backend.Storage, geometry fsgeom.Geometry, blockDevBase int64) *FileBlockIO {
	return &FileBlockIO{
		storage:  backend.Sub(storage, blockDevBase, 0),
		geometry: geometry,
	}
}

func (b *FileBlockIO) offsetFor(pblk uint64) int64 {
	return int64(pblk) * int64(b.geometry.BlockSize)
}

// ReadBlock implements BlockIO.
func (b *FileBlockIO) ReadBlock(pblk uint64, count uint32, buf []byte) error {
	want := int(count) * int(b.geometry.BlockSize)
	if len(buf) != want {
		return fmt.Errorf("iostore: read buffer size %d does not match %d blocks of size %d", len(buf), count, b.geometry.BlockSize)
	}
	n, err := b.storage.ReadAt(buf, b.offsetFor(pblk))
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("iostore: reading block %d: %w", pblk, ErrBlockUnavailable)
	}
	if err != nil {
		return fmt.Errorf("iostore: reading block %d: %w", pblk, err)
	}
	if n != want {
		return fmt.Errorf("iostore: short read of block %d: got %d of %d bytes: %w", pblk, n, want, ErrBlockUnavailable)
	}
	return nil
}

// WriteBlock implements BlockIO.
func (b *FileBlockIO) WriteBlock(pblk uint64, count uint32, buf []byte) error {
	want := int(count) * int(b.geometry.BlockSize)
	if len(buf) != want {
		return fmt.Errorf("iostore: write buffer size %d does not match %d blocks of size %d", len(buf), count, b.geometry.BlockSize)
	}
	w, err := b.storage.Writable()
	if err != nil {
		return fmt.Errorf("iostore: block %d not writable: %w", pblk, err)
	}
	n, err := w.WriteAt(buf, b.offsetFor(pblk))
	if err != nil {
		return fmt.Errorf("iostore: writing block %d: %w", pblk, err)
	}
	if n != want {
		return fmt.Errorf("iostore: short write of block %d: wrote %d of %d bytes", pblk, n, want)
	}
	return nil
}
