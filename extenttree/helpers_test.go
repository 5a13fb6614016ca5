package extenttree

import (
	"encoding/binary"
	"testing"

	"github.com/diskfs/extenttree/fsgeom"
	"github.com/diskfs/extenttree/iostore"
	"github.com/diskfs/extenttree/testhelper"
	"github.com/google/uuid"
)

const (
	testInodeSize = 128
	testBlockSize = 4096
	testIno       = 1
)

// rawHeader builds the 12-byte on-disk form of a header for test fixtures.
func rawHeader(entries, max, depth int, gen uint32) []byte {
	buf := make([]byte, headerSize)
	header{Magic: extMagic, Entries: uint16(entries), Max: uint16(max), Depth: uint16(depth), Generation: gen}.encodeInto(buf)
	return buf
}

func rawExtent(lblk uint32, length uint16, pblk uint64) []byte {
	buf := make([]byte, recordSize)
	extentRecord{EeBlock: lblk, EeLen: length, EeStartHi: uint16(pblk >> 32), EeStart: uint32(pblk)}.encodeInto(buf)
	return buf
}

func rawIndex(lblk uint32, pblk uint64) []byte {
	buf := make([]byte, recordSize)
	indexRecord{EiBlock: lblk, EiLeaf: uint32(pblk), EiLeafHi: uint16(pblk >> 32)}.encodeInto(buf)
	return buf
}

// fixture bundles the wiring a test needs to Open a handle: backing
// storage, geometry, and the two I/O collaborators.
type fixture struct {
	t        *testing.T
	storage  *testhelper.MemStorage
	geometry fsgeom.Geometry
	inodes   *iostore.FileInodeStore
	blocks   *iostore.FileBlockIO
}

// newFixture allocates storage for one inode plus numBlocks dedicated
// node blocks, and writes fileSize into the inode's size fields.
func newFixture(t *testing.T, numBlocks int, fileSize uint64, readWrite bool) *fixture {
	t.Helper()
	storage := testhelper.NewMemStorage(testInodeSize+numBlocks*testBlockSize, false)

	geometry, err := fsgeom.New(testBlockSize, testInodeSize, 16, readWrite, false, uuid.Nil)
	if err != nil {
		t.Fatalf("fsgeom.New: %v", err)
	}

	f := &fixture{
		t:        t,
		storage:  storage,
		geometry: geometry,
		inodes:   iostore.NewFileInodeStore(storage, geometry, 0),
		blocks:   iostore.NewFileBlockIO(storage, geometry, testInodeSize),
	}

	inodeBuf := make([]byte, testInodeSize)
	binary.LittleEndian.PutUint32(inodeBuf[iSizeOffset:iSizeOffset+4], uint32(fileSize))
	binary.LittleEndian.PutUint32(inodeBuf[iSizeHighOffset:iSizeHighOffset+4], uint32(fileSize>>32))
	binary.LittleEndian.PutUint32(inodeBuf[iFlagsOffset:iFlagsOffset+4], inodeFlagExtents)
	if err := f.inodes.WriteInodeFull(testIno, inodeBuf); err != nil {
		t.Fatalf("seed WriteInodeFull: %v", err)
	}
	return f
}

// writeRoot installs root bytes (header + records, total <= 60 bytes) at
// the inode's inline extent region.
func (f *fixture) writeRoot(root []byte) {
	f.t.Helper()
	buf := make([]byte, testInodeSize)
	if err := f.inodes.ReadInodeFull(testIno, buf); err != nil {
		f.t.Fatalf("readback ReadInodeFull: %v", err)
	}
	copy(buf[iBlockOffset:iBlockOffset+iBlockLen], root)
	if err := f.inodes.WriteInodeFull(testIno, buf); err != nil {
		f.t.Fatalf("writeRoot WriteInodeFull: %v", err)
	}
}

// writeBlock installs a node's bytes at physical block pblk.
func (f *fixture) writeBlock(pblk uint64, node []byte) {
	f.t.Helper()
	buf := make([]byte, testBlockSize)
	copy(buf, node)
	if err := f.blocks.WriteBlock(pblk, 1, buf); err != nil {
		f.t.Fatalf("writeBlock: %v", err)
	}
}

func (f *fixture) open(t *testing.T) *Handle {
	t.Helper()
	h, err := Open(f.inodes, f.blocks, f.geometry, testIno)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return h
}

// concat joins byte slices for building a root/node buffer out of a
// header and its records.
func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// singleExtentFixture builds a depth-0, single-record inode:
// {lblk=0, len=4, pblk=100}.
func singleExtentFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, 0, 4*testBlockSize, true)
	root := concat(rawHeader(1, 4, 0, 1), rawExtent(0, 4, 100))
	f.writeRoot(root)
	return f
}

// twoLeafFixture builds a depth-1 two-child tree with four leaf extents
// split evenly across the two children.
func twoLeafFixture(t *testing.T) *fixture {
	t.Helper()
	const pblkA, pblkB = 0, 1
	f := newFixture(t, 2, 16*testBlockSize, true)

	root := concat(rawHeader(2, 4, 1, 1), rawIndex(0, pblkA), rawIndex(8, pblkB))
	f.writeRoot(root)

	childA := concat(rawHeader(2, 340, 0, 1), rawExtent(0, 4, 100), rawExtent(4, 4, 200))
	f.writeBlock(pblkA, childA)

	childB := concat(rawHeader(2, 340, 0, 1), rawExtent(8, 4, 300), rawExtent(12, 4, 400))
	f.writeBlock(pblkB, childB)

	return f
}
