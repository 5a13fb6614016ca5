package iostore

import (
	"bytes"
	"errors"
	"testing"

	"github.com/diskfs/extenttree/fsgeom"
	"github.com/diskfs/extenttree/testhelper"
	"github.com/google/uuid"
)

func testGeometry(t *testing.T) fsgeom.Geometry {
	t.Helper()
	g, err := fsgeom.New(64, 32, 4, true, false, uuid.Nil)
	if err != nil {
		t.Fatalf("fsgeom.New: %v", err)
	}
	return g
}

func TestFileInodeStoreRoundTrip(t *testing.T) {
	geometry := testGeometry(t)
	storage := testhelper.NewMemStorage(int(geometry.InodeSize)*int(geometry.InodesCount), false)
	store := NewFileInodeStore(storage, geometry, 0)

	want := bytes.Repeat([]byte{0xab}, int(geometry.InodeSize))
	if err := store.WriteInodeFull(2, want); err != nil {
		t.Fatalf("WriteInodeFull: %v", err)
	}

	got := make([]byte, geometry.InodeSize)
	if err := store.ReadInodeFull(2, got); err != nil {
		t.Fatalf("ReadInodeFull: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("ReadInodeFull = %x, want %x", got, want)
	}

	// inode 1 must remain untouched.
	other := make([]byte, geometry.InodeSize)
	if err := store.ReadInodeFull(1, other); err != nil {
		t.Fatalf("ReadInodeFull(1): %v", err)
	}
	if bytes.Equal(other, want) {
		t.Fatal("writing inode 2 clobbered inode 1")
	}
}

func TestFileBlockIOReadPastEndReturnsUnavailable(t *testing.T) {
	geometry := testGeometry(t)
	storage := testhelper.NewMemStorage(int(geometry.BlockSize), false) // room for block 0 only
	blocks := NewFileBlockIO(storage, geometry, 0)

	buf := make([]byte, geometry.BlockSize)
	if err := blocks.ReadBlock(5, 1, buf); !errors.Is(err, ErrBlockUnavailable) {
		t.Fatalf("ReadBlock(5) err = %v, want ErrBlockUnavailable", err)
	}
}

func TestFileBlockIORoundTrip(t *testing.T) {
	geometry := testGeometry(t)
	storage := testhelper.NewMemStorage(int(geometry.BlockSize)*4, false)
	blocks := NewFileBlockIO(storage, geometry, 0)

	want := bytes.Repeat([]byte{0x5a}, int(geometry.BlockSize))
	if err := blocks.WriteBlock(2, 1, want); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	got := make([]byte, geometry.BlockSize)
	if err := blocks.ReadBlock(2, 1, got); err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("ReadBlock = %x, want %x", got, want)
	}
}
