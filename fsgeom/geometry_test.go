package fsgeom

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewValidatesInputs(t *testing.T) {
	tests := []struct {
		name        string
		blockSize   uint32
		inodeSize   uint32
		inodesCount uint32
		wantErr     bool
	}{
		{"valid", 4096, 128, 16, false},
		{"block size too small", 16, 128, 16, true},
		{"zero inode size", 4096, 0, 16, true},
		{"zero inodes count", 4096, 128, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.blockSize, tt.inodeSize, tt.inodesCount, true, false, uuid.Nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidInode(t *testing.T) {
	g, err := New(4096, 128, 16, true, false, uuid.Nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.ValidInode(0) {
		t.Fatal("ValidInode(0) = true, want false")
	}
	if !g.ValidInode(1) {
		t.Fatal("ValidInode(1) = false, want true")
	}
	if !g.ValidInode(16) {
		t.Fatal("ValidInode(16) = false, want true")
	}
	if g.ValidInode(17) {
		t.Fatal("ValidInode(17) = true, want false")
	}
}
