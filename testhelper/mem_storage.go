// Package testhelper provides fakes used by the extenttree and iostore
// test suites to stand in for a real backing device: a full
// github.com/diskfs/extenttree/backend.Storage implementation backed by
// a plain byte slice.
package testhelper

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/diskfs/extenttree/backend"
)

// MemStorage is an in-memory backend.Storage over a fixed-size byte
// slice, for tests that need a real Storage without touching disk.
type MemStorage struct {
	buf      []byte
	readOnly bool
	pos      int64
}

// NewMemStorage allocates a MemStorage of size bytes.
func NewMemStorage(size int, readOnly bool) *MemStorage {
	return &MemStorage{buf: make([]byte, size), readOnly: readOnly}
}

// Bytes exposes the underlying buffer directly, for tests that want to
// seed or assert on raw contents without going through ReadAt/WriteAt.
func (m *MemStorage) Bytes() []byte {
	return m.buf
}

var _ backend.Storage = (*MemStorage)(nil)

func (m *MemStorage) Stat() (fs.FileInfo, error) {
	return memFileInfo{size: int64(len(m.buf))}, nil
}

func (m *MemStorage) Read(b []byte) (int, error) {
	n, err := m.ReadAt(b, m.pos)
	m.pos += int64(n)
	return n, err
}

func (m *MemStorage) Close() error {
	return nil
}

// ReadAt follows the io.ReaderAt contract: a read that cannot fill b
// because it runs past the end of the buffer returns io.EOF, letting
// callers (like iostore.FileBlockIO) distinguish "ran off the end" from
// a genuine I/O failure.
func (m *MemStorage) ReadAt(b []byte, offset int64) (int, error) {
	if offset < 0 {
		return 0, fmt.Errorf("testhelper: negative read offset %d", offset)
	}
	if offset >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(b, m.buf[offset:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemStorage) WriteAt(b []byte, offset int64) (int, error) {
	if m.readOnly {
		return 0, backend.ErrIncorrectOpenMode
	}
	if offset < 0 || offset+int64(len(b)) > int64(len(m.buf)) {
		return 0, fmt.Errorf("testhelper: write range [%d,%d) out of range", offset, offset+int64(len(b)))
	}
	return copy(m.buf[offset:], b), nil
}

func (m *MemStorage) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case os.SEEK_SET:
		base = 0
	case os.SEEK_CUR:
		base = m.pos
	case os.SEEK_END:
		base = int64(len(m.buf))
	default:
		return 0, fmt.Errorf("testhelper: invalid whence %d", whence)
	}
	m.pos = base + offset
	return m.pos, nil
}

// Sys reports ErrNotSuitable: a MemStorage has no backing *os.File for
// ioctl-style calls.
func (m *MemStorage) Sys() (*os.File, error) {
	return nil, backend.ErrNotSuitable
}

// Writable returns m itself when not opened read-only.
func (m *MemStorage) Writable() (backend.WritableFile, error) {
	if m.readOnly {
		return nil, backend.ErrIncorrectOpenMode
	}
	return m, nil
}

type memFileInfo struct {
	size int64
}

func (i memFileInfo) Name() string       { return "memstorage" }
func (i memFileInfo) Size() int64        { return i.size }
func (i memFileInfo) Mode() fs.FileMode  { return 0o600 }
func (i memFileInfo) ModTime() time.Time { return time.Time{} }
func (i memFileInfo) IsDir() bool        { return false }
func (i memFileInfo) Sys() interface{}   { return nil }
