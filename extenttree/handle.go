package extenttree

import (
	"encoding/binary"
	"fmt"

	"github.com/diskfs/extenttree/fsgeom"
	"github.com/diskfs/extenttree/iostore"
	"github.com/sirupsen/logrus"
)

// Fixed on-disk inode offsets, grounded in the real ext2/3/4 inode
// layout (not invented): i_size at 0x04, i_flags at 0x20, the 60-byte
// inline i_block region at 0x28, i_size_high at 0x6c.
const (
	iSizeOffset     = 0x04
	iFlagsOffset    = 0x20
	iBlockOffset    = 0x28
	iBlockLen       = 60
	iSizeHighOffset = 0x6c

	// inodeFlagExtents is EXT4_EXTENTS_FL: the inode uses an extent
	// tree rather than the legacy indirect-block mapping.
	inodeFlagExtents = 0x80000
)

// Handle is the extent-tree cursor: inode image, one path frame per
// depth, and the collaborators it reads/writes through. It owns the
// inode image and every per-level buffer exclusively; nothing is shared
// with the caller except via copies returned from Get.
type Handle struct {
	ino      uint32
	inodeBuf []byte

	frames     []*pathFrame
	level      int
	maxDepth   int
	generation uint32

	inodeStore iostore.InodeStore
	blockIO    iostore.BlockIO
	geometry   fsgeom.Geometry

	logger *logrus.Logger
}

// Option configures a Handle at Open time.
type Option func(*Handle)

// WithLogger overrides the handle's diagnostic logger, which otherwise
// defaults to logrus.StandardLogger(). The logger only ever receives
// Debug/Warn entries from non-fatal conditions (image-mode zero-fill,
// header-verify failures); it never gates control flow.
func WithLogger(logger *logrus.Logger) Option {
	return func(h *Handle) {
		h.logger = logger
	}
}

// Open loads the root of ino's extent tree and returns a Handle at the
// root level with no current record; a verb such as Root or NextLeaf
// positions it.
func Open(inodeStore iostore.InodeStore, blockIO iostore.BlockIO, geometry fsgeom.Geometry, ino uint32, opts ...Option) (*Handle, error) {
	if !geometry.ValidInode(ino) {
		return nil, newErr(ErrBadInodeNum, fmt.Errorf("inode %d", ino))
	}

	h := &Handle{
		ino:        ino,
		inodeStore: inodeStore,
		blockIO:    blockIO,
		geometry:   geometry,
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.inodeBuf = make([]byte, geometry.InodeSize)
	if err := inodeStore.ReadInodeFull(ino, h.inodeBuf); err != nil {
		return nil, fmt.Errorf("extenttree: reading inode %d: %w", ino, err)
	}

	flags := binary.LittleEndian.Uint32(h.inodeBuf[iFlagsOffset : iFlagsOffset+4])
	if flags&inodeFlagExtents == 0 {
		return nil, newErr(ErrNotExtentInode, fmt.Errorf("inode %d", ino))
	}

	root := h.inodeBuf[iBlockOffset : iBlockOffset+iBlockLen]
	rootHeader, err := verifyHeader(root, iBlockLen)
	if err != nil {
		h.logger.WithField("ino", ino).Warn("extenttree: root header failed verification")
		return nil, err
	}

	h.maxDepth = int(rootHeader.Depth)
	h.generation = rootHeader.Generation
	h.frames = make([]*pathFrame, h.maxDepth+1)

	rootFrame := &pathFrame{buf: root}
	rootFrame.setHeaderCounts(rootHeader)
	rootFrame.curr = noCurrent
	rootFrame.left = rootFrame.entries
	rootFrame.visitNum = 1
	rootFrame.endBlk = ceilDiv(h.fileSize(), uint64(geometry.BlockSize))
	h.frames[0] = rootFrame
	h.level = 0

	return h, nil
}

func (h *Handle) fileSize() uint64 {
	low := binary.LittleEndian.Uint32(h.inodeBuf[iSizeOffset : iSizeOffset+4])
	high := binary.LittleEndian.Uint32(h.inodeBuf[iSizeHighOffset : iSizeHighOffset+4])
	return uint64(high)<<32 | uint64(low)
}

func ceilDiv(n, d uint64) uint64 {
	if d == 0 {
		return 0
	}
	return (n + d - 1) / d
}

// Free releases the handle's frames and inode image. It is idempotent
// and safe to call on an already-freed or nil handle.
func (h *Handle) Free() {
	if h == nil {
		return
	}
	h.frames = nil
	h.inodeBuf = nil
}

// top returns the frame at the current level.
func (h *Handle) top() *pathFrame {
	return h.frames[h.level]
}

// CurrentNodeBytes returns a copy of the raw bytes of the node currently
// at the top of the path stack (the inline root region at level 0, or a
// dedicated node block otherwise). It exists for debug tooling built on
// top of the core, such as a hex dump of each node; the core itself
// never calls it.
func (h *Handle) CurrentNodeBytes() []byte {
	buf := h.top().buf
	cp := make([]byte, len(buf))
	copy(cp, buf)
	return cp
}

// ReadCorrespondingNode reads the bytes of the node at the cursor's
// current position (the inline root region, or the block at the
// current frame's physical address) through a different pair of
// collaborators sharing this handle's geometry. It exists for debug
// tooling that compares two captures of the same tree node-by-node as
// they're walked; the core itself never calls it.
func (h *Handle) ReadCorrespondingNode(inodeStore iostore.InodeStore, blockIO iostore.BlockIO) ([]byte, error) {
	if h.level == 0 {
		buf := make([]byte, h.geometry.InodeSize)
		if err := inodeStore.ReadInodeFull(h.ino, buf); err != nil {
			return nil, fmt.Errorf("extenttree: reading corresponding inode %d: %w", h.ino, err)
		}
		return buf[iBlockOffset : iBlockOffset+iBlockLen], nil
	}
	pblk := h.top().pblk
	buf := make([]byte, h.geometry.BlockSize)
	if err := blockIO.ReadBlock(pblk, 1, buf); err != nil {
		return nil, fmt.Errorf("extenttree: reading corresponding block %d: %w", pblk, err)
	}
	return buf, nil
}

// GetInfo returns a snapshot of the current frame's bookkeeping plus the
// format's fixed encoding limits.
func (h *Handle) GetInfo() Info {
	f := h.top()
	currEntry := 0
	if f.hasCurrent() {
		currEntry = f.curr
	}
	return Info{
		CurrEntry:    currEntry,
		NumEntries:   f.entries,
		MaxEntries:   f.maxEnt,
		BytesAvail:   (f.maxEnt - f.entries) * recordSize,
		CurrLevel:    h.level,
		MaxDepth:     h.maxDepth,
		Generation:   h.generation,
		MaxLblk:      maxLblk,
		MaxPblk:      maxPblk,
		MaxLen:       maxLen,
		MaxUninitLen: maxUninitLen,
	}
}
