package extenttree

// noCurrent is the sentinel "absent" value for pathFrame.curr: a
// (frame_index, record_index) model, using -1 for the record-index half
// rather than a nullable pointer into the buffer.
const noCurrent = -1

// pathFrame is the per-level cursor state: a node buffer, its
// header-derived bookkeeping, the currently focused record, the
// two-visit tag, and the inherited logical upper bound.
type pathFrame struct {
	buf      []byte
	depth    uint16 // node's own header depth: 0 at leaf
	entries  int
	maxEnt   int
	left     int // records remaining strictly to the right of curr
	curr     int // record index, or noCurrent
	visitNum int // 0 or 1, see the two-visit protocol
	endBlk   uint64

	// pblk is the physical block this frame's buffer was read from; 0
	// for frame 0 (bound to the inline inode region, not a block).
	pblk uint64
}

func (f *pathFrame) isLeaf() bool {
	return f.depth == 0
}

// recordOffset returns the byte offset of record i within f.buf.
func recordOffset(i int) int {
	return headerSize + i*recordSize
}

func (f *pathFrame) record(i int) []byte {
	off := recordOffset(i)
	return f.buf[off : off+recordSize]
}

func (f *pathFrame) currRecord() []byte {
	return f.record(f.curr)
}

func (f *pathFrame) currIndex() indexRecord {
	return decodeIndex(f.currRecord())
}

func (f *pathFrame) currExtent() extentRecord {
	return decodeExtent(f.currRecord())
}

// hasCurrent reports whether curr points at a real record.
func (f *pathFrame) hasCurrent() bool {
	return f.curr != noCurrent
}

// setHeaderCounts refreshes entries/maxEnt from the frame's header bytes.
func (f *pathFrame) setHeaderCounts(h header) {
	f.entries = int(h.Entries)
	f.maxEnt = int(h.Max)
	f.depth = h.Depth
}

// writeEntries rewrites only the header's entries field in the buffer,
// leaving magic/max/depth/generation untouched.
func (f *pathFrame) writeEntries(n int) {
	h := decodeHeader(f.buf)
	h.Entries = uint16(n)
	h.encodeInto(f.buf)
	f.entries = n
}
