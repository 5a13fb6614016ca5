package extenttree

// shiftRight copies count records starting at index at one slot to the
// right, making room for a new record at at. Go's built-in copy behaves
// like memmove on overlapping slices, so this is safe regardless of
// count.
func shiftRight(f *pathFrame, at, count int) {
	if count <= 0 {
		return
	}
	src := recordOffset(at)
	dst := recordOffset(at + 1)
	n := count * recordSize
	copy(f.buf[dst:dst+n], f.buf[src:src+n])
}

// shiftLeft copies count records starting at index at+1 one slot to the
// left, closing the gap left by removing the record at at.
func shiftLeft(f *pathFrame, at, count int) {
	if count <= 0 {
		return
	}
	src := recordOffset(at + 1)
	dst := recordOffset(at)
	n := count * recordSize
	copy(f.buf[dst:dst+n], f.buf[src:src+n])
}

// writeCurrentRecord encodes extent into the current frame's current
// slot, as either an extent record (leaf) or an index record (interior).
// The caller is responsible for having already chosen any
// uninitialized-length encoding in extent.Len.
func (h *Handle) writeCurrentRecord(extent Extent) {
	f := h.top()
	if h.level == h.maxDepth {
		rec := extentRecord{
			EeBlock:   uint32(extent.Lblk),
			EeLen:     uint16(extent.Len),
			EeStartHi: uint16(extent.Pblk >> 32),
			EeStart:   uint32(extent.Pblk),
		}
		rec.encodeInto(f.currRecord())
		return
	}
	rec := indexRecord{
		EiBlock:  uint32(extent.Lblk),
		EiLeaf:   uint32(extent.Pblk),
		EiLeafHi: uint16(extent.Pblk >> 32),
	}
	rec.encodeInto(f.currRecord())
}

// Replace overwrites the current record with extent.
func (h *Handle) Replace(extent Extent) error {
	if !h.geometry.ReadWrite {
		return newErr(ErrReadOnlyFS, nil)
	}
	if !h.top().hasCurrent() {
		return newErr(ErrNoCurrentNode, nil)
	}
	h.writeCurrentRecord(extent)
	return h.persist()
}

// Insert adds extent at, or after, the current slot. The "+1" shift
// width deliberately includes the slot the current record occupies
// (see DESIGN.md's Open Question decision). On any error after the
// shift, Delete runs as a best-effort rollback and its error is
// discarded in favor of the original failure.
func (h *Handle) Insert(flags InsertFlag, extent Extent) error {
	if !h.geometry.ReadWrite {
		return newErr(ErrReadOnlyFS, nil)
	}
	f := h.top()
	if f.entries == f.maxEnt {
		return newErr(ErrCantInsert, nil)
	}

	var insertAt, shiftCount int
	if f.hasCurrent() {
		insertAt = f.curr
		if flags&InsertAfter != 0 {
			insertAt++
			f.left--
		}
		shiftCount = f.left + 1
	} else {
		insertAt = 0
		shiftCount = f.entries
	}

	shiftRight(f, insertAt, shiftCount)
	f.writeEntries(f.entries + 1)
	f.curr = insertAt
	f.left = shiftCount

	h.writeCurrentRecord(extent)
	if err := h.persist(); err != nil {
		_ = h.Delete()
		return err
	}
	return nil
}

// Delete removes the current record.
func (h *Handle) Delete() error {
	if !h.geometry.ReadWrite {
		return newErr(ErrReadOnlyFS, nil)
	}
	f := h.top()
	if !f.hasCurrent() {
		return newErr(ErrNoCurrentNode, nil)
	}

	if f.left == 0 {
		if f.curr > 0 {
			f.curr--
		}
	} else {
		shiftLeft(f, f.curr, f.left)
		f.left--
	}
	f.writeEntries(f.entries - 1)
	if f.entries == 0 {
		f.curr = noCurrent
	}
	return h.persist()
}
