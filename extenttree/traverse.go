package extenttree

import (
	"errors"

	"github.com/diskfs/extenttree/iostore"
)

func isBlockUnavailable(err error) bool {
	return errors.Is(err, iostore.ErrBlockUnavailable)
}

// isKind reports whether err is an *Error of the given kind.
func isKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Get positions the cursor according to verb and returns the resulting
// observation.
func (h *Handle) Get(verb Verb) (Extent, error) {
	if err := h.applyVerb(verb); err != nil {
		return Extent{}, err
	}
	return h.buildExtent()
}

func (h *Handle) applyVerb(verb Verb) error {
	switch verb {
	case Current:
		if !h.top().hasCurrent() {
			return newErr(ErrNoCurrentNode, nil)
		}
		return nil
	case Root:
		return h.doRoot()
	case FirstSib:
		return h.doFirstSib()
	case LastSib:
		return h.doLastSib()
	case NextSib:
		return h.doNextSib()
	case PrevSib:
		return h.doPrevSib()
	case Up:
		return h.doUp(false)
	case Down:
		return h.doDown(false)
	case DownAndLast:
		return h.doDown(true)
	case Next:
		return h.doNextStep()
	case Prev:
		return h.doPrevStep()
	case NextLeaf:
		return h.doNextLeaf()
	case PrevLeaf:
		return h.doPrevLeaf()
	case LastLeaf:
		return h.doLastLeaf()
	default:
		return newErr(ErrOpNotSupported, nil)
	}
}

// --- elementary moves ---

func (h *Handle) doRoot() error {
	h.level = 0
	return h.doFirstSib()
}

func (h *Handle) doFirstSib() error {
	f := h.top()
	f.left = f.entries
	f.curr = noCurrent
	return h.doNextSib()
}

func (h *Handle) doNextSib() error {
	f := h.top()
	if f.left <= 0 {
		return newErr(ErrNoNext, nil)
	}
	if !f.hasCurrent() {
		f.curr = 0
	} else {
		f.curr++
	}
	f.left--
	f.visitNum = 0
	return nil
}

func (h *Handle) doPrevSib() error {
	f := h.top()
	if !f.hasCurrent() || f.left+1 >= f.entries {
		return newErr(ErrNoPrev, nil)
	}
	f.curr--
	f.left++
	if h.level < h.maxDepth {
		f.visitNum = 1
	}
	return nil
}

func (h *Handle) doLastSib() error {
	f := h.top()
	if f.entries == 0 {
		f.curr = noCurrent
		f.left = 0
		f.visitNum = 0
		return nil
	}
	f.curr = f.entries - 1
	f.left = 0
	f.visitNum = 0
	return nil
}

// doUp ascends one level. clearParentVisit reports that an UP
// originating from PREV/PREV_LEAF clears the parent's visit_num so the
// parent is re-descended (via DOWN_AND_LAST) on the next PREV.
func (h *Handle) doUp(clearParentVisit bool) error {
	if h.level == 0 {
		return newErr(ErrNoUp, nil)
	}
	h.level--
	if clearParentVisit {
		h.top().visitNum = 0
	}
	return nil
}

// doDown descends through the current index into its child node. last
// selects DOWN_AND_LAST's positioning (curr at the child's last record)
// over DOWN's (curr at the child's first record).
func (h *Handle) doDown(last bool) error {
	f := h.top()
	if !f.hasCurrent() || h.level == h.maxDepth {
		return newErr(ErrNoDown, nil)
	}
	idx := f.currIndex()
	childPblk := idx.childBlock()

	var endBlk uint64
	if f.left > 0 {
		endBlk = uint64(decodeIndex(f.record(f.curr + 1)).EiBlock)
	} else {
		endBlk = f.endBlk
	}

	childLevel := h.level + 1
	child := h.frames[childLevel]
	if child == nil {
		child = &pathFrame{}
		h.frames[childLevel] = child
	}

	buf, err := h.readChildBlock(childPblk)
	if err != nil {
		return err
	}

	hdr, verr := verifyHeader(buf, len(buf))
	if verr != nil {
		h.logger.WithField("pblk", childPblk).Warn("extenttree: child header failed verification")
		return verr
	}

	child.buf = buf
	child.pblk = childPblk
	child.endBlk = endBlk
	child.setHeaderCounts(hdr)

	if last {
		if err := doLastSibOn(child); err != nil {
			return err
		}
		if childLevel < h.maxDepth {
			child.visitNum = 1
		}
	} else {
		child.curr = 0
		child.left = child.entries - 1
		child.visitNum = 0
	}

	h.frames[childLevel] = child
	h.level = childLevel
	return nil
}

// doLastSibOn applies the LAST_SIB move to an arbitrary frame, used by
// doDown before the frame is installed as the current top.
func doLastSibOn(f *pathFrame) error {
	if f.entries == 0 {
		f.curr = noCurrent
		f.left = 0
		f.visitNum = 0
		return nil
	}
	f.curr = f.entries - 1
	f.left = 0
	f.visitNum = 0
	return nil
}

// --- the two-visit protocol: NEXT / PREV ---

func (h *Handle) doNextStep() error {
	f := h.top()
	if h.level < h.maxDepth {
		if f.visitNum == 0 {
			f.visitNum = 1
			return h.doDown(false)
		}
		if f.left > 0 {
			return h.doNextSib()
		}
		if h.level > 0 {
			return h.doUp(false)
		}
		return newErr(ErrNoNext, nil)
	}
	if f.left > 0 {
		return h.doNextSib()
	}
	if h.level > 0 {
		return h.doUp(false)
	}
	return newErr(ErrNoNext, nil)
}

func (h *Handle) doPrevStep() error {
	f := h.top()
	if h.level < h.maxDepth {
		if f.visitNum > 0 {
			return h.doDown(true)
		}
		if f.left < f.entries-1 {
			return h.doPrevSib()
		}
		if h.level > 0 {
			return h.doUp(true)
		}
		return newErr(ErrNoPrev, nil)
	}
	if f.left < f.entries-1 {
		return h.doPrevSib()
	}
	if h.level > 0 {
		return h.doUp(true)
	}
	return newErr(ErrNoPrev, nil)
}

func (h *Handle) doNextLeaf() error {
	for {
		if err := h.doNextStep(); err != nil {
			return err
		}
		if h.level == h.maxDepth {
			return nil
		}
	}
}

func (h *Handle) doPrevLeaf() error {
	for {
		if err := h.doPrevStep(); err != nil {
			return err
		}
		if h.level == h.maxDepth {
			return nil
		}
	}
}

func (h *Handle) doLastLeaf() error {
	h.level = 0
	for {
		if err := h.doLastSib(); err != nil {
			return err
		}
		if h.level == h.maxDepth {
			return nil
		}
		if err := h.doDown(false); err != nil {
			return err
		}
	}
}

// readChildBlock reads the single block at pblk. In image mode, a block
// that the backing store cannot satisfy is zero-filled rather than
// surfaced as an I/O error; the subsequent header verification then
// fails with ErrHeaderBad, which is the documented behavior when
// walking a sparse image.
func (h *Handle) readChildBlock(pblk uint64) ([]byte, error) {
	buf := make([]byte, h.geometry.BlockSize)
	err := h.blockIO.ReadBlock(pblk, 1, buf)
	if err == nil {
		return buf, nil
	}
	if h.geometry.ImageMode && isBlockUnavailable(err) {
		h.logger.WithField("pblk", pblk).Debug("extenttree: zero-filling unavailable block in image mode")
		return buf, nil
	}
	return nil, err
}

// buildExtent populates the output record for the current frame.
func (h *Handle) buildExtent() (Extent, error) {
	f := h.top()
	if !f.hasCurrent() {
		return Extent{}, newErr(ErrNoCurrentNode, nil)
	}

	var e Extent
	if h.level == h.maxDepth {
		ex := f.currExtent()
		e.Lblk = uint64(ex.EeBlock)
		e.Pblk = ex.physicalBlock()
		e.Flags |= FlagLeaf
		length := uint32(ex.EeLen)
		if length > MaxInitLen {
			length -= MaxInitLen
			e.Flags |= FlagUninit
		}
		e.Len = length
	} else {
		ix := f.currIndex()
		e.Lblk = uint64(ix.EiBlock)
		e.Pblk = ix.childBlock()
		var endBlk uint64
		if f.left > 0 {
			endBlk = uint64(decodeIndex(f.record(f.curr + 1)).EiBlock)
		} else {
			endBlk = f.endBlk
		}
		e.Len = uint32(endBlk - e.Lblk)
	}
	if f.visitNum == 1 {
		e.Flags |= FlagSecondVisit
	}
	return e, nil
}

// Goto positions the cursor at the leaf extent whose range contains
// lblk.
func (h *Handle) Goto(lblk uint64) (Extent, error) {
	if err := h.doRoot(); err != nil {
		return Extent{}, err
	}

	for {
		f := h.top()
		if h.level == h.maxDepth {
			e, err := h.buildExtent()
			if err != nil {
				return Extent{}, err
			}
			if lblk >= e.Lblk && lblk < e.Lblk+uint64(e.Len) {
				return e, nil
			}
			if lblk < e.Lblk {
				_ = h.doPrevSib()
				return e, newErr(ErrNotFound, nil)
			}
			if err := h.doNextSib(); err != nil {
				return e, newErr(ErrNotFound, nil)
			}
			continue
		}

		// interior: peek the next sibling by attempting to move onto it.
		err := h.doNextSib()
		if err != nil {
			if isKind(err, ErrNoNext) {
				if err := h.doDown(false); err != nil {
					return Extent{}, err
				}
				continue
			}
			return Extent{}, err
		}

		nextBlk := uint64(f.currIndex().EiBlock)
		switch {
		case lblk == nextBlk:
			if err := h.doDown(false); err != nil {
				return Extent{}, err
			}
		case lblk > nextBlk:
			continue
		default: // lblk < nextBlk
			if err := h.doPrevSib(); err != nil {
				return Extent{}, err
			}
			if err := h.doDown(false); err != nil {
				return Extent{}, err
			}
		}
	}
}
