package extenttree

import "fmt"

// persist writes the modified node back to its backing store: the
// whole inode at level 0 (the root lives inline), or the current
// frame's block buffer addressed by the parent frame's current index
// otherwise.
func (h *Handle) persist() error {
	if h.level == 0 {
		if err := h.inodeStore.WriteInodeFull(h.ino, h.inodeBuf); err != nil {
			return fmt.Errorf("extenttree: persisting root (inode %d): %w", h.ino, err)
		}
		return nil
	}

	f := h.top()
	if err := h.blockIO.WriteBlock(f.pblk, 1, f.buf); err != nil {
		return fmt.Errorf("extenttree: persisting block %d: %w", f.pblk, err)
	}
	return nil
}
