// Package extenttree is the cursor over a single inode's extent tree: a
// shallow B+-tree of (logical -> physical) block range mappings rooted
// in the 60-byte inline region of the inode and fanning out into
// dedicated node blocks.
//
// A Handle is opened on an inode, positioned and read with Get and a
// Verb (Root, Next, PrevLeaf, ...) or with Goto, and
// mutated with Replace/Insert/Delete. Allocating new tree blocks,
// splitting or merging nodes on overflow, and resizing the inode are
// out of scope: Insert reports ErrCantInsert when a node is full and
// leaves rebalancing to the caller.
package extenttree
