package extenttree

// Flags describes properties of an observed extent record, set by Get
// when it populates its output.
type Flags uint8

const (
	// FlagLeaf marks an observation taken at a leaf node (depth 0).
	// Absent for an interior-node observation.
	FlagLeaf Flags = 1 << iota
	// FlagUninit marks a leaf extent whose encoded length exceeded
	// MaxInitLen; Get has already subtracted MaxInitLen from Len.
	FlagUninit
	// FlagSecondVisit marks an interior-node observation made on the
	// return pass (after UP), per the two-visit protocol.
	FlagSecondVisit
)

// Has reports whether all bits of other are set in f.
func (f Flags) Has(other Flags) bool {
	return f&other == other
}

// Extent is the cursor's observable unit: either a leaf logical-to-
// physical block range, or an interior node's child-subtree range.
type Extent struct {
	Lblk  uint64
	Pblk  uint64
	Len   uint32
	Flags Flags
}

// Verb enumerates the traversal moves the cursor understands, resolved
// by the traversal engine into elementary path-stack moves.
type Verb int

const (
	Current Verb = iota
	Root
	FirstSib
	LastSib
	NextSib
	PrevSib
	Up
	Down
	DownAndLast
	Next
	Prev
	NextLeaf
	PrevLeaf
	LastLeaf
)

// InsertFlag modifies Insert's placement of the new record relative to
// the current one.
type InsertFlag uint8

const (
	// InsertAfter places the new record after, rather than at, the
	// current slot.
	InsertAfter InsertFlag = 1 << iota
)

// Info is a snapshot of the current frame's bookkeeping plus the fixed
// encoding limits of the on-disk format.
type Info struct {
	CurrEntry    int
	NumEntries   int
	MaxEntries   int
	BytesAvail   int
	CurrLevel    int
	MaxDepth     int
	Generation   uint32
	MaxLblk      uint64
	MaxPblk      uint64
	MaxLen       uint32
	MaxUninitLen uint32
}

const (
	// MaxInitLen is the threshold above which an encoded leaf length
	// denotes an uninitialized extent (true length = EeLen - MaxInitLen).
	MaxInitLen = 1 << 15

	maxLblk      = 1<<32 - 1
	maxPblk      = 1<<48 - 1
	maxLen       = MaxInitLen
	maxUninitLen = MaxInitLen - 1
)
