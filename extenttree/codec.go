package extenttree

import "encoding/binary"

// extMagic is the fixed 16-bit header sentinel: ext2/3/4's real
// EXT3_EXT_MAGIC value, not an invented one.
const extMagic = 0xf30a

const (
	headerSize = 12
	recordSize = 12 // both index and extent records are 12 bytes on-disk
)

// header is the decoded form of the fixed 12-byte node header shared by
// the inline root region and every dedicated node block.
type header struct {
	Magic      uint16
	Entries    uint16
	Max        uint16
	Depth      uint16
	Generation uint32
}

func decodeHeader(buf []byte) header {
	return header{
		Magic:      binary.LittleEndian.Uint16(buf[0:2]),
		Entries:    binary.LittleEndian.Uint16(buf[2:4]),
		Max:        binary.LittleEndian.Uint16(buf[4:6]),
		Depth:      binary.LittleEndian.Uint16(buf[6:8]),
		Generation: binary.LittleEndian.Uint32(buf[8:12]),
	}
}

func (h header) encodeInto(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], h.Magic)
	binary.LittleEndian.PutUint16(buf[2:4], h.Entries)
	binary.LittleEndian.PutUint16(buf[4:6], h.Max)
	binary.LittleEndian.PutUint16(buf[6:8], h.Depth)
	binary.LittleEndian.PutUint32(buf[8:12], h.Generation)
}

// indexRecord is the decoded form of a 12-byte interior-node record.
type indexRecord struct {
	EiBlock  uint32
	EiLeaf   uint32
	EiLeafHi uint16
	EiUnused uint16
}

func decodeIndex(buf []byte) indexRecord {
	return indexRecord{
		EiBlock:  binary.LittleEndian.Uint32(buf[0:4]),
		EiLeaf:   binary.LittleEndian.Uint32(buf[4:8]),
		EiLeafHi: binary.LittleEndian.Uint16(buf[8:10]),
		EiUnused: binary.LittleEndian.Uint16(buf[10:12]),
	}
}

func (r indexRecord) encodeInto(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], r.EiBlock)
	binary.LittleEndian.PutUint32(buf[4:8], r.EiLeaf)
	binary.LittleEndian.PutUint16(buf[8:10], r.EiLeafHi)
	binary.LittleEndian.PutUint16(buf[10:12], 0) // ei_unused must be zero on write
}

func (r indexRecord) childBlock() uint64 {
	return uint64(r.EiLeaf) | uint64(r.EiLeafHi)<<32
}

// extentRecord is the decoded form of a 12-byte leaf-node record.
type extentRecord struct {
	EeBlock   uint32
	EeLen     uint16
	EeStartHi uint16
	EeStart   uint32
}

func decodeExtent(buf []byte) extentRecord {
	return extentRecord{
		EeBlock:   binary.LittleEndian.Uint32(buf[0:4]),
		EeLen:     binary.LittleEndian.Uint16(buf[4:6]),
		EeStartHi: binary.LittleEndian.Uint16(buf[6:8]),
		EeStart:   binary.LittleEndian.Uint32(buf[8:12]),
	}
}

func (r extentRecord) encodeInto(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], r.EeBlock)
	binary.LittleEndian.PutUint16(buf[4:6], r.EeLen)
	binary.LittleEndian.PutUint16(buf[6:8], r.EeStartHi)
	binary.LittleEndian.PutUint32(buf[8:12], r.EeStart)
}

func (r extentRecord) physicalBlock() uint64 {
	return uint64(r.EeStart) | uint64(r.EeStartHi)<<32
}

// computedMax returns the record capacity implied by a node of nodeSize
// bytes, independent of what the header actually claims.
func computedMax(nodeSize int) int {
	return (nodeSize - headerSize) / recordSize
}

// verifyHeader checks the header invariants (magic, entries <= max, max
// within the window a node of nodeSize bytes can encode) and returns a
// non-nil *Error with kind ErrHeaderBad on any violation.
func verifyHeader(buf []byte, nodeSize int) (header, error) {
	if len(buf) < headerSize {
		return header{}, newErr(ErrHeaderBad, errShortBuffer)
	}
	h := decodeHeader(buf)
	if h.Magic != extMagic {
		return h, newErr(ErrHeaderBad, errBadMagic)
	}
	if h.Entries > h.Max {
		return h, newErr(ErrHeaderBad, errEntriesExceedMax)
	}
	cmax := computedMax(nodeSize)
	if int(h.Max) < cmax-2 || int(h.Max) > cmax {
		return h, newErr(ErrHeaderBad, errMaxOutOfWindow)
	}
	return h, nil
}
