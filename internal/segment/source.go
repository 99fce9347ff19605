// Package segment models file content as ordered lists of byte ranges, each
// backed by one of a fixed set of sources: a region of a host file, an owned
// in-memory buffer, another composed index, or a repeated fill byte.
package segment

import "fmt"

// Source describes where the bytes of a Segment come from. It is a closed
// set: FileRegion, RawBuffer, Nested and FixedFill are the only
// implementations, and consumers dispatch with an exhaustive type switch.
type Source interface {
	source()
}

// FileRegion reads bytes from a host-addressable file starting at Offset.
type FileRegion struct {
	Path   string
	Offset uint64
}

// RawBuffer holds bytes verbatim. The segment exclusively owns the slice;
// callers must not retain or mutate it after handing it over.
type RawBuffer struct {
	Bytes []byte
}

// Nested produces bytes by reading another composed index at Offset. The
// pointer is non-owning: the tree that owns both guarantees the index
// outlives the segment.
type Nested struct {
	Index  *Index
	Offset uint64
}

// FixedFill yields Byte for every position in the range.
type FixedFill struct {
	Byte byte
}

func (FileRegion) source() {}
func (RawBuffer) source()  {}
func (Nested) source()     {}
func (FixedFill) source()  {}

// Segment is a contiguous byte range [Offset, Offset+Size) tagged with its
// source. Zero-length segments are legal and harmless.
type Segment struct {
	Offset uint64
	Size   uint64
	Source Source
}

// End returns the first offset past the segment.
func (s Segment) End() uint64 {
	return s.Offset + s.Size
}

func (s Segment) String() string {
	switch src := s.Source.(type) {
	case FileRegion:
		return fmt.Sprintf("[%#x,%#x) file %s+%#x", s.Offset, s.End(), src.Path, src.Offset)
	case RawBuffer:
		return fmt.Sprintf("[%#x,%#x) raw %d bytes", s.Offset, s.End(), len(src.Bytes))
	case Nested:
		return fmt.Sprintf("[%#x,%#x) nested+%#x", s.Offset, s.End(), src.Offset)
	case FixedFill:
		return fmt.Sprintf("[%#x,%#x) fill %#02x", s.Offset, s.End(), src.Byte)
	default:
		return fmt.Sprintf("[%#x,%#x) unknown", s.Offset, s.End())
	}
}

// SplitAt divides s into two segments at the absolute offset at. at must lie
// strictly inside the segment; it may not match either boundary. The right
// half's source is adjusted so both halves resolve to the same bytes the
// whole segment did.
func SplitAt(s Segment, at uint64) (before, after Segment) {
	before = s
	after = s

	before.Size = at - s.Offset

	after.Offset += before.Size
	after.Size = s.End() - at
	switch src := after.Source.(type) {
	case FileRegion:
		src.Offset += before.Size
		after.Source = src
	case RawBuffer:
		src.Bytes = src.Bytes[before.Size:]
		after.Source = src
	case Nested:
		src.Offset += before.Size
		after.Source = src
	case FixedFill:
		// Every byte is identical, nothing to adjust.
	}
	return before, after
}
