package segment

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/afero"
)

var (
	// ErrOutOfRange is returned when a read extends past the indexed content.
	ErrOutOfRange = errors.New("read out of range")
	// ErrGap is returned when a read crosses an offset no segment covers.
	// A finalized index must be gap-free, so hitting this is an invariant
	// violation in the builder that produced it, not a runtime condition.
	ErrGap = errors.New("read crossed an unindexed gap")
)

// Index is a frozen, lookup-optimized view of a segment list. Segments are
// held sorted by end offset so the first candidate for a read at any offset
// is found with a single binary search.
type Index struct {
	fs       afero.Fs
	segments []Segment
	end      uint64
}

// NewIndex freezes segments into an Index. The input must already be sorted
// by offset and mutually non-overlapping; zero-length segments are dropped.
// fs backs FileRegion resolution and may be nil if no segment needs it.
func NewIndex(fs afero.Fs, segments []Segment) *Index {
	idx := &Index{fs: fs}
	for _, s := range segments {
		if s.Size == 0 {
			continue
		}
		idx.segments = append(idx.segments, s)
		if s.End() > idx.end {
			idx.end = s.End()
		}
	}
	return idx
}

// End returns the first offset past the last indexed byte.
func (idx *Index) End() uint64 {
	return idx.end
}

// Len returns the number of indexed segments.
func (idx *Index) Len() int {
	return len(idx.segments)
}

// Read resolves length bytes starting at offset, spanning as many segments
// as needed. It fails with ErrOutOfRange past the indexed end and ErrGap if
// an uncovered offset is hit.
func (idx *Index) Read(offset, length uint64) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	if offset+length > idx.end {
		return nil, fmt.Errorf("read [%#x,%#x) beyond end %#x: %w",
			offset, offset+length, idx.end, ErrOutOfRange)
	}

	// First segment whose end offset exceeds the read start.
	i := sort.Search(len(idx.segments), func(i int) bool {
		return idx.segments[i].End() > offset
	})

	buf := make([]byte, 0, length)
	for length > 0 {
		if i >= len(idx.segments) || idx.segments[i].Offset > offset {
			return nil, fmt.Errorf("offset %#x: %w", offset, ErrGap)
		}
		s := idx.segments[i]

		into := offset - s.Offset
		n := s.Size - into
		if n > length {
			n = length
		}

		chunk, err := idx.resolve(s, into, n)
		if err != nil {
			return nil, err
		}
		buf = append(buf, chunk...)

		offset += n
		length -= n
		i++
	}
	return buf, nil
}

// resolve produces n bytes of segment s beginning at the segment-relative
// offset into. Each call re-opens file regions; the index keeps no handles.
func (idx *Index) resolve(s Segment, into, n uint64) ([]byte, error) {
	switch src := s.Source.(type) {
	case FileRegion:
		f, err := idx.fs.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", src.Path, err)
		}
		defer f.Close()
		buf := make([]byte, n)
		if _, err := f.Seek(int64(src.Offset+into), io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek %s: %w", src.Path, err)
		}
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("read %s: %w", src.Path, err)
		}
		return buf, nil
	case RawBuffer:
		return src.Bytes[into : into+n], nil
	case Nested:
		return src.Index.Read(src.Offset+into, n)
	case FixedFill:
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = src.Byte
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("segment %v: unknown source", s)
	}
}
