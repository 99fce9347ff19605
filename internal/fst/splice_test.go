package fst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcwhitt/rivulet/internal/loader"
	"github.com/jcwhitt/rivulet/internal/segment"
)

// fakeLoader serves patch content from in-memory byte slices.
type fakeLoader struct {
	files map[string][]byte
}

func (f *fakeLoader) Size(path string) (uint64, bool) {
	data, ok := f.files[path]
	return uint64(len(data)), ok
}

func (f *fakeLoader) Contents(path string) []byte {
	return f.files[path]
}

func (f *fakeLoader) FolderEntries(path string) []loader.Entry {
	return nil
}

func (f *fakeLoader) ContentSource(path string, externalOffset, size, targetOffset uint64) segment.Segment {
	data, ok := f.files[path]
	if !ok {
		return segment.Segment{Offset: targetOffset, Size: size, Source: segment.FixedFill{Byte: 0}}
	}
	return segment.Segment{
		Offset: targetOffset,
		Size:   size,
		Source: segment.RawBuffer{Bytes: data[externalOffset : externalOffset+size]},
	}
}

// checkInvariants asserts the segment list is sorted, non-overlapping and
// confined to [0, Size).
func checkInvariants(t *testing.T, f *File) {
	t.Helper()
	var prevEnd uint64
	for i, s := range f.Segments {
		assert.GreaterOrEqual(t, s.Offset, prevEnd, "segment %d overlaps or is out of order", i)
		assert.LessOrEqual(t, s.End(), f.Size, "segment %d exceeds file size", i)
		prevEnd = s.End()
	}
}

func regionFile(size uint64) *File {
	return NewFileFromHost("data.bin", "/disc/data.bin", size)
}

func TestSplice_MiddleOfSingleRegion(t *testing.T) {
	ld := &fakeLoader{files: map[string][]byte{"p.bin": make([]byte, 10)}}
	file := regionFile(100)

	n, ok := ApplyFilePatch(ld, file, "p.bin", 40, 0, 10, false)
	require.True(t, ok)
	assert.Equal(t, uint64(10), n)

	require.Len(t, file.Segments, 3)
	assert.Equal(t, uint64(100), file.Size)

	left := file.Segments[0]
	assert.Equal(t, uint64(0), left.Offset)
	assert.Equal(t, uint64(40), left.Size)
	assert.Equal(t, segment.FileRegion{Path: "/disc/data.bin", Offset: 0}, left.Source)

	mid := file.Segments[1]
	assert.Equal(t, uint64(40), mid.Offset)
	assert.Equal(t, uint64(10), mid.Size)
	assert.IsType(t, segment.RawBuffer{}, mid.Source)

	// The right remainder resumes 50 bytes into the original file.
	right := file.Segments[2]
	assert.Equal(t, uint64(50), right.Offset)
	assert.Equal(t, uint64(50), right.Size)
	assert.Equal(t, segment.FileRegion{Path: "/disc/data.bin", Offset: 50}, right.Source)

	checkInvariants(t, file)
}

func TestSplice_PaddingWhenExternalShort(t *testing.T) {
	ld := &fakeLoader{files: map[string][]byte{"p.bin": {1, 2, 3, 4, 5}}}
	file := &File{Name: "new.bin"}

	n, ok := ApplyFilePatch(ld, file, "p.bin", 0, 0, 20, false)
	require.True(t, ok)
	assert.Equal(t, uint64(20), n)
	assert.Equal(t, uint64(20), file.Size)

	require.Len(t, file.Segments, 2)
	assert.Equal(t, uint64(0), file.Segments[0].Offset)
	assert.Equal(t, uint64(5), file.Segments[0].Size)
	assert.Equal(t, segment.Segment{
		Offset: 5, Size: 15, Source: segment.FixedFill{Byte: 0},
	}, file.Segments[1])

	checkInvariants(t, file)
}

func TestSplice_PastEndInsertsGapFill(t *testing.T) {
	ld := &fakeLoader{files: map[string][]byte{"p.bin": {9, 9, 9, 9}}}
	file := regionFile(10)

	_, ok := ApplyFilePatch(ld, file, "p.bin", 20, 0, 0, false)
	require.True(t, ok)

	require.Len(t, file.Segments, 3)
	assert.Equal(t, segment.Segment{
		Offset: 10, Size: 10, Source: segment.FixedFill{Byte: 0},
	}, file.Segments[1])
	assert.Equal(t, uint64(20), file.Segments[2].Offset)
	assert.Equal(t, uint64(24), file.Size)

	checkInvariants(t, file)
}

func TestSplice_ResizeTruncates(t *testing.T) {
	ld := &fakeLoader{files: map[string][]byte{"p.bin": make([]byte, 10)}}
	file := regionFile(100)

	_, ok := ApplyFilePatch(ld, file, "p.bin", 40, 0, 10, true)
	require.True(t, ok)

	assert.Equal(t, uint64(50), file.Size)
	require.Len(t, file.Segments, 2)
	assert.Equal(t, uint64(40), file.Segments[0].End())
	assert.Equal(t, uint64(50), file.Segments[1].End())

	checkInvariants(t, file)
}

func TestSplice_AtExistingBoundaryDoesNotSplit(t *testing.T) {
	ld := &fakeLoader{files: map[string][]byte{"p.bin": make([]byte, 60)}}
	file := regionFile(100)
	// Pre-split the file at 40 with a first patch.
	_, ok := ApplyFilePatch(ld, file, "p.bin", 0, 0, 40, false)
	require.True(t, ok)
	require.Len(t, file.Segments, 2)

	// A patch covering [40, 100) exactly replaces the tail segment.
	_, ok = ApplyFilePatch(ld, file, "p.bin", 40, 0, 60, false)
	require.True(t, ok)

	require.Len(t, file.Segments, 2)
	assert.Equal(t, uint64(40), file.Segments[1].Offset)
	assert.Equal(t, uint64(60), file.Segments[1].Size)
	assert.IsType(t, segment.RawBuffer{}, file.Segments[1].Source)

	checkInvariants(t, file)
}

func TestSplice_Idempotent(t *testing.T) {
	ld := &fakeLoader{files: map[string][]byte{"p.bin": {1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}}

	once := regionFile(100)
	_, ok := ApplyFilePatch(ld, once, "p.bin", 40, 0, 10, false)
	require.True(t, ok)

	twice := regionFile(100)
	for i := 0; i < 2; i++ {
		_, ok := ApplyFilePatch(ld, twice, "p.bin", 40, 0, 10, false)
		require.True(t, ok)
	}

	assert.Equal(t, once.Size, twice.Size)
	assert.Equal(t, once.Segments, twice.Segments)
}

func TestSplice_MissingExternalIsNoOp(t *testing.T) {
	ld := &fakeLoader{files: map[string][]byte{}}
	file := regionFile(100)

	_, ok := ApplyFilePatch(ld, file, "absent.bin", 40, 0, 10, false)
	assert.False(t, ok)
	require.Len(t, file.Segments, 1)
	assert.Equal(t, uint64(100), file.Size)
}

func TestSplice_ZeroLengthEmptyExternal(t *testing.T) {
	ld := &fakeLoader{files: map[string][]byte{"empty.bin": {}}}
	file := regionFile(100)

	// Length 0 with an empty resource: nothing is inserted, but the splice
	// still runs (and here degenerates to a harmless split).
	n, ok := ApplyFilePatch(ld, file, "empty.bin", 40, 0, 0, false)
	require.True(t, ok)
	assert.Equal(t, uint64(0), n)
	assert.Equal(t, uint64(100), file.Size)

	var covered uint64
	for _, s := range file.Segments {
		covered += s.Size
	}
	assert.Equal(t, uint64(100), covered)
	checkInvariants(t, file)
}

func TestSplice_ExternalOffsetClamped(t *testing.T) {
	ld := &fakeLoader{files: map[string][]byte{"p.bin": {1, 2, 3}}}
	file := &File{Name: "f"}

	// Reading past the end of the resource leaves zero external bytes, so
	// the declared length is all padding.
	n, ok := ApplyFilePatch(ld, file, "p.bin", 0, 50, 8, false)
	require.True(t, ok)
	assert.Equal(t, uint64(8), n)

	require.Len(t, file.Segments, 1)
	assert.Equal(t, segment.Segment{
		Offset: 0, Size: 8, Source: segment.FixedFill{Byte: 0},
	}, file.Segments[0])
}

func TestSplice_RoundTripThroughIndex(t *testing.T) {
	patch := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	base := make([]byte, 32)
	for i := range base {
		base[i] = byte(i)
	}
	ld := &fakeLoader{files: map[string][]byte{"p.bin": patch}}

	file := &File{Name: "f", Size: 32, Segments: []segment.Segment{
		{Offset: 0, Size: 32, Source: segment.RawBuffer{Bytes: base}},
	}}
	_, ok := ApplyFilePatch(ld, file, "p.bin", 12, 0, 4, false)
	require.True(t, ok)

	idx := segment.NewIndex(nil, file.Segments)
	got, err := idx.Read(0, 32)
	require.NoError(t, err)

	want := append(append(append([]byte{}, base[:12]...), patch...), base[16:]...)
	assert.Equal(t, want, got)
}
