package segment

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexRead_SingleRaw(t *testing.T) {
	idx := NewIndex(nil, []Segment{
		{Offset: 0, Size: 4, Source: RawBuffer{Bytes: []byte{1, 2, 3, 4}}},
	})

	got, err := idx.Read(1, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3}, got)
}

func TestIndexRead_SpansSegments(t *testing.T) {
	idx := NewIndex(nil, []Segment{
		{Offset: 0, Size: 3, Source: RawBuffer{Bytes: []byte{1, 2, 3}}},
		{Offset: 3, Size: 2, Source: FixedFill{Byte: 0xFF}},
		{Offset: 5, Size: 3, Source: RawBuffer{Bytes: []byte{9, 8, 7}}},
	})

	got, err := idx.Read(0, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 0xFF, 0xFF, 9, 8, 7}, got)

	// A read starting mid-segment.
	got, err = idx.Read(2, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 0xFF, 0xFF, 9}, got)
}

func TestIndexRead_FileRegion(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/host/data.bin", []byte("abcdefgh"), 0o644))

	idx := NewIndex(fs, []Segment{
		{Offset: 0, Size: 4, Source: FileRegion{Path: "/host/data.bin", Offset: 2}},
	})

	got, err := idx.Read(0, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("cdef"), got)
}

func TestIndexRead_Nested(t *testing.T) {
	inner := NewIndex(nil, []Segment{
		{Offset: 0, Size: 6, Source: RawBuffer{Bytes: []byte("nested")}},
	})
	outer := NewIndex(nil, []Segment{
		{Offset: 0, Size: 2, Source: FixedFill{Byte: '>'}},
		{Offset: 2, Size: 4, Source: Nested{Index: inner, Offset: 1}},
	})

	got, err := outer.Read(0, 6)
	require.NoError(t, err)
	assert.Equal(t, []byte(">>este"), got)
}

func TestIndexRead_Gap(t *testing.T) {
	idx := NewIndex(nil, []Segment{
		{Offset: 0, Size: 2, Source: FixedFill{Byte: 1}},
		{Offset: 4, Size: 2, Source: FixedFill{Byte: 2}},
	})

	_, err := idx.Read(0, 6)
	assert.ErrorIs(t, err, ErrGap)

	// Reads confined to either side of the gap still work.
	got, err := idx.Read(4, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 2}, got)
}

func TestIndexRead_OutOfRange(t *testing.T) {
	idx := NewIndex(nil, []Segment{
		{Offset: 0, Size: 4, Source: FixedFill{Byte: 1}},
	})

	_, err := idx.Read(2, 4)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestIndexRead_ZeroLength(t *testing.T) {
	idx := NewIndex(nil, nil)
	got, err := idx.Read(0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewIndexDropsZeroLengthSegments(t *testing.T) {
	idx := NewIndex(nil, []Segment{
		{Offset: 0, Size: 0, Source: RawBuffer{Bytes: nil}},
		{Offset: 0, Size: 2, Source: FixedFill{Byte: 3}},
	})
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, uint64(2), idx.End())
}
