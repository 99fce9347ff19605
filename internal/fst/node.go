// Package fst holds the mutable file system tree a patch set edits: files
// are ordered segment lists, folders are ordered child lists, and patches
// splice new content sources into files in place. Once a tree is final its
// files are frozen into segment.Index values for reading.
package fst

import (
	"github.com/spf13/afero"

	"github.com/jcwhitt/rivulet/internal/segment"
)

// Node is a tree entry, either *File or *Folder. The set is closed;
// consumers dispatch with a type switch.
type Node interface {
	NodeName() string
}

// File is a leaf whose content is an ordered, non-overlapping segment list.
// Size is authoritative: after any edit, segments starting at or past Size
// are dropped.
type File struct {
	Name     string
	Size     uint64
	Segments []segment.Segment
}

// Folder is an interior node with ordered children. Child lookup is
// case-insensitive.
type Folder struct {
	Name     string
	Children []Node
}

// NodeName implements Node.
func (f *File) NodeName() string { return f.Name }

// NodeName implements Node.
func (f *Folder) NodeName() string { return f.Name }

// NewFileFromHost makes a file whose entire content is one lazy region of
// the host file at hostPath.
func NewFileFromHost(name, hostPath string, size uint64) *File {
	f := &File{Name: name, Size: size}
	if size > 0 {
		f.Segments = []segment.Segment{{
			Offset: 0,
			Size:   size,
			Source: segment.FileRegion{Path: hostPath, Offset: 0},
		}}
	}
	return f
}

// Freeze copies the file's segments into a lookup-optimized index backed by
// fs for file-region reads. The mutable segment list stays valid; the index
// is an independent snapshot.
func (f *File) Freeze(fs afero.Fs) *segment.Index {
	return segment.NewIndex(fs, f.Segments)
}
