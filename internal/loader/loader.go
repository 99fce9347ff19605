// Package loader supplies patch content from outside the composed tree. All
// access goes through a two-root path sandbox: externally authored patch
// documents name files relative to either the SD root or the patch root,
// and no path they supply may ever resolve outside those roots.
package loader

import "github.com/jcwhitt/rivulet/internal/segment"

// Entry is one child of an external folder.
type Entry struct {
	Name string
	Dir  bool
}

// Loader resolves externally named patch resources. Implementations must
// sandbox every path; on failure each method degrades rather than erroring
// so one bad resource never aborts a patch batch.
type Loader interface {
	// Size returns the byte size of the named resource, or false if the
	// resource does not exist or its path does not resolve.
	Size(path string) (uint64, bool)

	// Contents returns the full resource contents, or nil on any failure.
	Contents(path string) []byte

	// FolderEntries lists the named folder, or nil on any failure.
	FolderEntries(path string) []Entry

	// ContentSource builds a lazy segment covering
	// [targetOffset, targetOffset+size) from the resource starting at
	// externalOffset, so large files are composed without copying. If the
	// path does not resolve the segment falls back to a zero fill.
	ContentSource(path string, externalOffset, size, targetOffset uint64) segment.Segment
}
