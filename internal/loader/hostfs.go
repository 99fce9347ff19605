package loader

import (
	"github.com/spf13/afero"

	"github.com/jcwhitt/rivulet/internal/segment"
)

// HostFS is a Loader backed by a host filesystem. The afero abstraction is
// what lets the whole patching pipeline run against an in-memory filesystem
// under test.
type HostFS struct {
	fs      afero.Fs
	resolve *Resolver
}

// NewHostFS returns a Loader reading through fs with paths sandboxed by r.
func NewHostFS(fs afero.Fs, r *Resolver) *HostFS {
	return &HostFS{fs: fs, resolve: r}
}

// Size implements Loader. Folders report as absent: only regular files can
// back a patch.
func (h *HostFS) Size(path string) (uint64, bool) {
	abs, err := h.resolve.Canonicalize(path)
	if err != nil {
		return 0, false
	}
	info, err := h.fs.Stat(abs)
	if err != nil || info.IsDir() {
		return 0, false
	}
	return uint64(info.Size()), true
}

// Contents implements Loader.
func (h *HostFS) Contents(path string) []byte {
	abs, err := h.resolve.Canonicalize(path)
	if err != nil {
		return nil
	}
	data, err := afero.ReadFile(h.fs, abs)
	if err != nil {
		return nil
	}
	return data
}

// FolderEntries implements Loader.
func (h *HostFS) FolderEntries(path string) []Entry {
	abs, err := h.resolve.Canonicalize(path)
	if err != nil {
		return nil
	}
	infos, err := afero.ReadDir(h.fs, abs)
	if err != nil {
		return nil
	}
	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{Name: info.Name(), Dir: info.IsDir()})
	}
	return entries
}

// ContentSource implements Loader.
func (h *HostFS) ContentSource(path string, externalOffset, size, targetOffset uint64) segment.Segment {
	abs, err := h.resolve.Canonicalize(path)
	if err != nil {
		return segment.Segment{
			Offset: targetOffset,
			Size:   size,
			Source: segment.FixedFill{Byte: 0},
		}
	}
	return segment.Segment{
		Offset: targetOffset,
		Size:   size,
		Source: segment.FileRegion{Path: abs, Offset: externalOffset},
	}
}
