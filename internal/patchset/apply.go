package patchset

import (
	"strings"

	"github.com/jcwhitt/rivulet/internal/event"
	"github.com/jcwhitt/rivulet/internal/filter"
	"github.com/jcwhitt/rivulet/internal/fst"
	"github.com/jcwhitt/rivulet/internal/mem"
	"github.com/jcwhitt/rivulet/internal/stats"
)

// mainDOL is the distinguished primary-executable name that bypasses tree
// lookup.
const mainDOL = "main.dol"

// Options carries the optional observers and patch selection for an apply
// pass. The zero value applies everything silently.
type Options struct {
	Stats  *stats.Collector
	Events event.Sink
	Filter *filter.Chain
}

func (o Options) selected(id string) bool {
	return o.Filter == nil || o.Filter.Match(id)
}

func (o Options) stats() *stats.Collector {
	if o.Stats == nil {
		return &stats.Collector{}
	}
	return o.Stats
}

// ApplyToFiles applies every file and folder patch in patches to the tree
// rooted at root. dol is the distinguished primary-executable node patched
// by the "main.dol" special case; it may be nil if the image has none.
// Individual patch failures (missing resources, bad paths, kind
// mismatches) skip that directive only.
func ApplyToFiles(patches []Patch, root *fst.Folder, dol *fst.File, opts Options) {
	for i := range patches {
		p := &patches[i]
		if !opts.selected(p.ID) {
			continue
		}
		for _, f := range p.Files {
			applyFilePatch(p, f, root, dol, opts)
		}
		for _, f := range p.Folders {
			applyFolderPatch(p, f, root, dol, f.Disc, f.External, opts)
			opts.stats().AddFoldersApplied(1)
			opts.Events.Emit(event.Event{Type: event.FolderApplied, PatchID: p.ID, Path: f.Disc})
		}
	}
}

func applyFilePatch(p *Patch, f FilePatch, root *fst.Folder, dol *fst.File, opts Options) {
	var node *fst.File
	switch {
	case strings.HasPrefix(f.Disc, "/"):
		// An absolute disc path targets that exact node.
		node = fst.FindNode(root, f.Disc[1:], f.Create)
	case strings.EqualFold(f.Disc, mainDOL):
		// Special case: patch the main executable wherever it lives.
		node = dol
	default:
		// A bare filename targets the first match anywhere in the tree.
		node = fst.FindByName(root, f.Disc)
	}
	if node == nil {
		opts.stats().AddFilesSkipped(1)
		opts.Events.Emit(event.Event{
			Type: event.FileSkipped, PatchID: p.ID, Path: f.Disc,
			Reason: "no such disc path",
		})
		return
	}

	created := node.Size == 0 && len(node.Segments) == 0

	// The patch format ignores the low two bits of the target offset.
	n, ok := fst.ApplyFilePatch(p.Loader, node, f.External,
		f.Offset&^3, f.FileOffset, f.Length, f.Resize)
	if !ok {
		opts.stats().AddFilesSkipped(1)
		opts.Events.Emit(event.Event{
			Type: event.FileSkipped, PatchID: p.ID, Path: f.Disc,
			Reason: "external resource unavailable",
		})
		return
	}

	opts.stats().AddFilesPatched(1)
	opts.stats().AddBytesPatched(int64(n))
	if created {
		opts.stats().AddFilesCreated(1)
	}
	opts.Events.Emit(event.Event{Type: event.FilePatched, PatchID: p.ID, Path: f.Disc, Size: n})
}

func applyFolderPatch(p *Patch, folder FolderPatch, root *fst.Folder, dol *fst.File,
	discPath, externalPath string, opts Options) {
	for _, child := range p.Loader.FolderEntries(externalPath) {
		childDisc := combinePaths(discPath, child.Name)
		childExternal := combinePaths(externalPath, child.Name)

		if child.Dir {
			if folder.Recursive {
				applyFolderPatch(p, folder, root, dol, childDisc, childExternal, opts)
			}
			continue
		}

		applyFilePatch(p, FilePatch{
			Disc:     childDisc,
			External: childExternal,
			Resize:   folder.Resize,
			Create:   folder.Create,
			Length:   folder.Length,
		}, root, dol, opts)
	}
}

func combinePaths(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return strings.TrimSuffix(a, "/") + "/" + strings.TrimPrefix(b, "/")
}

// ApplyGeneralMemoryPatches applies the direct and search memory patches,
// the pass run once when the guest boots. Direct patches target
// offset|MEM1Base; searches scan all of MEM1.
func ApplyGeneralMemoryPatches(patches []Patch, eng *mem.Engine, ramSize uint32, opts Options) {
	for i := range patches {
		p := &patches[i]
		if !opts.selected(p.ID) {
			continue
		}
		for _, m := range p.Memory {
			if m.Ocarina {
				continue
			}
			if m.Search {
				applySearch(p, m, eng, MEM1Base, ramSize, opts)
				continue
			}
			applyDirect(p, m, eng, opts)
		}
	}
}

// ApplyApploaderMemoryPatches applies the search and hook patches scoped to
// the apploader-provided RAM window, the pass run during the guest's boot
// sequence.
func ApplyApploaderMemoryPatches(patches []Patch, eng *mem.Engine, ramStart, ramLength uint32, opts Options) {
	for i := range patches {
		p := &patches[i]
		if !opts.selected(p.ID) {
			continue
		}
		for _, m := range p.Memory {
			if !m.Ocarina && !m.Search {
				continue
			}
			if m.Ocarina {
				applyOcarina(p, m, eng, ramStart, ramLength, opts)
			} else {
				applySearch(p, m, eng, ramStart, ramLength, opts)
			}
		}
	}
}

func applyDirect(p *Patch, m MemoryPatch, eng *mem.Engine, opts Options) {
	if m.Offset == 0 {
		return
	}
	addr := m.Offset | MEM1Base
	applied, removed := eng.Apply(addr, m.value(p.Loader), m.Original)
	if !applied {
		opts.stats().AddMemSkipped(1)
		opts.Events.Emit(event.Event{
			Type: event.MemorySkipped, PatchID: p.ID, Addr: addr,
			Reason: "original bytes mismatch",
		})
		return
	}
	opts.stats().AddMemPatched(1)
	opts.stats().AddHooksRemoved(int64(removed))
	opts.Events.Emit(event.Event{Type: event.MemoryPatched, PatchID: p.ID, Addr: addr})
}

func applySearch(p *Patch, m MemoryPatch, eng *mem.Engine, start, length uint32, opts Options) {
	found, removed := eng.Search(start, length, m.Align, m.Original, m.value(p.Loader))
	if !found {
		opts.stats().AddMemSkipped(1)
		opts.Events.Emit(event.Event{
			Type: event.MemorySkipped, PatchID: p.ID,
			Reason: "search pattern not found",
		})
		return
	}
	opts.stats().AddMemPatched(1)
	opts.stats().AddHooksRemoved(int64(removed))
	opts.Events.Emit(event.Event{Type: event.MemoryPatched, PatchID: p.ID})
}

func applyOcarina(p *Patch, m MemoryPatch, eng *mem.Engine, start, length uint32, opts Options) {
	if m.Offset == 0 {
		return
	}
	value := m.value(p.Loader)
	if len(value) == 0 {
		return
	}
	rewritten, removed := eng.Ocarina(start, length, value, m.Offset|MEM1Base)
	if !rewritten {
		opts.stats().AddMemSkipped(1)
		opts.Events.Emit(event.Event{
			Type: event.MemorySkipped, PatchID: p.ID,
			Reason: "hook pattern not found",
		})
		return
	}
	opts.stats().AddMemPatched(1)
	opts.stats().AddHooksRemoved(int64(removed))
	opts.Events.Emit(event.Event{Type: event.HookRewritten, PatchID: p.ID, Addr: m.Offset | MEM1Base})
}
