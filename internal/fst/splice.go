package fst

import (
	"github.com/jcwhitt/rivulet/internal/loader"
	"github.com/jcwhitt/rivulet/internal/segment"
)

// ApplyFilePatch splices external content into file at patchOffset. The
// external resource is read from externalOffset; length 0 means "use the
// full remaining external size". With resize the file becomes exactly as
// long as the patched range, otherwise it is extended only if the patch
// runs past the current end.
//
// Returns the number of bytes the patch covers and whether it was applied;
// an unavailable external resource makes the patch a no-op, not an error.
//
// Callers are responsible for the patch-format quirk of clamping the offset
// down to a 4-byte boundary before calling.
func ApplyFilePatch(ld loader.Loader, file *File, external string,
	patchOffset, externalOffset, length uint64, resize bool) (uint64, bool) {
	rawExternalSize, ok := ld.Size(external)
	if !ok {
		return 0, false
	}

	externalOffset = min(externalOffset, rawExternalSize)
	externalSize := rawExternalSize - externalOffset

	patchStart := patchOffset
	patchSize := length
	if patchSize == 0 {
		patchSize = externalSize
	}
	patchEnd := patchStart + patchSize

	targetSize := patchEnd
	if !resize {
		targetSize = max(file.Size, patchEnd)
	}

	content := file.Segments
	insertWhere := 0
	if patchStart >= file.Size {
		// The patch sits at or past the current end: nothing existing is
		// touched, the file just grows. Cover any gap between the old end
		// and the patch with zero fill.
		if patchStart > file.Size {
			content = append(content, segment.Segment{
				Offset: file.Size,
				Size:   patchStart - file.Size,
				Source: segment.FixedFill{Byte: 0},
			})
		}
		insertWhere = len(content)
	} else {
		// The patch overlaps existing content. Split segments straddling
		// the patch boundaries so every boundary lines up exactly, then
		// discard everything inside the patched range and insert there.
		for i := 0; i < len(content); i++ {
			start := content[i].Offset
			end := content[i].End()
			if patchStart > start && patchStart < end {
				before, after := segment.SplitAt(content[i], patchStart)
				content[i] = before
				content = insertAt(content, i+1, after)
				continue
			}
			if patchEnd > start && patchEnd < end {
				before, after := segment.SplitAt(content[i], patchEnd)
				content[i] = before
				content = insertAt(content, i+1, after)
			}
		}

		for i := 0; i < len(content); i++ {
			if patchStart == content[i].Offset {
				insertWhere = i
				for i < len(content) && patchEnd >= content[i].End() {
					i++
				}
				content = append(content[:insertWhere], content[i:]...)
				break
			}
		}
	}

	// The patch content itself. A zero-sized patch or an empty external
	// resource inserts nothing; the overlap removal above still happened.
	if patchSize > 0 && externalSize > 0 {
		source := ld.ContentSource(external, externalOffset,
			min(patchSize, externalSize), patchStart)
		content = insertAt(content, insertWhere, source)
		insertWhere++
	}

	// Zero-pad when the patch declares more bytes than the resource has.
	if externalSize < patchSize {
		content = insertAt(content, insertWhere, segment.Segment{
			Offset: patchStart + externalSize,
			Size:   patchSize - externalSize,
			Source: segment.FixedFill{Byte: 0},
		})
	}

	file.Size = targetSize

	// Truncation can leave segments past the new end; drop them.
	for len(content) > 0 && content[len(content)-1].Offset >= targetSize {
		content = content[:len(content)-1]
	}

	file.Segments = content
	return patchSize, true
}

func insertAt(s []segment.Segment, i int, seg segment.Segment) []segment.Segment {
	s = append(s, segment.Segment{})
	copy(s[i+1:], s[i:])
	s[i] = seg
	return s
}
