package loader

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrEscape is returned when a relative path would resolve outside its root.
var ErrEscape = errors.New("path escapes sandbox root")

// Resolver canonicalizes externally supplied relative paths against a
// two-root system. Paths beginning with '/' resolve under SDRoot; all
// others resolve under PatchRoot.
//
// External paths are treated the way Riivolution-style patch documents
// expect:
//   - a leading '/' means "relative to the SD card root";
//   - otherwise the path is relative to the patch root, which defaults to
//     the folder the patch document is in and may be overridden by the
//     document's own root attribute.
type Resolver struct {
	SDRoot    string
	PatchRoot string
}

// NewResolver builds a Resolver for a patch document at patchPath. If
// patchRoot is non-empty and itself resolves as a relative path, it
// replaces the document's folder as the patch root.
func NewResolver(sdRoot, patchPath, patchRoot string) *Resolver {
	r := &Resolver{
		SDRoot:    sdRoot,
		PatchRoot: filepath.ToSlash(filepath.Dir(patchPath)),
	}
	if patchRoot != "" {
		if resolved, err := r.Canonicalize(patchRoot); err == nil {
			r.PatchRoot = resolved
		}
	}
	return r
}

// Canonicalize resolves rel against the appropriate root, walking its
// components with traversal protection. '.' is a no-op, '..' steps up but
// never above the root, and a component of two or more dots ('...', '....')
// always fails: some filesystems treat those as repeated traversal, the
// patch format does not, and permitting them here would be an escape.
func (r *Resolver) Canonicalize(rel string) (string, error) {
	// On platforms where '/' is not the only separator, a name containing
	// the native separator cannot be represented faithfully; reject it
	// rather than let it alias a traversal.
	if filepath.Separator != '/' && strings.ContainsRune(rel, filepath.Separator) {
		return "", ErrEscape
	}

	result := r.PatchRoot
	if strings.HasPrefix(rel, "/") {
		result = r.SDRoot
	}

	work := strings.Trim(rel, "/")

	depth := 0
	for work != "" {
		element, rest, _ := strings.Cut(work, "/")

		switch {
		case element == ".":
			// Harmless, no state change.
		case element == "..":
			// Going up a level; refuse to exit the root.
			if depth == 0 {
				return "", ErrEscape
			}
			depth--
			result = result[:strings.LastIndexByte(result, '/')]
		case strings.Count(element, ".") == len(element):
			// Triple, quadruple etc. dot.
			return "", ErrEscape
		default:
			depth++
			result += "/" + element
		}

		// Swallow any run of extra separators before the next element.
		work = strings.TrimLeft(rest, "/")
	}
	return result, nil
}
