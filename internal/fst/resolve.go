package fst

import "strings"

// FindNode walks path (slash-separated, no leading slash) below folder and
// returns the named file. Component matching is case-insensitive. When
// create is true, missing folders and the final file are created empty;
// otherwise a missing component returns nil. A component that exists with
// the wrong kind (a file where the path needs a folder, or vice versa)
// returns nil: the patch targets a path whose type is inconsistent and is
// skipped.
func FindNode(folder *Folder, path string, create bool) *File {
	name, rest, hasRest := strings.Cut(path, "/")
	wantFile := !hasRest

	idx := -1
	for i, child := range folder.Children {
		if strings.EqualFold(child.NodeName(), name) {
			idx = i
			break
		}
	}

	if idx < 0 {
		if !create {
			return nil
		}
		if wantFile {
			file := &File{Name: name}
			folder.Children = append(folder.Children, file)
			return file
		}
		sub := &Folder{Name: name}
		folder.Children = append(folder.Children, sub)
		return FindNode(sub, rest, true)
	}

	switch node := folder.Children[idx].(type) {
	case *File:
		if !wantFile {
			return nil
		}
		return node
	case *Folder:
		if wantFile {
			return nil
		}
		return FindNode(node, rest, create)
	default:
		return nil
	}
}

// FindByName searches the whole tree depth-first and returns the first file
// whose name matches case-insensitively, or nil. Used when a patch names a
// bare filename instead of a full disc path.
func FindByName(folder *Folder, name string) *File {
	for _, child := range folder.Children {
		switch node := child.(type) {
		case *Folder:
			if found := FindByName(node, name); found != nil {
				return found
			}
		case *File:
			if strings.EqualFold(node.Name, name) {
				return node
			}
		}
	}
	return nil
}
