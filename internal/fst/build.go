package fst

import (
	"fmt"
	"path"

	"github.com/spf13/afero"
)

// BuildFromDir constructs a tree mirroring the directory at root. Each file
// becomes a single lazy file-region segment; no file contents are read.
// Children keep the order the filesystem reports.
func BuildFromDir(fs afero.Fs, root string) (*Folder, error) {
	return buildFolder(fs, root, "")
}

func buildFolder(fs afero.Fs, dir, name string) (*Folder, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	folder := &Folder{Name: name}
	for _, info := range infos {
		child := path.Join(dir, info.Name())
		if info.IsDir() {
			sub, err := buildFolder(fs, child, info.Name())
			if err != nil {
				return nil, err
			}
			folder.Children = append(folder.Children, sub)
			continue
		}
		folder.Children = append(folder.Children, NewFileFromHost(info.Name(), child, uint64(info.Size())))
	}
	return folder, nil
}
