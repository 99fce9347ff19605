package patchset

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"github.com/jcwhitt/rivulet/internal/loader"
)

// Document is the on-disk shape of a patch set file.
type Document struct {
	Patches []PatchDoc `toml:"patch"`
}

// PatchDoc is one patch entry in a patch set file. Root overrides the
// patch's content root: a leading '/' is relative to the SD root, anything
// else to the folder the patch set file is in.
type PatchDoc struct {
	ID      string        `toml:"id"`
	Root    string        `toml:"root"`
	Files   []FilePatch   `toml:"file"`
	Folders []FolderPatch `toml:"folder"`
	Memory  []MemoryPatch `toml:"memory"`
}

// Load decodes the patch set file at path and wires each patch to a
// sandboxed host loader reading through fs. sdRoot is the root absolute
// external paths resolve under.
func Load(fs afero.Fs, path, sdRoot string) ([]Patch, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("patch set %s: %w", path, err)
	}
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("patch set %s: %w", path, err)
	}

	patches := make([]Patch, 0, len(doc.Patches))
	for i, pd := range doc.Patches {
		id := pd.ID
		if id == "" {
			id = fmt.Sprintf("patch-%d", i)
		}
		resolver := loader.NewResolver(sdRoot, path, pd.Root)
		patches = append(patches, Patch{
			ID:      id,
			Loader:  loader.NewHostFS(fs, resolver),
			Files:   pd.Files,
			Folders: pd.Folders,
			Memory:  pd.Memory,
		})
	}
	return patches, nil
}
