// Package patchset holds patch directives and drives their application:
// file and folder patches against a mutable fst tree, memory patches
// against a live image. Directives are plain records produced elsewhere
// (decoded from a patch document or constructed directly); this package
// never mutates them.
package patchset

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/jcwhitt/rivulet/internal/loader"
)

// MEM1Base is OR'd into memory patch target offsets, mapping them into the
// guest's physical RAM window.
const MEM1Base = 0x80000000

// HexBytes is a byte slice decoded from a hex string in patch documents.
// Whitespace between digits is permitted.
type HexBytes []byte

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *HexBytes) UnmarshalText(text []byte) error {
	s := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, string(text))
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("hex value %q: %w", string(text), err)
	}
	*h = decoded
	return nil
}

// FilePatch splices an external resource into one disc file.
//
// A disc path starting with '/' targets that exact path; the bare name
// "main.dol" targets the primary executable; any other bare name targets
// the first file anywhere in the tree with that name.
type FilePatch struct {
	Disc       string `toml:"disc"`
	External   string `toml:"external"`
	Offset     uint64 `toml:"offset"`
	FileOffset uint64 `toml:"fileoffset"`
	Length     uint64 `toml:"length"`
	Resize     bool   `toml:"resize"`
	Create     bool   `toml:"create"`
}

// FolderPatch applies an external folder onto a disc folder, file by file.
type FolderPatch struct {
	Disc      string `toml:"disc"`
	External  string `toml:"external"`
	Recursive bool   `toml:"recursive"`
	Resize    bool   `toml:"resize"`
	Create    bool   `toml:"create"`
	Length    uint64 `toml:"length"`
}

// MemoryPatch writes bytes into guest memory: directly at Offset, at the
// first strided match of Original (Search), or as an instruction-hook
// rewrite after the first match of the value pattern (Ocarina).
type MemoryPatch struct {
	Offset    uint32   `toml:"offset"`
	Value     HexBytes `toml:"value"`
	ValueFile string   `toml:"valuefile"`
	Original  HexBytes `toml:"original"`
	Search    bool     `toml:"search"`
	Align     uint32   `toml:"align"`
	Ocarina   bool     `toml:"ocarina"`
}

// Patch is one patch with its own content loader. The loader carries the
// patch's sandbox roots, so resources of different patches never bleed into
// each other's directories.
type Patch struct {
	ID     string
	Loader loader.Loader

	Files   []FilePatch
	Folders []FolderPatch
	Memory  []MemoryPatch
}

// value resolves the bytes a memory patch writes: the contents of
// ValueFile when set, the literal Value otherwise.
func (m *MemoryPatch) value(ld loader.Loader) []byte {
	if m.ValueFile != "" {
		return ld.Contents(m.ValueFile)
	}
	return m.Value
}
