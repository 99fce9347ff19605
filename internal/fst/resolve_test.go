package fst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Folder {
	return &Folder{Children: []Node{
		&Folder{Name: "Data", Children: []Node{
			&File{Name: "model.arc", Size: 10},
			&Folder{Name: "Stages", Children: []Node{
				&File{Name: "stage1.bin", Size: 5},
			}},
		}},
		&File{Name: "opening.bnr", Size: 3},
	}}
}

func TestFindNode_ExistingPath(t *testing.T) {
	root := sampleTree()

	node := FindNode(root, "Data/Stages/stage1.bin", false)
	require.NotNil(t, node)
	assert.Equal(t, "stage1.bin", node.Name)
}

func TestFindNode_CaseInsensitive(t *testing.T) {
	root := sampleTree()

	node := FindNode(root, "data/STAGES/Stage1.BIN", false)
	require.NotNil(t, node)
	assert.Equal(t, "stage1.bin", node.Name)
}

func TestFindNode_MissingWithoutCreate(t *testing.T) {
	root := sampleTree()

	assert.Nil(t, FindNode(root, "Data/missing.bin", false))
	assert.Nil(t, FindNode(root, "NoSuchDir/file.bin", false))
}

func TestFindNode_CreatesMissingChain(t *testing.T) {
	root := sampleTree()

	node := FindNode(root, "Data/New/Deep/file.bin", true)
	require.NotNil(t, node)
	assert.Equal(t, "file.bin", node.Name)
	assert.Equal(t, uint64(0), node.Size)
	assert.Empty(t, node.Segments)

	// The created chain is reachable afterwards.
	again := FindNode(root, "data/new/deep/FILE.BIN", false)
	assert.Same(t, node, again)
}

func TestFindNode_KindMismatch(t *testing.T) {
	root := sampleTree()

	// A path treating a file as a folder fails, even with create set.
	assert.Nil(t, FindNode(root, "opening.bnr/inner.bin", false))
	assert.Nil(t, FindNode(root, "opening.bnr/inner.bin", true))

	// A path naming a folder as its final file component fails too.
	assert.Nil(t, FindNode(root, "Data/Stages", false))
}

func TestFindByName(t *testing.T) {
	root := sampleTree()

	node := FindByName(root, "STAGE1.bin")
	require.NotNil(t, node)
	assert.Equal(t, "stage1.bin", node.Name)

	assert.Nil(t, FindByName(root, "nope.bin"))
}

func TestFindByName_DepthFirstOrder(t *testing.T) {
	// Two files share a name; the depth-first walk finds the one inside
	// the first folder before the sibling at the root level.
	inner := &File{Name: "dup.bin", Size: 1}
	outer := &File{Name: "dup.bin", Size: 2}
	root := &Folder{Children: []Node{
		&Folder{Name: "a", Children: []Node{inner}},
		outer,
	}}

	assert.Same(t, inner, FindByName(root, "dup.bin"))
}
