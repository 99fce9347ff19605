package main

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jcwhitt/rivulet/internal/filter"
	"github.com/jcwhitt/rivulet/internal/fst"
	"github.com/jcwhitt/rivulet/internal/patchset"
	"github.com/jcwhitt/rivulet/internal/segment"
	"github.com/jcwhitt/rivulet/internal/stats"
)

// patchedTree builds the tree from baseDir and applies the patch set over
// it. The distinguished main.dol node is sys/main.dol when present.
func patchedTree(fs afero.Fs, baseDir, patchPath, sdRoot string, chain *filter.Chain) (*fst.Folder, stats.Snapshot, error) {
	root, err := fst.BuildFromDir(fs, baseDir)
	if err != nil {
		return nil, stats.Snapshot{}, err
	}

	var snap stats.Snapshot
	if patchPath != "" {
		patches, err := loadPatches(fs, patchPath, sdRoot)
		if err != nil {
			return nil, stats.Snapshot{}, err
		}
		opts, collector := applyOptions(chain)
		patchset.ApplyToFiles(patches, root, fst.FindNode(root, "sys/main.dol", false), opts)
		snap = collector.Snapshot()
	}
	return root, snap, nil
}

func newApplyCmd(sdRoot *string, chain *filter.Chain) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <base-dir> <patchset.toml>",
		Short: "Apply a patch set over a base directory tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := afero.NewOsFs()
			_, snap, err := patchedTree(fs, args[0], args[1], *sdRoot, chain)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, snap)
			return nil
		},
	}
}

func newLsCmd(sdRoot *string, chain *filter.Chain) *cobra.Command {
	var patchPath string
	cmd := &cobra.Command{
		Use:   "ls <base-dir>",
		Short: "Print the composed tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := afero.NewOsFs()
			root, _, err := patchedTree(fs, args[0], patchPath, *sdRoot, chain)
			if err != nil {
				return err
			}
			printTree(root, "")
			return nil
		},
	}
	cmd.Flags().StringVarP(&patchPath, "patchset", "p", "", "patch set to apply before listing")
	return cmd
}

func printTree(folder *fst.Folder, prefix string) {
	for _, child := range folder.Children {
		switch node := child.(type) {
		case *fst.Folder:
			fmt.Fprintf(os.Stdout, "%s/\n", path.Join(prefix, node.Name))
			printTree(node, path.Join(prefix, node.Name))
		case *fst.File:
			fmt.Fprintf(os.Stdout, "%s\t%s\t%d segment(s)\n",
				path.Join(prefix, node.Name), stats.FormatBytes(int64(node.Size)), len(node.Segments))
		}
	}
}

func newVerifyCmd(sdRoot *string, chain *filter.Chain) *cobra.Command {
	var patchPath string
	cmd := &cobra.Command{
		Use:   "verify <base-dir>",
		Short: "Print BLAKE3 digests of every composed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := afero.NewOsFs()
			root, _, err := patchedTree(fs, args[0], patchPath, *sdRoot, chain)
			if err != nil {
				return err
			}
			return digestTree(fs, root, "")
		},
	}
	cmd.Flags().StringVarP(&patchPath, "patchset", "p", "", "patch set to apply before hashing")
	return cmd
}

func digestTree(fs afero.Fs, folder *fst.Folder, prefix string) error {
	for _, child := range folder.Children {
		switch node := child.(type) {
		case *fst.Folder:
			if err := digestTree(fs, node, path.Join(prefix, node.Name)); err != nil {
				return err
			}
		case *fst.File:
			digest, err := segment.Digest(node.Freeze(fs), node.Size)
			if err != nil {
				return fmt.Errorf("%s: %w", path.Join(prefix, node.Name), err)
			}
			fmt.Fprintf(os.Stdout, "%s  %s\n", digest, path.Join(prefix, node.Name))
		}
	}
	return nil
}
