package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jcwhitt/rivulet/internal/filter"
	"github.com/jcwhitt/rivulet/internal/mem"
	"github.com/jcwhitt/rivulet/internal/patchset"
)

func newMempatchCmd(sdRoot *string, chain *filter.Chain) *cobra.Command {
	var (
		base   uint32
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "mempatch <ram.bin> <patchset.toml>",
		Short: "Apply memory patches to a flat RAM dump",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := afero.NewOsFs()

			data, err := afero.ReadFile(fs, args[0])
			if err != nil {
				return fmt.Errorf("ram image: %w", err)
			}
			patches, err := loadPatches(fs, args[1], *sdRoot)
			if err != nil {
				return err
			}

			image := &mem.RAMImage{Base: base, Data: data}
			eng := mem.NewEngine(image, mem.NopHooks{}, slog.Default())
			opts, collector := applyOptions(chain)

			ramLen := uint32(len(data))
			patchset.ApplyGeneralMemoryPatches(patches, eng, ramLen, opts)
			patchset.ApplyApploaderMemoryPatches(patches, eng, base, ramLen, opts)

			fmt.Fprintln(os.Stdout, collector.Snapshot())
			if dryRun {
				return nil
			}
			if err := afero.WriteFile(fs, args[0], image.Data, 0o644); err != nil {
				return fmt.Errorf("write ram image: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().Uint32Var(&base, "base", patchset.MEM1Base, "address the dump is mapped at")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "apply in memory but do not write back")
	return cmd
}
