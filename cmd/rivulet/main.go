// Command rivulet composes a virtual content overlay over a base directory
// tree: it applies externally authored patch sets to the tree without
// materializing patched files, and applies the analogous byte patches to
// flat memory images.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jcwhitt/rivulet/internal/config"
	"github.com/jcwhitt/rivulet/internal/event"
	"github.com/jcwhitt/rivulet/internal/filter"
	"github.com/jcwhitt/rivulet/internal/patchset"
	"github.com/jcwhitt/rivulet/internal/stats"
)

var version = "dev"

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --skip and --only rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

var _ pflag.Value = (*filterFlag)(nil)

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "string" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		verbose     bool
		quiet       bool
		sdRoot      string
		showVersion bool
	)

	chain := filter.NewChain()

	rootCmd := &cobra.Command{
		Use:           "rivulet",
		Short:         "Apply content-overlay patch sets to virtual file trees and memory images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load optional config file.
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}
			if !cmd.Flags().Changed("sd-root") && cfg.Defaults.SDRoot != nil {
				sdRoot = *cfg.Defaults.SDRoot
			}
			if !cmd.Flags().Changed("verbose") && cfg.Defaults.Verbose != nil {
				verbose = *cfg.Defaults.Verbose
			}

			logLevel := slog.LevelWarn
			if verbose {
				logLevel = slog.LevelDebug
			} else if !quiet {
				logLevel = slog.LevelInfo
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			logger := slog.New(handler).With("run", uuid.New().String()[:8])
			slog.SetDefault(logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "rivulet %s\n", version)
				return nil
			}
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.BoolVarP(&quiet, "quiet", "q", false, "errors only")
	pf.StringVar(&sdRoot, "sd-root", "", "root for absolute external paths")
	pf.Var(&filterFlag{chain: chain, include: true}, "only", "apply only patches whose ID matches the glob (repeatable)")
	pf.Var(&filterFlag{chain: chain, include: false}, "skip", "skip patches whose ID matches the glob (repeatable)")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	rootCmd.AddCommand(
		newApplyCmd(&sdRoot, chain),
		newLsCmd(&sdRoot, chain),
		newVerifyCmd(&sdRoot, chain),
		newMempatchCmd(&sdRoot, chain),
	)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("rivulet failed", "error", err)
		return 1
	}
	return 0
}

// applyOptions builds the shared observer plumbing for an apply pass.
func applyOptions(chain *filter.Chain) (patchset.Options, *stats.Collector) {
	collector := stats.NewCollector()
	sink := event.Sink(func(e event.Event) {
		switch e.Type {
		case event.FileSkipped, event.MemorySkipped:
			slog.Debug(e.Type.String(),
				"patch", e.PatchID, "path", e.Path, "reason", e.Reason)
		default:
			slog.Debug(e.Type.String(),
				"patch", e.PatchID, "path", e.Path, "size", e.Size)
		}
	})
	return patchset.Options{Stats: collector, Events: sink, Filter: chain}, collector
}

// loadPatches reads a patch set against the host filesystem.
func loadPatches(fs afero.Fs, path, sdRoot string) ([]patchset.Patch, error) {
	patches, err := patchset.Load(fs, path, sdRoot)
	if err != nil {
		return nil, err
	}
	slog.Debug("patch set loaded", "path", path, "patches", len(patches))
	return patches, nil
}
