package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/htrtools/pageconv/pkg/cache"
	"github.com/htrtools/pageconv/pkg/errors"
	"github.com/htrtools/pageconv/pkg/pipeline"
)

// convertFlags holds the flags for the convert command.
type convertFlags struct {
	output  string
	noCache bool
	refresh bool
	stdout  bool
}

// newConvertCmd creates the convert command for a single document.
func newConvertCmd() *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert <input.xml>",
		Short: "Convert a single PAGE XML file for Transkribus",
		Long: `Convert a PAGE XML file exported from eScriptorium or Kraken into the
form Transkribus expects. The output is written next to the input with a
_transkribus suffix unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file or directory (default: next to input)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute even if a cached result exists")
	cmd.Flags().BoolVar(&flags.stdout, "stdout", false, "write the converted document to stdout")

	return cmd
}

func runConvert(cmd *cobra.Command, input string, flags *convertFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	data, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "read %s", input)
	}

	runner := pipeline.NewRunner(newCache(cfg, flags.noCache), logger)
	defer runner.Close()

	result, err := runner.Convert(ctx, filepath.Base(input), data, pipeline.Options{
		Transform: cfg.transformOptions(),
		Refresh:   flags.refresh,
	})
	if err != nil {
		return err
	}

	if flags.stdout {
		_, err := cmd.OutOrStdout().Write(result.Output)
		return err
	}

	outPath := deriveOutputPath(input, flags.output)
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "create output directory %s", dir)
		}
	}
	if err := os.WriteFile(outPath, result.Output, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", outPath)
	}

	printSuccess("Converted %s", filepath.Base(input))
	printFile(outPath)
	printStats(result.Stats.InputBytes, result.Stats.OutputBytes, result.CacheHit)
	return nil
}

// newCache builds the cache backend for CLI commands. Caching failures and
// the disabled case both degrade to a null cache rather than failing the run.
func newCache(cfg Config, noCache bool) cache.Cache {
	if noCache || cfg.Cache.Disabled {
		return cache.NewNullCache()
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}
