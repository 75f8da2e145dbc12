package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/htrtools/pageconv/pkg/errors"
	"github.com/htrtools/pageconv/pkg/pipeline"
)

// batchFlags holds the flags for the batch command.
type batchFlags struct {
	outDir  string
	jobs    int
	noCache bool
	refresh bool
}

// newBatchCmd creates the batch command for directory conversion.
func newBatchCmd() *cobra.Command {
	flags := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "batch <input-dir>",
		Short: "Convert every PAGE XML file in a directory",
		Long: `Convert all .xml files in a directory. Converted files keep their name
with a _transkribus suffix and are written to <input-dir>/transkribus_converted
unless --out-dir is given. A file that fails to convert is reported and
skipped; the remaining files are still converted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.outDir, "out-dir", "o", "", "output directory (default: <input-dir>/transkribus_converted)")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "number of concurrent conversions (default: number of CPUs)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute even if cached results exist")

	return cmd
}

func runBatch(cmd *cobra.Command, inDir string, flags *batchFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	info, err := os.Stat(inDir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "stat %s", inDir)
	}
	if !info.IsDir() {
		return errors.New(errors.ErrCodeInvalidInput, "%s is not a directory", inDir)
	}

	inputs, err := filepath.Glob(filepath.Join(inDir, "*.xml"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "scan %s", inDir)
	}
	// Files the tool itself produced are not inputs.
	inputs = filterConverted(inputs)
	sort.Strings(inputs)
	if len(inputs) == 0 {
		printWarning("No .xml files found in %s", inDir)
		return nil
	}

	outDir := flags.outDir
	if outDir == "" {
		outDir = filepath.Join(inDir, batchOutputDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create output directory %s", outDir)
	}

	jobs := flags.jobs
	if jobs <= 0 {
		jobs = cfg.Batch.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	runID := uuid.NewString()
	logger.Debug("starting batch run", "run_id", runID, "files", len(inputs), "jobs", jobs)
	prog := newProgress(logger)

	runner := pipeline.NewRunner(newCache(cfg, flags.noCache), logger)
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Converting %d files...", len(inputs)))
	spinner.Start()

	var converted, failed, cached atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, input := range inputs {
		input := input
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			data, err := os.ReadFile(input)
			if err != nil {
				failed.Add(1)
				logger.Warn("skipping unreadable file", "file", input, "err", err)
				return nil
			}
			result, err := runner.Convert(gctx, filepath.Base(input), data, pipeline.Options{
				Transform: cfg.transformOptions(),
				Refresh:   flags.refresh,
			})
			if err != nil {
				failed.Add(1)
				logger.Warn("conversion failed", "file", input, "err", err)
				return nil
			}
			outPath := filepath.Join(outDir, derivedName(input))
			if err := os.WriteFile(outPath, result.Output, 0o644); err != nil {
				failed.Add(1)
				logger.Warn("write failed", "file", outPath, "err", err)
				return nil
			}
			converted.Add(1)
			if result.CacheHit {
				cached.Add(1)
			}
			return nil
		})
	}

	err = g.Wait()
	spinner.Stop()
	if err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Batch run %s finished", runID))

	switch {
	case converted.Load() == 0 && failed.Load() > 0:
		printError("Converted 0/%d files, all failed (see log)", len(inputs))
	case failed.Load() > 0:
		printWarning("Converted %d/%d files (%d failed, see log)", converted.Load(), len(inputs), failed.Load())
	default:
		printSuccess("Converted %d/%d files", converted.Load(), len(inputs))
	}
	if cached.Load() > 0 {
		printDetail("From cache: %d", cached.Load())
	}
	printFile(outDir)
	return nil
}

// filterConverted drops files that already carry the output suffix.
func filterConverted(paths []string) []string {
	kept := paths[:0]
	for _, p := range paths {
		stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		if strings.HasSuffix(stem, outputSuffix) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
