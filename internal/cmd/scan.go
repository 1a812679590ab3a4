package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pthm/rayscan/internal/config"
	"github.com/pthm/rayscan/internal/reporter"
	"github.com/pthm/rayscan/internal/search"
	"github.com/pthm/rayscan/internal/targets"
	"github.com/pthm/rayscan/internal/ui"
	"github.com/pthm/rayscan/internal/watch"
)

// ErrReferencesFound is returned when a scan finds at least one debug call,
// so the process exits non-zero
var ErrReferencesFound = errors.New("references found")

var watchMode bool

// scanFlagKeys maps config keys to the scan command's flag names
var scanFlagKeys = map[string]string{
	config.KeySummary:     "summary",
	config.KeyCompact:     "compact",
	config.KeyFormat:      "format",
	config.KeyNoColor:     "no-color",
	config.KeyTarget:      "target",
	config.KeyTargetFile:  "target-file",
	config.KeyIgnore:      "ignore",
	config.KeyMaxFileSize: "max-file-size",
	config.KeyWorkers:     "workers",
	config.KeyVerbose:     "verbose",
}

var scanCmd = &cobra.Command{
	Use:   "scan [path...]",
	Short: "Scan PHP files for ray() calls",
	Long: `Scan one or more files or directories for leftover ray() calls.

Directories are walked recursively. vendor/, node_modules/ and VCS
directories are always skipped, as is anything matched by the root
.gitignore or an --ignore pattern.

The command exits with status 1 when any reference is found.

Examples:
  rayscan scan
  rayscan scan src tests
  rayscan scan --summary --compact .
  rayscan scan --ignore 'tests/**' --format json . > rayscan.json
  rayscan scan --watch src`,
	RunE:         runScan,
	SilenceUsage: true,
}

func init() {
	f := scanCmd.Flags()
	f.BoolP("summary", "s", false, "Show a per-file summary table instead of every call")
	f.BoolP("compact", "c", false, "Add spacing before the final count")
	f.StringP("format", "f", config.DefaultFormat, "Output format (terminal, json)")
	f.Bool("no-color", false, "Disable colors and icons")
	f.String("target", config.DefaultTarget, "Built-in target set to search for")
	f.String("target-file", "", "Load the target set from a YAML file")
	f.StringSlice("ignore", nil, "Glob of paths to skip, relative to the scanned directory (repeatable)")
	f.String("max-file-size", config.DefaultMaxFileSize, "Skip files larger than this (e.g. 512KB, 2MiB)")
	f.Int("workers", 0, "Files to parse in parallel (0 = number of CPUs)")
	f.BoolVarP(&watchMode, "watch", "w", false, "Re-scan whenever a source file changes")
	RootCmd.AddCommand(scanCmd)
}

// scanner bundles everything a single scan pass needs
type scanner struct {
	ui       *ui.UI
	searcher *search.Searcher
	reporter reporter.Reporter
	logger   *slog.Logger
	roots    []string
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	wd := reporter.WorkingDir()

	cfg, err := config.Load(configPath, wd, cmd.Flags(), scanFlagKeys)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if cfg.File != "" {
		logger.Debug("loaded config", "file", cfg.File)
	}

	set, err := loadTargets(cfg)
	if err != nil {
		return fmt.Errorf("failed to load target set: %w", err)
	}

	roots, err := resolveRoots(args)
	if err != nil {
		return err
	}

	u := ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Format, cfg.NoColor)

	var rep reporter.Reporter
	switch cfg.Format {
	case "json":
		rep = reporter.NewJSONReporter(u.Writer, wd)
	default:
		rep = reporter.NewTerminalReporter(u.Writer, u, reporter.Options{
			ShowSummary: cfg.ShowSummary,
			CompactMode: cfg.CompactMode,
			BasePath:    wd,
			Target:      set.Name,
		})
	}

	s := &scanner{
		ui: u,
		searcher: search.New(search.Options{
			Targets:     set,
			Ignore:      cfg.Ignore,
			MaxFileSize: cfg.MaxFileSizeBytes(),
			Workers:     cfg.Workers,
			Logger:      logger,
		}),
		reporter: rep,
		logger:   logger,
		roots:    roots,
	}

	if watchMode {
		return s.watch(ctx, set)
	}

	found, err := s.run(ctx)
	if err != nil {
		return err
	}
	if found > 0 {
		return ErrReferencesFound
	}
	return nil
}

// run performs one discover, search and report pass and returns the
// number of references found
func (s *scanner) run(ctx context.Context) (int, error) {
	start := time.Now()

	progress := s.ui.StartProgress()
	progress.SetStage(ui.StageDiscover)

	paths, err := s.searcher.Discover(ctx, s.roots)
	if err != nil {
		progress.Done(err)
		return 0, err
	}

	progress.SetStage(ui.StageScan)
	progress.SetFileCount(len(paths))

	groups, err := s.searcher.Search(ctx, paths, progress.FileDone)
	progress.Done(err)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("scan finished",
		"files", humanize.Comma(int64(len(paths))),
		"matches", humanize.Comma(int64(search.Count(groups))),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if err := s.reporter.Report(ctx, groups); err != nil {
		return 0, fmt.Errorf("failed to write report: %w", err)
	}

	return search.Count(groups), nil
}

// watch reports once, then again after every batch of changes until ctx is done
func (s *scanner) watch(ctx context.Context, set *targets.Set) error {
	if _, err := s.run(ctx); err != nil {
		return err
	}

	var dirs []string
	for _, root := range s.roots {
		if info, err := os.Stat(root); err == nil && !info.IsDir() {
			root = filepath.Dir(root)
		}
		dirs = append(dirs, root)
	}

	w, err := watch.New(dirs, search.NewIgnorers(dirs, s.searcher.IgnorePatterns()), set.HandlesFile, s.logger)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	go w.Run(ctx)
	fmt.Fprintln(s.ui.ErrWriter, s.ui.Styles.Status(s.ui.Styles.Muted, s.ui.Styles.IconScan, "watching for changes, press ctrl+c to stop"))

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch := <-w.Changes():
			s.logger.Debug("rescanning", "changed", len(batch))
			fmt.Fprintln(s.ui.Writer)
			if _, err := s.run(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func loadTargets(cfg *config.Config) (*targets.Set, error) {
	if cfg.TargetFile != "" {
		return targets.LoadFromFile(cfg.TargetFile)
	}
	return targets.Load(cfg.Target)
}

func resolveRoots(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	roots := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		roots = append(roots, abs)
	}
	return roots, nil
}
