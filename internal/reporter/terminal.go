package reporter

import (
	"context"
	"fmt"
	"io"

	"github.com/pthm/rayscan/internal/search"
	"github.com/pthm/rayscan/internal/ui"
)

// Options controls what the terminal reporter prints
type Options struct {
	// ShowSummary replaces the per-match listing with a per-file table
	ShowSummary bool
	// CompactMode adds spacing before the final count line
	CompactMode bool
	// BasePath is the directory paths are shown relative to
	BasePath string
	// Target names the debug helper in the "no references" message
	Target string
	// Printer renders each match; defaults to a ConsoleResultPrinter
	Printer ResultPrinter
}

// TerminalReporter prints scan results for humans
type TerminalReporter struct {
	w      io.Writer
	styles *ui.Styles
	opts   Options
}

// NewTerminalReporter creates a new terminal reporter
func NewTerminalReporter(w io.Writer, u *ui.UI, opts Options) *TerminalReporter {
	if opts.Target == "" {
		opts.Target = "ray"
	}
	if opts.Printer == nil {
		opts.Printer = NewConsoleResultPrinter(opts.BasePath, u.Styles.Enabled())
	}
	return &TerminalReporter{w: w, styles: u.Styles, opts: opts}
}

// Report prints the banner, the listing (unless ShowSummary is set) and the summary.
// The first write error aborts the report and is returned.
func (r *TerminalReporter) Report(ctx context.Context, groups []search.FileResults) error {
	s := r.styles

	if err := r.println(s.Status(s.Accent, s.IconScan, "scan complete.")); err != nil {
		return err
	}

	if len(groups) > 0 {
		if err := r.println(""); err != nil {
			return err
		}
	}

	if !r.opts.ShowSummary {
		for _, group := range groups {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, match := range group.Matches {
				if err := r.opts.Printer.Print(r.w, match); err != nil {
					return err
				}
			}
		}
	}

	return r.printSummary(groups)
}

func (r *TerminalReporter) printSummary(groups []search.FileResults) error {
	s := r.styles
	tally := Summarize(groups)

	totalCalls := tally.Functions.Total()
	totalFiles := tally.Files.Len()

	if totalFiles == 0 {
		msg := fmt.Sprintf("No references to %s were found.", r.opts.Target)
		return r.println(s.Status(s.Success, s.IconSuccess, msg))
	}

	if r.opts.ShowSummary {
		if err := RenderSummaryTable(r.w, tally.Files, r.opts.BasePath); err != nil {
			return err
		}
		if err := r.println(""); err != nil {
			return err
		}
	}

	if r.opts.CompactMode {
		if err := r.println(""); err != nil {
			return err
		}
	}

	msg := fmt.Sprintf("Found %d references in %d files.", totalCalls, totalFiles)
	return r.println(s.Status(s.Alert, s.IconFound, msg))
}

func (r *TerminalReporter) println(line string) error {
	_, err := fmt.Fprintln(r.w, line)
	return err
}
