package reporter

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/pthm/rayscan/internal/search"
)

// ResultPrinter renders a single match as one line of output
type ResultPrinter interface {
	Print(w io.Writer, m search.Match) error
}

// ConsoleResultPrinter prints "path:line  call text", coloring the
// location when color is enabled
type ConsoleResultPrinter struct {
	basePath string
	path     *color.Color
	line     *color.Color
	call     *color.Color
}

// NewConsoleResultPrinter creates a printer that relativizes paths to basePath
func NewConsoleResultPrinter(basePath string, colorize bool) *ConsoleResultPrinter {
	p := &ConsoleResultPrinter{
		basePath: basePath,
		path:     color.New(color.FgHiBlue),
		line:     color.New(color.FgHiBlack),
		call:     color.New(color.FgYellow),
	}

	if colorize {
		p.path.EnableColor()
		p.line.EnableColor()
		p.call.EnableColor()
	} else {
		p.path.DisableColor()
		p.line.DisableColor()
		p.call.DisableColor()
	}

	return p
}

// Print writes one line for m
func (p *ConsoleResultPrinter) Print(w io.Writer, m search.Match) error {
	_, err := fmt.Fprintf(w, "  %s%s  %s\n",
		p.path.Sprint(RelativePath(m.File.Filename, p.basePath)),
		p.line.Sprintf(":%d", m.Call.Line),
		p.call.Sprint(callText(m.Call)),
	)
	return err
}

func callText(c search.Call) string {
	if c.Text != "" {
		return c.Text
	}
	return c.Name + "()"
}
