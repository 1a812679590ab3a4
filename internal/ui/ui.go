package ui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// OutputMode determines how output should be formatted
type OutputMode int

const (
	// OutputModeInteractive enables full colors, spinners, and progress bars
	OutputModeInteractive OutputMode = iota
	// OutputModePlain disables colors and progress (for piped output or --no-color)
	OutputModePlain
	// OutputModeJSON outputs raw JSON only
	OutputModeJSON
)

// UI provides a unified interface for terminal output with TTY detection
type UI struct {
	Mode      OutputMode
	Writer    io.Writer
	ErrWriter io.Writer
	Styles    *Styles
}

// New creates a new UI instance with automatic TTY detection.
// noColor forces plain output even on a terminal.
func New(w, errW io.Writer, format string, noColor bool) *UI {
	mode := detectMode(w, format, noColor)
	return &UI{
		Mode:      mode,
		Writer:    w,
		ErrWriter: errW,
		Styles:    NewStyles(mode == OutputModeInteractive),
	}
}

// NewPlain creates a UI that never styles its output
func NewPlain(w, errW io.Writer) *UI {
	return &UI{
		Mode:      OutputModePlain,
		Writer:    w,
		ErrWriter: errW,
		Styles:    NewStyles(false),
	}
}

// detectMode determines the output mode based on TTY and format flags
func detectMode(w io.Writer, format string, noColor bool) OutputMode {
	if format == "json" {
		return OutputModeJSON
	}
	if noColor || os.Getenv("NO_COLOR") != "" {
		return OutputModePlain
	}

	if f, ok := w.(*os.File); ok {
		if term.IsTerminal(int(f.Fd())) {
			return OutputModeInteractive
		}
	}

	return OutputModePlain
}

// IsInteractive returns true if the output is interactive (TTY)
func (ui *UI) IsInteractive() bool {
	return ui.Mode == OutputModeInteractive
}

// IsJSON returns true if JSON output mode is enabled
func (ui *UI) IsJSON() bool {
	return ui.Mode == OutputModeJSON
}
