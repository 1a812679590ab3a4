package ui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
)

// ProgressController manages the bubbletea program for progress display
type ProgressController struct {
	ui      *UI
	program *tea.Program
}

// StartProgress starts the progress display if in interactive mode
// Returns nil if not in interactive mode
func (ui *UI) StartProgress() *ProgressController {
	if ui.Mode != OutputModeInteractive {
		return nil
	}

	m := NewModel()
	p := tea.NewProgram(m, tea.WithOutput(ui.ErrWriter))

	ctrl := &ProgressController{
		ui:      ui,
		program: p,
	}

	go func() {
		// The scan does not depend on the display, so a failed program is ignored
		_, _ = p.Run()
	}()

	return ctrl
}

// SetStage updates the current stage
func (pc *ProgressController) SetStage(stage Stage) {
	if pc != nil && pc.program != nil {
		pc.program.Send(StageMsg(stage))
	}
}

// SetFileCount sets the total number of files to scan
func (pc *ProgressController) SetFileCount(count int) {
	if pc != nil && pc.program != nil {
		pc.program.Send(FileCountMsg(count))
	}
}

// FileDone records a scanned file. Safe for concurrent use.
func (pc *ProgressController) FileDone(path string) {
	if pc != nil && pc.program != nil {
		pc.program.Send(FileDoneMsg(filepath.Base(path)))
	}
}

// Done signals that all work is complete
func (pc *ProgressController) Done(err error) {
	if pc != nil && pc.program != nil {
		pc.program.Send(DoneMsg{Err: err})
		pc.program.Wait()
	}
}
