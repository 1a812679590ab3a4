package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Stage represents the current stage of a scan
type Stage int

const (
	StageLoadConfig Stage = iota
	StageDiscover
	StageScan
	StageDone
)

// Message types for updating the model
type (
	StageMsg     Stage
	FileCountMsg int
	FileDoneMsg  string
	DoneMsg      struct{ Err error }
)

// Model is the Bubbletea model for progress display
type Model struct {
	stage     Stage
	spinner   spinner.Model
	progress  progress.Model
	current   string
	fileCount int
	filesDone int
	width     int
	quitting  bool
	err       error
}

// NewModel creates a new progress model
func NewModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))

	p := progress.New(progress.WithDefaultGradient())

	return Model{
		stage:    StageLoadConfig,
		spinner:  s,
		progress: p,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 4
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StageMsg:
		m.stage = Stage(msg)
		return m, nil

	case FileCountMsg:
		m.fileCount = int(msg)
		return m, nil

	case FileDoneMsg:
		m.filesDone++
		m.current = string(msg)
		return m, nil

	case DoneMsg:
		m.err = msg.Err
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	switch m.stage {
	case StageLoadConfig:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Loading configuration...")

	case StageDiscover:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Finding source files...")

	case StageScan:
		if m.fileCount > 0 {
			pct := float64(m.filesDone) / float64(m.fileCount)
			sb.WriteString(m.progress.ViewAs(pct))
			sb.WriteString("\n")
		}
		sb.WriteString(m.spinner.View())
		sb.WriteString(fmt.Sprintf(" Scanning %d/%d files", m.filesDone, m.fileCount))
		if m.current != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", m.current))
		}
	}

	return sb.String()
}
