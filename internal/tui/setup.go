// ABOUTME: Interactive TUI wizard for configuring the castkeep directory.
// ABOUTME: 2-step bubbletea model collecting data directory and sync feed delay.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Step represents the current wizard step.
type Step int

const (
	StepDataDir Step = iota
	StepFeedDelay
	StepDone
)

const defaultFeedDelayMS = 1000

// SetupModel is the bubbletea model for the setup wizard.
type SetupModel struct {
	step     Step
	inputs   [2]textinput.Model
	quitting bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// defaultDataDir returns the default XDG data directory for castkeep.
func defaultDataDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "castkeep")
}

// NewSetupModel creates a new setup wizard model, pre-filling with existing config values.
func NewSetupModel(dataDir string, feedDelayMS int) SetupModel {
	dataDirInput := textinput.New()
	dataDirInput.Placeholder = defaultDataDir()
	dataDirInput.Focus()
	dataDirInput.Width = 50
	if dataDir != "" {
		dataDirInput.SetValue(dataDir)
	}

	delayInput := textinput.New()
	delayInput.Placeholder = strconv.Itoa(defaultFeedDelayMS)
	delayInput.Width = 50
	if feedDelayMS > 0 {
		delayInput.SetValue(strconv.Itoa(feedDelayMS))
	}

	return SetupModel{
		step:   StepDataDir,
		inputs: [2]textinput.Model{dataDirInput, delayInput},
	}
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.quitting = true
			return m, tea.Quit
		}

		if m.step == StepDataDir || m.step == StepFeedDelay {
			return m.updateInput(msg)
		}
	default:
		// Forward other messages (e.g. cursor blink) to the active input
		if m.step == StepDataDir || m.step == StepFeedDelay {
			idx := int(m.step)
			var cmd tea.Cmd
			m.inputs[idx], cmd = m.inputs[idx].Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m SetupModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		return m.handleEnter()
	}

	idx := int(m.step)
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	return m, cmd
}

func (m SetupModel) handleEnter() (tea.Model, tea.Cmd) {
	idx := int(m.step)

	if m.step == StepDataDir {
		val := strings.TrimSpace(m.inputs[0].Value())
		if val == "" {
			m.inputs[0].SetValue(defaultDataDir())
		}
	}

	if m.step == StepFeedDelay {
		val := strings.TrimSpace(m.inputs[1].Value())
		if val == "" {
			m.inputs[1].SetValue(strconv.Itoa(defaultFeedDelayMS))
		} else if n, err := strconv.Atoi(val); err != nil || n < 0 {
			return m, nil
		}
	}

	m.inputs[idx].Blur()

	switch m.step {
	case StepDataDir:
		m.step = StepFeedDelay
		m.inputs[1].Focus()
		return m, textinput.Blink
	case StepFeedDelay:
		m.step = StepDone
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   CASTKEEP"))
	b.WriteString(titleStyle.Render(" - Setup"))
	b.WriteString("\n\n")
	b.WriteString("Configure the castkeep podcast directory.\n\n")

	switch m.step {
	case StepDataDir:
		b.WriteString(stepStyle.Render("Step 1 of 2: Data Directory"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render(fmt.Sprintf("(press Enter for default: %s)", defaultDataDir())))
		b.WriteString("\n")
		b.WriteString(m.inputs[0].View())
		b.WriteString("\n")

	case StepFeedDelay:
		b.WriteString(fmt.Sprintf("  Data directory: %s\n\n", m.inputs[0].Value()))
		b.WriteString(stepStyle.Render("Step 2 of 2: Feed Delay"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("(milliseconds between feeds during sync, press Enter for 1000)"))
		b.WriteString("\n")
		b.WriteString(m.inputs[1].View())
		b.WriteString("\n")

	case StepDone:
		b.WriteString(successStyle.Render("Setup complete!"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  Data directory: %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  Feed delay:     %sms\n", m.inputs[1].Value()))
		b.WriteString("\n")
	}

	return b.String()
}

// Result returns the entered values.
func (m SetupModel) Result() (dataDir string, feedDelayMS int) {
	delay, err := strconv.Atoi(strings.TrimSpace(m.inputs[1].Value()))
	if err != nil {
		delay = defaultFeedDelayMS
	}
	return m.inputs[0].Value(), delay
}

// ShouldSave returns true if the wizard completed and the user did not cancel.
func (m SetupModel) ShouldSave() bool {
	return m.step == StepDone && !m.quitting
}
