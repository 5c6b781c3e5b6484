package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/proxydesk/proxydesk-terminal/pkg/events"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
	"github.com/proxydesk/proxydesk-terminal/pkg/workflows"
)

const statusDuration = 4 * time.Second

// App is the root bubbletea model. It owns the status bar and the waiting
// indicator and routes everything else to the settings editor.
type App struct {
	editor *SettingsEditorModel
	width  int
	height int

	statusMsg     string
	statusVariant models.Variant
	statusSeq     int

	waiting  bool
	spinner  spinner.Model
	dark     bool
	quitting *ConfirmationModel
}

// Messages for communication between views and the bus bridge
type (
	StatusMsg           string
	PersistentStatusMsg string
	clearStatusMsg      struct{ seq int }

	NotificationMsg    models.Notification
	WaitingMsg         bool
	ThemeMsg           models.ThemeUpdate
	SettingsChangedMsg models.Settings
	FieldCommittedMsg  events.FieldCommitted
)

// NewApp creates the top-level model for session
func NewApp(session *workflows.Session) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(darkPalette.accent)

	dark := session.Coordinator.Draft().DarkMode
	editor := NewSettingsEditorModel(session)
	editor.SetDark(dark)

	return &App{
		editor:   editor,
		spinner:  s,
		dark:     dark,
		quitting: NewConfirmation(),
	}
}

func (a *App) Init() tea.Cmd {
	return a.editor.Init()
}

func (a *App) setStatus(text string, variant models.Variant) tea.Cmd {
	a.statusMsg = text
	a.statusVariant = variant
	a.statusSeq++
	seq := a.statusSeq
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.editor.SetSize(msg.Width, msg.Height-1)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.quitting.Active() {
			return a, a.quitting.Update(msg)
		}
		if msg.String() == "q" && !a.editor.editing && !a.editor.confirm.Active() {
			return a, a.quit()
		}

	case StatusMsg:
		return a, a.setStatus(string(msg), models.VariantInfo)

	case PersistentStatusMsg:
		a.statusMsg = string(msg)
		a.statusVariant = models.VariantInfo
		a.statusSeq++
		return a, nil

	case clearStatusMsg:
		if msg.seq == a.statusSeq {
			a.statusMsg = ""
		}
		return a, nil

	case NotificationMsg:
		return a, a.setStatus(msg.Message, msg.Variant)

	case WaitingMsg:
		a.waiting = bool(msg)
		if a.waiting {
			return a, a.spinner.Tick
		}
		return a, nil

	case spinner.TickMsg:
		if !a.waiting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case ThemeMsg:
		a.dark = msg.ShouldUseDarkColors
		a.editor.SetDark(a.dark)
		return a, nil

	case SettingsChangedMsg, FieldCommittedMsg:
		a.editor.Refresh()
		return a, nil
	}

	m, cmd := a.editor.Update(msg)
	if editor, ok := m.(*SettingsEditorModel); ok {
		a.editor = editor
	}
	return a, cmd
}

// quit leaves right away unless a PAC regeneration is still running
func (a *App) quit() tea.Cmd {
	if !a.waiting {
		return tea.Quit
	}
	a.quitting.Show(ConfirmationConfig{
		Message:     "PAC regeneration is still running. Quit anyway?",
		Destructive: true,
		Type:        ConfirmTypeInline,
	}, func() tea.Cmd { return tea.Quit }, nil)
	return nil
}

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	p := paletteFor(a.dark)
	content := a.editor.View()

	var bar string
	switch {
	case a.quitting.Active():
		bar = a.quitting.View(p)
	case a.waiting:
		bar = a.spinner.View() + " Regenerating PAC file..."
	case a.statusMsg != "":
		bar = a.statusMsg
	}
	if bar == "" {
		return content
	}

	color := p.accent
	switch a.statusVariant {
	case models.VariantSuccess:
		color = p.success
	case models.VariantError:
		color = p.danger
	case models.VariantWarning:
		color = p.warning
	}
	statusStyle := lipgloss.NewStyle().
		Foreground(color).
		Padding(0, 1)

	return lipgloss.JoinVertical(lipgloss.Top, content, statusStyle.Render(bar))
}
