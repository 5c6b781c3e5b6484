package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/proxydesk/proxydesk-terminal/pkg/models"
	"github.com/proxydesk/proxydesk-terminal/pkg/settings"
	"github.com/proxydesk/proxydesk-terminal/pkg/workflows"
)

type rowKind int

const (
	rowToggle rowKind = iota
	rowNumber
	rowText
	rowRecord // edited as a JSON object
)

type settingRow struct {
	field   models.Field
	label   string
	comment string
	kind    rowKind
}

type rowGroup struct {
	title string
	rows  []settingRow
}

var settingGroups = []rowGroup{
	{
		title: "PROXY",
		rows: []settingRow{
			{models.FieldLocalPort, "Local Port", "SOCKS5 port the local server listens on", rowNumber},
			{models.FieldPacPort, "PAC Port", "Port serving proxy.pac", rowNumber},
			{models.FieldGfwListURL, "GFW List URL", "Source list used when the PAC file is regenerated", rowText},
			{models.FieldHTTPProxy, "HTTP Proxy", `{"enable": true, "port": 1095}`, rowRecord},
			{models.FieldACL, "ACL", `{"enable": true, "url": "/path/to/rules.acl"}, or press a to pick a file`, rowRecord},
			{models.FieldLoadBalance, "Load Balance", `{"enable": true, "strategy": "POLLING", "count": 3}; missing keys use defaults`, rowRecord},
			{models.FieldVerbose, "Verbose Log", "Server logs every connection", rowToggle},
		},
	},
	{
		title: "APPLICATION",
		rows: []settingRow{
			{models.FieldAutoLaunch, "Launch on Boot", "Registered with the system by the backend", rowToggle},
			{models.FieldFixedMenu, "Fixed Menu", "", rowToggle},
			{models.FieldAutoHide, "Auto Hide", "", rowToggle},
			{models.FieldAutoTheme, "Follow System Theme", "Tracks the system dark mode while on", rowToggle},
			{models.FieldDarkMode, "Dark Mode", "", rowToggle},
			{models.FieldLang, "Language", "", rowText},
		},
	},
}

// settingRows flattens the groups in display order
func settingRows() []settingRow {
	var rows []settingRow
	for _, g := range settingGroups {
		rows = append(rows, g.rows...)
	}
	return rows
}

// SettingsEditorModel edits the draft one field at a time. Every change
// goes through the session, which validates and commits it immediately.
type SettingsEditorModel struct {
	SettingsDataStore
	SettingsUIComponents
	SettingsViewportManager
	SettingsFormInputs

	rows []settingRow
}

type draftLoadedMsg struct {
	draft models.Settings
}

// fieldResultMsg carries the outcome of one ChangeField round trip
type fieldResultMsg struct {
	field models.Field
	err   error
}

type pacResultMsg struct {
	ok bool
}

type aclResultMsg struct {
	path string
	err  error
}

// NewSettingsEditorModel creates the editor over an open session
func NewSettingsEditorModel(session *workflows.Session) *SettingsEditorModel {
	m := &SettingsEditorModel{
		SettingsDataStore: SettingsDataStore{
			session:   session,
			fieldErrs: make(map[models.Field]string),
		},
		SettingsUIComponents: SettingsUIComponents{
			viewport: viewport.New(80, 20),
			confirm:  NewConfirmation(),
		},
		SettingsFormInputs: SettingsFormInputs{
			input:   textinput.New(),
			pending: make(map[models.Field]bool),
		},
		rows: settingRows(),
	}

	m.input.CharLimit = 512
	m.input.Width = 50

	return m
}

func (m *SettingsEditorModel) Init() tea.Cmd {
	return m.loadDraft()
}

func (m *SettingsEditorModel) loadDraft() tea.Cmd {
	return func() tea.Msg {
		return draftLoadedMsg{draft: m.session.Coordinator.Draft()}
	}
}

func (m *SettingsEditorModel) focused() settingRow {
	return m.rows[m.focusIndex]
}

func (m *SettingsEditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)

	case draftLoadedMsg:
		m.draft = msg.draft
		m.updateViewportContent()

	case fieldResultMsg:
		delete(m.pending, msg.field)
		m.draft = m.session.Coordinator.Draft()
		if msg.err != nil {
			m.fieldErrs[msg.field] = msg.err.Error()
			m.updateViewportContent()
			return m, statusCmd(fmt.Sprintf("✗ %s", msg.err))
		}
		delete(m.fieldErrs, msg.field)
		m.updateViewportContent()
		return m, statusCmd(fmt.Sprintf("✓ %s saved", msg.field))

	case aclResultMsg:
		m.draft = m.session.Coordinator.Draft()
		m.updateViewportContent()
		return m, nil

	case pacResultMsg:
		return m, nil

	case tea.KeyMsg:
		if m.confirm.Active() {
			return m, m.confirm.Update(msg)
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateNavigation(msg)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *SettingsEditorModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		m.updateViewportContent()
		return m, nil

	case "enter":
		m.editing = false
		m.input.Blur()
		row := m.focused()
		value := strings.TrimSpace(m.input.Value())
		m.updateViewportContent()
		return m, m.changeField(row.field, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.updateViewportContent()
	return m, cmd
}

func (m *SettingsEditorModel) updateNavigation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k", "shift+tab":
		m.focusIndex--
		if m.focusIndex < 0 {
			m.focusIndex = len(m.rows) - 1
		}

	case "down", "j", "tab":
		m.focusIndex++
		if m.focusIndex >= len(m.rows) {
			m.focusIndex = 0
		}

	case " ", "enter":
		row := m.focused()
		if row.kind == rowToggle {
			current, _ := settings.GetField(m.draft, row.field)
			on, _ := current.(bool)
			m.updateViewportContent()
			return m, m.changeField(row.field, !on)
		}
		m.input.SetValue(m.editValue(row))
		m.input.CursorEnd()
		m.input.Focus()
		m.editing = true

	case "g":
		return m, m.regeneratePac()

	case "a":
		return m, m.selectACL()

	case "c":
		url := workflows.PacURL(m.draft)
		if err := clipboard.WriteAll(url); err != nil {
			return m, statusCmd(fmt.Sprintf("✗ Failed to copy: %v", err))
		}
		return m, statusCmd("✓ Copied " + url)

	case "ctrl+r":
		m.confirm.Show(ConfirmationConfig{
			Title:       "RESET SETTINGS",
			Message:     "Every setting goes back to its default.",
			Warning:     "All backend services reconnect when you leave.",
			Destructive: true,
			Type:        ConfirmTypeDialog,
			Width:       m.width - 4,
		}, m.resetData, nil)
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.updateViewportContent()
	return m, nil
}

// editValue is the text the inline editor starts with
func (m *SettingsEditorModel) editValue(row settingRow) string {
	value, err := settings.GetField(m.draft, row.field)
	if err != nil {
		return ""
	}
	if row.kind == rowRecord {
		data, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return string(data)
	}
	return fmt.Sprintf("%v", value)
}

func (m *SettingsEditorModel) changeField(field models.Field, value any) tea.Cmd {
	m.pending[field] = true
	session := m.session
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if field == models.FieldAutoTheme {
			enabled, _ := value.(bool)
			err = session.SetAutoTheme(ctx, enabled)
		} else {
			err = session.ChangeField(ctx, field, value)
		}
		return fieldResultMsg{field: field, err: err}
	}
}

func (m *SettingsEditorModel) regeneratePac() tea.Cmd {
	session := m.session
	draft := m.draft
	return func() tea.Msg {
		resp := <-session.Pac.Regenerate(workflows.PacSource{URL: draft.GfwListURL}, draft)
		return pacResultMsg{ok: resp.OK()}
	}
}

func (m *SettingsEditorModel) selectACL() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		path, err := session.ACL.Select(context.Background())
		return aclResultMsg{path: path, err: err}
	}
}

func (m *SettingsEditorModel) resetData() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		if err := session.Coordinator.ResetData(); err != nil {
			return StatusMsg(fmt.Sprintf("✗ Reset failed: %v", err))
		}
		return draftLoadedMsg{draft: session.Coordinator.Draft()}
	}
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg(text) }
}

func (m *SettingsEditorModel) View() string {
	p := paletteFor(m.dark)

	if m.confirm.Active() {
		return lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1).Render(m.confirm.View(p))
	}

	contentStyle := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.accent).
		Width(m.width - 4).
		Height(m.height - 8)

	m.updateViewportContent()

	var s strings.Builder
	s.WriteString(renderHeader(m.width, "SETTINGS", p))
	s.WriteString("\n")
	s.WriteString(contentStyle.Render(borderStyle.Render(contentStyle.Render(m.viewport.View()))))

	help := []string{
		"↑↓ navigate",
		"space toggle",
		"enter edit",
		"g regenerate PAC",
		"a pick ACL",
		"c copy PAC URL",
		"^r reset",
		"q quit",
	}
	if m.editing {
		help = []string{"enter save", "esc cancel"}
	}
	helpStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Foreground(p.muted).
		Width(m.width-4).
		Padding(0, 1)
	s.WriteString("\n")
	s.WriteString(contentStyle.Render(helpStyle.Render(
		lipgloss.NewStyle().Width(m.width - 8).Align(lipgloss.Right).Render(formatHelpText(help)))))

	return s.String()
}

func (m *SettingsEditorModel) updateViewportContent() {
	p := paletteFor(m.dark)

	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(p.warning)
	labelStyle := lipgloss.NewStyle().Width(22).Foreground(p.muted)
	commentStyle := lipgloss.NewStyle().Foreground(p.comment).Italic(true)
	focusedStyle := lipgloss.NewStyle().Foreground(p.accent)
	normalStyle := lipgloss.NewStyle().Foreground(p.text)
	errStyle := lipgloss.NewStyle().Foreground(p.danger)

	wrapWidth := m.viewport.Width - 4
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	var content strings.Builder
	index := 0
	for _, group := range settingGroups {
		content.WriteString(sectionStyle.Render(group.title))
		content.WriteString("\n\n")

		for _, row := range group.rows {
			focused := index == m.focusIndex
			index++

			value := m.displayValue(row)
			if focused && m.editing {
				value = m.input.View()
			}
			if m.pending[row.field] {
				value += " …"
			}

			line := labelStyle.Render(row.label+":") + " " + value
			if focused {
				content.WriteString(focusedStyle.Render("▸ " + line))
			} else {
				content.WriteString(normalStyle.Render("  " + line))
			}
			content.WriteString("\n")

			if msg, ok := m.fieldErrs[row.field]; ok {
				content.WriteString(errStyle.Render(wordwrap.String("  ✗ "+msg, wrapWidth)))
				content.WriteString("\n")
			} else if focused && row.comment != "" {
				content.WriteString(commentStyle.Render(wordwrap.String("  # "+row.comment, wrapWidth)))
				content.WriteString("\n")
			}
		}
		content.WriteString("\n")
	}

	content.WriteString(commentStyle.Render("  PAC URL: " + workflows.PacURL(m.draft)))
	content.WriteString("\n")

	m.viewport.SetContent(content.String())
}

func (m *SettingsEditorModel) displayValue(row settingRow) string {
	value, err := settings.GetField(m.draft, row.field)
	if err != nil {
		return "?"
	}
	switch v := value.(type) {
	case bool:
		if v {
			return "[✓]"
		}
		return "[ ]"
	case models.HTTPProxy:
		return fmt.Sprintf("%s port %d", onOff(v.Enable), v.Port)
	case models.ACL:
		if v.URL == "" {
			return onOff(v.Enable)
		}
		return fmt.Sprintf("%s %s", onOff(v.Enable), v.URL)
	case models.LoadBalance:
		return fmt.Sprintf("%s %s × %d", onOff(v.Enable), v.Strategy, v.Count)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *SettingsEditorModel) SetDark(dark bool) {
	m.dark = dark
	m.updateViewportContent()
}

func (m *SettingsEditorModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	if width == 0 || height == 0 {
		return
	}
	m.viewport.Width = width - 8
	m.viewport.Height = height - 10
	m.updateViewportContent()
}

// Refresh reloads the draft after a change made outside the editor
func (m *SettingsEditorModel) Refresh() {
	m.draft = m.session.Coordinator.Draft()
	m.updateViewportContent()
}
