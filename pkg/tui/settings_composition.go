package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/proxydesk/proxydesk-terminal/pkg/models"
	"github.com/proxydesk/proxydesk-terminal/pkg/workflows"
)

// SettingsDataStore holds the session and the draft being shown
type SettingsDataStore struct {
	session *workflows.Session
	draft   models.Settings
	// last rejection per field, cleared when the field commits
	fieldErrs map[models.Field]string
}

// SettingsUIComponents manages UI-specific components
type SettingsUIComponents struct {
	viewport viewport.Model
	confirm  *ConfirmationModel
}

// SettingsViewportManager manages viewport and layout
type SettingsViewportManager struct {
	width  int
	height int
	dark   bool
}

// SettingsFormInputs tracks focus and the single inline editor
type SettingsFormInputs struct {
	input      textinput.Model
	editing    bool
	focusIndex int
	// fields with a change in flight
	pending map[models.Field]bool
}
