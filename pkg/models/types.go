package models

// Field names a top-level settings entry, or a pseudo field touched by
// editors that do not own a settings key (aclRules, pac, $settings).
type Field string

const (
	FieldLocalPort   Field = "localPort"
	FieldPacPort     Field = "pacPort"
	FieldGfwListURL  Field = "gfwListUrl"
	FieldHTTPProxy   Field = "httpProxy"
	FieldLoadBalance Field = "loadBalance"
	FieldACL         Field = "acl"
	FieldAutoLaunch  Field = "autoLaunch"
	FieldFixedMenu   Field = "fixedMenu"
	FieldDarkMode    Field = "darkMode"
	FieldAutoTheme   Field = "autoTheme"
	FieldVerbose     Field = "verbose"
	FieldAutoHide    Field = "autoHide"
	FieldLang        Field = "lang"

	// Pseudo fields
	FieldHTTPProxyPort Field = "httpProxyPort"
	FieldACLRules      Field = "aclRules"
	FieldPac           Field = "pac"
	FieldWholeSettings Field = "$settings"
)

// SettingsFields lists the fields backed by a Settings key, in display order
var SettingsFields = []Field{
	FieldLocalPort,
	FieldPacPort,
	FieldGfwListURL,
	FieldHTTPProxy,
	FieldACL,
	FieldAutoLaunch,
	FieldFixedMenu,
	FieldAutoHide,
	FieldAutoTheme,
	FieldDarkMode,
	FieldLang,
	FieldLoadBalance,
	FieldVerbose,
}

// IsSettingsField reports whether f maps to a Settings key
func IsSettingsField(f Field) bool {
	for _, known := range SettingsFields {
		if f == known {
			return true
		}
	}
	return false
}

// ThemeUpdate is the payload of a theme broadcast
type ThemeUpdate struct {
	ShouldUseDarkColors bool `json:"shouldUseDarkColors" mapstructure:"shouldUseDarkColors"`
}

// Variant is the severity of a user-visible notification
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
	VariantWarning Variant = "warning"
	VariantInfo    Variant = "info"
)

// Notification is a user-visible message raised by a workflow
type Notification struct {
	Message string
	Variant Variant
}
