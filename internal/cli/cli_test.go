package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxydesk/proxydesk-terminal/pkg/models"
	"github.com/proxydesk/proxydesk-terminal/pkg/settings"
)

func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	SetOutput(out, errOut)
	t.Cleanup(func() {
		SetOutput(os.Stdout, os.Stderr)
		SetGlobalFlags(false, false, false)
		stdin = os.Stdin
	})
	return out, errOut
}

func TestParseField(t *testing.T) {
	tests := []struct {
		input   string
		want    models.Field
		wantErr bool
	}{
		{input: "localPort", want: models.FieldLocalPort},
		{input: "LOCALPORT", want: models.FieldLocalPort},
		{input: "gfwlisturl", want: models.FieldGfwListURL},
		{input: "httpProxy", want: models.FieldHTTPProxy},
		{input: "aclRules", wantErr: true},
		{input: "$settings", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseField(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "localPort")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOnOff(t *testing.T) {
	for _, on := range []string{"on", "ON", "true", "yes", "1", " on "} {
		got, err := ParseOnOff(on)
		assert.NoError(t, err, on)
		assert.True(t, got, on)
	}
	for _, off := range []string{"off", "false", "No", "0"} {
		got, err := ParseOnOff(off)
		assert.NoError(t, err, off)
		assert.False(t, got, off)
	}
	_, err := ParseOnOff("maybe")
	assert.Error(t, err)
}

func TestValidateFilePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rules.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.NoError(t, ValidateFilePath(file))

	err := ValidateFilePath(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")

	err = ValidateFilePath(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidateDataDir(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, ValidateDataDir(dir))

	err := ValidateDataDir(filepath.Join(dir, "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proxydesk init")
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "exactly10!", max: 10, want: "exactly10!"},
		{in: "a longer string", max: 8, want: "a lon..."},
		{in: "代理服务器设置", max: 5, want: "代理..."},
		{in: "abcdef", max: 2, want: "ab"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateString(tt.in, tt.max))
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "1080", FormatValue(1080))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "enable=true port=1095", FormatValue(models.HTTPProxy{Enable: true, Port: 1095}))
	assert.Equal(t, "enable=false url=/etc/rules.acl", FormatValue(models.ACL{URL: "/etc/rules.acl"}))
	assert.Equal(t, "enable=true strategy=RANDOM count=4",
		FormatValue(models.LoadBalance{Enable: true, Strategy: models.StrategyRandom, Count: 4}))
}

func TestOutputResults(t *testing.T) {
	data := map[string]any{"localPort": 1080}

	var buf bytes.Buffer
	require.NoError(t, OutputResults(&buf, "json", data))
	assert.JSONEq(t, `{"localPort": 1080}`, buf.String())

	buf.Reset()
	require.NoError(t, OutputResults(&buf, "yaml", data))
	assert.Equal(t, "localPort: 1080\n", buf.String())

	buf.Reset()
	assert.Error(t, OutputResults(&buf, "xml", data))
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableFormatter(&buf)
	table.Header("SETTING", "VALUE")
	table.Row("localPort", "1080")
	table.Row("gfwListUrl", "https://example.com")
	table.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "SETTING"))
	assert.Equal(t, strings.Index(lines[2], "1080"), strings.Index(lines[3], "https"))
}

func TestPrintHelpers(t *testing.T) {
	out, errOut := captureOutput(t)

	SetGlobalFlags(false, true, false)
	PrintSuccess("saved %s", "localPort")
	PrintInfo("hello")
	PrintWarning("careful")
	PrintError("broken")

	assert.Equal(t, "OK: saved localPort\nINFO: hello\n", out.String())
	assert.Equal(t, "WARNING: careful\nERROR: broken\n", errOut.String())

	out.Reset()
	errOut.Reset()
	SetGlobalFlags(true, true, false)
	PrintSuccess("hidden")
	PrintInfo("hidden")
	PrintError("shown")

	assert.Empty(t, out.String())
	assert.Equal(t, "ERROR: shown\n", errOut.String())
}

func TestPrintNotification(t *testing.T) {
	out, errOut := captureOutput(t)
	SetGlobalFlags(false, true, false)

	PrintNotification(models.Notification{Message: "Successful operation", Variant: models.VariantSuccess})
	PrintNotification(models.Notification{Message: "User canceled", Variant: models.VariantWarning})
	PrintNotification(models.Notification{Message: "Failed operation", Variant: models.VariantError})
	PrintNotification(models.Notification{Message: "fyi", Variant: models.VariantInfo})

	assert.Equal(t, "OK: Successful operation\nINFO: fyi\n", out.String())
	assert.Equal(t, "WARNING: User canceled\nERROR: Failed operation\n", errOut.String())
}

func TestPrintSignals(t *testing.T) {
	out, _ := captureOutput(t)
	SetGlobalFlags(false, true, false)

	PrintSignals(nil)
	PrintSignals([]settings.Signal{settings.SignalServer, settings.SignalPac})

	assert.Equal(t, "INFO: No reconnect needed\nINFO: Reconnecting: reconnect-server, reconnect-pac\n", out.String())
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		defaultYes bool
		skip       bool
		want       bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "full word", input: "YES\n", want: true},
		{name: "no", input: "n\n", defaultYes: true, want: false},
		{name: "empty takes default yes", input: "\n", defaultYes: true, want: true},
		{name: "empty takes default no", input: "\n", want: false},
		{name: "skip confirm", input: "", skip: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := captureOutput(t)
			SetGlobalFlags(false, false, tt.skip)
			stdin = strings.NewReader(tt.input)

			got, err := Confirm("Reset?", tt.defaultYes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if !tt.skip {
				assert.Contains(t, out.String(), "Reset?")
			}
		})
	}
}
