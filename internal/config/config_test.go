package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
filters:
  controls:
    ranges:
      - {start: 0x00, end: 0x1F}
      - {single: 127}
profiles:
  - name: clean
    display_name: Clean
    transformations:
      - filters: [{ref: controls}, {filter: {ranges: [{single: 0xA0}]}}]
        action: remove
      - filters: [{ref: controls}]
        action: {replace: "<{uni-codepoint}>"}
default_profile: clean
gui_replacement_profile: clean
logging:
  level: debug
  format: json
server:
  port: 9000
  read_timeout: 5s
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "clipboard-cleaner.yaml", sampleYAML))
	require.NoError(t, err)

	require.Contains(t, cfg.Filters, "controls")
	ranges := cfg.Filters["controls"].Ranges
	require.Len(t, ranges, 2)
	require.NotNil(t, ranges[0].Start)
	require.NotNil(t, ranges[0].End)
	assert.Equal(t, uint32(0x1F), *ranges[0].End)
	require.NotNil(t, ranges[1].Single)
	assert.Equal(t, uint32(127), *ranges[1].Single)

	require.Len(t, cfg.Profiles, 1)
	p := cfg.Profiles[0]
	assert.Equal(t, "clean", p.Name)
	assert.Equal(t, "Clean", p.DisplayName)
	require.Len(t, p.Transformations, 2)

	first := p.Transformations[0]
	assert.Equal(t, RemoveAction(), first.Action)
	require.Len(t, first.Filters, 2)
	assert.Equal(t, "controls", first.Filters[0].Ref)
	require.NotNil(t, first.Filters[1].Filter)
	assert.Equal(t, uint32(0xA0), *first.Filters[1].Filter.Ranges[0].Single)

	assert.Equal(t, ReplaceAction("<{uni-codepoint}>"), p.Transformations[1].Action)

	assert.Equal(t, "clean", cfg.DefaultProfile)
	assert.Equal(t, "clean", cfg.GUIReplacementProfile)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, GetDefaults().Server.WriteTimeout, cfg.Server.WriteTimeout)
}

func TestLoad_TOMLAndJSON(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "clipboard-cleaner.toml",
			content: `
default_profile = "p"

[filters.tab]
ranges = [{single = 9}]

[[profiles]]
name = "p"

[[profiles.transformations]]
filters = [{ref = "tab"}]
action = {replace = "{entity}"}
`,
		},
		{
			name: "json",
			file: "clipboard-cleaner.json",
			content: `{
  "default_profile": "p",
  "filters": {"tab": {"ranges": [{"single": 9}]}},
  "profiles": [{"name": "p", "transformations": [
    {"filters": [{"ref": "tab"}], "action": {"replace": "{entity}"}}
  ]}]
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			require.Len(t, cfg.Profiles, 1)
			step := cfg.Profiles[0].Transformations[0]
			assert.Equal(t, ReplaceAction("{entity}"), step.Action)
			assert.Equal(t, "tab", step.Filters[0].Ref)
			assert.Equal(t, uint32(9), *cfg.Filters["tab"].Ranges[0].Single)
			assert.Equal(t, "p", cfg.DefaultProfile)
		})
	}
}

func TestLoad_EmbeddedDefault(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	loader := NewLoader("")
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Empty(t, loader.UsedFile())
	assert.Equal(t, "strip-invisible", cfg.DefaultProfile)
	assert.Equal(t, "reveal", cfg.GUIReplacementProfile)
	assert.NotEmpty(t, cfg.Filters)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.False(t, cfg.Server.TrustProxyHeaders)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CLIPCLEANER_LOGGING_LEVEL", "error")
	t.Setenv("CLIPCLEANER_SERVER_PORT", "9999")
	t.Setenv("CLIPCLEANER_SERVER_TRUST_PROXY_HEADERS", "true")

	cfg, err := Load(writeFile(t, "clipboard-cleaner.yaml", sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.True(t, cfg.Server.TrustProxyHeaders)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown action",
			content: `
profiles:
  - name: p
    transformations:
      - filters: [{ref: x}]
        action: delete
`,
		},
		{
			name: "replace without template",
			content: `
profiles:
  - name: p
    transformations:
      - filters: [{ref: x}]
        action: replace
`,
		},
		{
			name: "duplicate profile names",
			content: `
profiles:
  - name: p
    transformations: []
  - name: p
    transformations: []
`,
		},
		{
			name: "filter entry with both ref and inline filter",
			content: `
profiles:
  - name: p
    transformations:
      - filters: [{ref: x, filter: {ranges: [{single: 1}]}}]
        action: remove
`,
		},
		{
			name: "missing profile name",
			content: `
profiles:
  - display_name: nameless
    transformations: []
`,
		},
		{
			name: "bad log level",
			content: `
logging:
  level: loud
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "clipboard-cleaner.yaml", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDocument_EncodeRoundTrip(t *testing.T) {
	original, err := Load(writeFile(t, "clipboard-cleaner.yaml", sampleYAML))
	require.NoError(t, err)

	for _, format := range []string{FormatYAML, FormatJSON, FormatTOML} {
		t.Run(format, func(t *testing.T) {
			out, err := original.Document.Encode(format)
			require.NoError(t, err)

			reloaded, err := Load(writeFile(t, "clipboard-cleaner."+format, string(out)))
			require.NoError(t, err)
			assert.Equal(t, original.Document, reloaded.Document)
		})
	}
}

func TestDocument_EncodeUnsupported(t *testing.T) {
	_, err := Document{}.Encode("xml")
	assert.Error(t, err)
}

func TestWatch_NoFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	loader := NewLoader("")
	_, err := loader.Load()
	require.NoError(t, err)

	assert.Error(t, loader.Watch(func(*Config) {}, nil))
}
