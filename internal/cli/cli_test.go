package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raaihank/clipboard-cleaner/internal/clipboard"
	"github.com/raaihank/clipboard-cleaner/internal/transform"
)

const testConfig = `
logging:
  level: error
filters:
  control:
    ranges:
      - {start: 0x00, end: 0x08}
  zwsp:
    ranges:
      - {single: 0x200B}
profiles:
  - name: strip
    display_name: Strip
    description: Removes controls and zero-width spaces.
    transformations:
      - filters: [{ref: control}, {ref: zwsp}]
        action: remove
  - name: reveal
    transformations:
      - filters: [{ref: zwsp}]
        action: {replace: "<{uni-codepoint}>"}
default_profile: strip
gui_replacement_profile: reveal
`

const brokenConfig = `
logging:
  level: error
profiles:
  - name: dangling
    transformations:
      - filters: [{ref: missing}]
        action: remove
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clipboard-cleaner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func useMemoryClipboard(t *testing.T, text string) *clipboard.Memory {
	t.Helper()
	mem := clipboard.NewMemory(text)
	original := openClipboard
	openClipboard = func() (clipboard.Clipboard, error) { return mem, nil }
	t.Cleanup(func() { openClipboard = original })
	return mem
}

// execute runs the root command and returns stdout and stderr
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, _, err := execute(t, "", "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "clipcleaner version test-version-1.0.0")
}

func TestCleanCmd_Stdin(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{"default profile", nil, "a\x01b\U0000200bc", "abc"},
		{"named profile", []string{"--profile", "reveal"}, "x\U0000200by", "x<U+200b>y"},
		{"short flag", []string{"-p", "strip"}, "\x02ok", "ok"},
		{"identity", []string{"-p", "identity"}, "a\x01b", "a\x01b"},
		{"utf-16le bytes", []string{"--charset", "utf-16le"}, "h\x00i\x00", "hi"},
		{"target with controls", []string{"--target", "UTF8_STRING", "-p", "identity"}, "a\x07b", "a\U0000fffdb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfg, "clean"}, tt.args...)
			out, _, err := execute(t, tt.stdin, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCleanCmd_ControlCharsNotice(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	_, stderr, err := execute(t, "a\x07b", "--config", cfg, "clean", "--target", "text/plain;charset=utf-8")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Control characters have been replaced")
}

func TestCleanCmd_Errors(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	_, _, err := execute(t, "x", "--config", cfg, "clean", "--profile", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown profile")

	_, stderr, err := execute(t, "x", "--config", cfg, "clean", "--target", "image/png")
	require.Error(t, err)
	assert.Contains(t, stderr, "Could not convert data to an unknown encoding")

	_, _, err = execute(t, "", "--config", cfg, "clean", "--clipboard", "--file", "x.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")

	_, _, err = execute(t, "", "--config", cfg, "clean", "extra")
	assert.Error(t, err)
}

func TestCleanCmd_File(t *testing.T) {
	cfg := writeConfig(t, testConfig)
	input := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(input, []byte("f\U0000200bile"), 0o600))

	out, _, err := execute(t, "", "--config", cfg, "clean", "--file", input)

	require.NoError(t, err)
	assert.Equal(t, "file", out)
}

func TestCleanCmd_JSON(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	out, _, err := execute(t, "a\U0000200b", "--config", cfg, "clean", "--json")
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "strip", res["profile"])
	assert.Equal(t, "a", res["text"])
	assert.Equal(t, true, res["changed"])
}

func TestCleanCmd_Clipboard(t *testing.T) {
	cfg := writeConfig(t, testConfig)
	mem := useMemoryClipboard(t, "copied\U0000200b text")

	out, _, err := execute(t, "", "--config", cfg, "clean", "--clipboard", "--write-back")
	require.NoError(t, err)
	assert.Equal(t, "copied text", out)

	text, _ := mem.ReadText()
	assert.Equal(t, "copied text", text)
}

func TestCleanCmd_ClipboardUnavailable(t *testing.T) {
	cfg := writeConfig(t, testConfig)
	original := openClipboard
	openClipboard = func() (clipboard.Clipboard, error) { return nil, clipboard.ErrUnavailable }
	defer func() { openClipboard = original }()

	_, _, err := execute(t, "", "--config", cfg, "clean", "--clipboard")

	assert.ErrorIs(t, err, clipboard.ErrUnavailable)
}

func TestDecodeCmd(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	out, _, err := execute(t, "caf\xe9", "--config", cfg, "decode", "--target", "STRING")
	require.NoError(t, err)
	assert.Equal(t, "caf\U000000e9", out)

	out, _, err = execute(t, "\xfe\xff\x00A", "--config", cfg, "decode", "--target", "text/plain;charset=utf-16")
	require.NoError(t, err)
	assert.Equal(t, "A", out)

	out, _, err = execute(t, "\xff\xfe", "--config", cfg, "decode", "--target", "UTF8_STRING")
	assert.ErrorIs(t, err, errDecode)
	assert.Empty(t, out)

	out, _, err = execute(t, "plain", "--config", cfg, "decode", "--target", "application/x-unknown", "--sniff", "--json")
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, true, res["sniffed"])
	assert.Equal(t, "utf-8", res["charset"])
}

func TestResolveCmd(t *testing.T) {
	out, _, err := execute(t, "", "resolve", "UTF8_STRING", "TEXT", "text/html", "image/png")

	require.NoError(t, err)
	assert.Equal(t,
		"UTF8_STRING\tutf-8\nTEXT\tiso-8859-1\ntext/html\tutf-8\nimage/png\t(none)\n",
		out,
	)

	_, _, err = execute(t, "", "resolve")
	assert.Error(t, err)
}

func TestProfilesCmd(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	out, _, err := execute(t, "", "--config", cfg, "profiles")
	require.NoError(t, err)
	assert.Contains(t, out, "strip (default)")
	assert.Contains(t, out, "reveal (gui)")
	assert.Contains(t, out, "Removes controls and zero-width spaces.")
	assert.Contains(t, out, "identity")

	out, _, err = execute(t, "", "--config", cfg, "profiles", "--json")
	require.NoError(t, err)
	var entries []profileEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "Strip", entries[0].DisplayName)
	assert.True(t, entries[0].Default)
}

func TestConfigExportCmd(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	out, _, err := execute(t, "", "--config", cfg, "config", "export", "--format", "json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "strip", doc["default_profile"])
	assert.Len(t, doc["profiles"], 2)

	out, _, err = execute(t, "", "--config", cfg, "config", "export", "--format", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "default_profile")
	assert.Contains(t, out, "strip")

	_, _, err = execute(t, "", "--config", cfg, "config", "export", "--format", "ini")
	assert.Error(t, err)
}

func TestConfigValidateCmd(t *testing.T) {
	good := writeConfig(t, testConfig)
	out, _, err := execute(t, "", "--config", good, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "2 profiles, 2 filters, configuration is valid")

	broken := writeConfig(t, brokenConfig)
	_, _, err = execute(t, "", "--config", broken, "config", "validate")
	assert.ErrorIs(t, err, transform.ErrUnknownFilterReference)

	// The same document still loads for cleaning, skipping the reference
	out, _, err = execute(t, "a\x01", "--config", broken, "clean", "-p", "dangling")
	require.NoError(t, err)
	assert.Equal(t, "a\x01", out)
}

func TestConfigPathCmd(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	out, _, err := execute(t, "", "--config", cfg, "config", "path")

	require.NoError(t, err)
	assert.Contains(t, out, "in use: "+cfg)
	assert.Contains(t, out, "search paths:")
}

func TestWipeCmd(t *testing.T) {
	mem := useMemoryClipboard(t, "secret")

	_, stderr, err := execute(t, "", "wipe")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Clipboard cleared.")
	text, _ := mem.ReadText()
	assert.Empty(t, text)
}

func TestServeCmd_HasPortFlag(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}
