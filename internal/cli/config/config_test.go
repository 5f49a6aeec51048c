package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "leapml.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.StringP("output", "o", "", "")
	fs.Bool("verbose", false, "")
	fs.StringSlice("foreign", nil, "")
	fs.String("history-file", "", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultColor, cfg.Color)
	assert.Empty(t, cfg.Foreign)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, DefaultHistoryFile, cfg.REPL.HistoryFile)
	assert.Equal(t, DefaultPrompt, cfg.REPL.Prompt)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_FileFoundUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
output: table
foreign: [values.star]
bindings: true
repl:
  prompt: "> "
`)
	sub := filepath.Join(root, "scripts", "nested")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	t.Chdir(sub)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "table", cfg.Output)
	assert.Equal(t, []string{"values.star"}, cfg.Foreign)
	assert.True(t, cfg.Bindings)
	assert.Equal(t, "> ", cfg.REPL.Prompt)
	assert.Equal(t, DefaultHistoryFile, cfg.REPL.HistoryFile)
	assert.Equal(t, "leapml.yaml", filepath.Base(GetConfigFileUsed()))
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeConfig(t, dir, "output: table\nverbose: true\n")

	t.Setenv("LEAPML_OUTPUT", "json")
	t.Setenv("LEAPML_FOREIGN", "a.star,b.star")
	t.Setenv("LEAPML_REPL_PROMPT", "? ")
	t.Setenv("LEAPML_SOMETHING_ELSE", "ignored")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []string{"a.star", "b.star"}, cfg.Foreign)
	assert.Equal(t, "? ", cfg.REPL.Prompt)

	cfg, err = LoadConfig(path, testFlags(t, "-o", "text", "--foreign", "c.star", "--history-file", "h.txt"))
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Output)
	assert.Equal(t, []string{"c.star"}, cfg.Foreign)
	assert.Equal(t, "h.txt", cfg.REPL.HistoryFile)
	assert.True(t, cfg.Verbose, "unset flags do not override the file")
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "models_dir: models\n", "unable to decode config"},
		{"invalid output", "output: markdown\n", `invalid output "markdown"`},
		{"invalid color", "color: sometimes\n", `invalid color "sometimes"`},
		{"foreign extension", "foreign: [values.py]\n", "must have a .star extension"},
		{"invalid yaml", "output: [\n", "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, dir, tt.content)
			_, err := LoadConfig(path, nil)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"), nil)
	assert.ErrorContains(t, err, "error reading config file")
}

func TestLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	var buf bytes.Buffer
	logger := NewLogger(&buf, false)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))

	buf.Reset()
	NewLogger(&buf, true).Debug("detail")
	assert.Contains(t, buf.String(), "detail")
}

func TestConfigContext(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))

	cfg := &Config{Output: "json"}
	assert.Same(t, cfg, FromContext(WithConfig(context.Background(), cfg)))
}
