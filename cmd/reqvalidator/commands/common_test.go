package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutputFormat(t *testing.T) {
	for _, f := range []string{FormatText, FormatJSON, FormatYAML} {
		assert.NoError(t, ValidateOutputFormat(f))
	}
	assert.Error(t, ValidateOutputFormat("xml"))
}

func TestOutputStructured(t *testing.T) {
	data := map[string]any{"b": 1, "a": "x"}

	t.Run("json", func(t *testing.T) {
		out, _ := captureOutput(t)
		require.NoError(t, OutputStructured(data, FormatJSON))
		assert.Equal(t, "{\n  \"a\": \"x\",\n  \"b\": 1\n}\n", out.String())
	})

	t.Run("yaml", func(t *testing.T) {
		out, _ := captureOutput(t)
		require.NoError(t, OutputStructured(data, FormatYAML))
		assert.Equal(t, "a: x\nb: 1\n", out.String())
	})

	t.Run("text is not structured", func(t *testing.T) {
		assert.Error(t, OutputStructured(data, FormatText))
	})
}

func TestValidateOutputPath(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "openapi.yaml", petstoreSpec)

	assert.Error(t, ValidateOutputPath(input, []string{input}))
	assert.NoError(t, ValidateOutputPath(filepath.Join(dir, "out.yaml"), []string{input}))

	_, errOut := captureOutput(t)
	existing := writeFile(t, dir, "existing.yaml", "")
	assert.NoError(t, ValidateOutputPath(existing, []string{input}))
	assert.Contains(t, errOut.String(), "already exists")
}

func TestRejectSymlinkOutput(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.yaml", "")
	link := filepath.Join(dir, "link.yaml")
	require.NoError(t, os.Symlink(target, link))

	assert.NoError(t, RejectSymlinkOutput(filepath.Join(dir, "new.yaml")))
	assert.NoError(t, RejectSymlinkOutput(target))
	assert.ErrorContains(t, RejectSymlinkOutput(link), "refusing to write to symlink")
}

func TestFormatSpecPath(t *testing.T) {
	assert.Equal(t, "<stdin>", FormatSpecPath(StdinFilePath))
	assert.Equal(t, "api.yaml", FormatSpecPath("api.yaml"))
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestConfigureLogger(t *testing.T) {
	_, errOut := captureOutput(t)

	logger, err := ConfigureLogger("info", "json")
	require.NoError(t, err)
	logger.Info("hello", "k", "v")
	logger.Debug("hidden")
	assert.Contains(t, errOut.String(), `"msg":"hello"`)
	assert.NotContains(t, errOut.String(), "hidden")

	_, err = ConfigureLogger("info", "xml")
	assert.Error(t, err)
	_, err = ConfigureLogger("loud", "text")
	assert.Error(t, err)
}
