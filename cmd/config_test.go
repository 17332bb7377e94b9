package cmd

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "scopecss", configBaseName)
	assert.Equal(t, "scopecss.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "class", classFlagName)
	assert.Equal(t, "suffix", suffixFlagName)
	assert.Equal(t, "exclude", excludeFlagName)
	assert.Equal(t, "parallel", runParallelFlagName)
	assert.Equal(t, "scope.class", scopeClassConfigKey)
	assert.Equal(t, "scope.suffix", scopeSuffixConfigKey)
	assert.Equal(t, "run.parallel", runParallelConfigKey)
	assert.Equal(t, "paths.exclude", excludeConfigKey)
	assert.Equal(t, ".fillInTheBlank-experiment", defaultScopeClass)
	assert.Equal(t, ".scoped", defaultSuffix)
	assert.Equal(t, 1, defaultRunParallel)
	assert.Equal(t, "SCOPECSS", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelInfo))
		})
	}
}

func TestConfigureLogger_WritesToFile(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	logPath := filepath.Join(t.TempDir(), "scopecss.log")
	configureLogger(logPath, true)

	require.NotNil(t, globalLogger)
	slog.Debug("debug entry", "key", "value")

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "debug entry")
	assert.Contains(t, string(content), "key=value")
}

func TestLogOptionsFromConfig(t *testing.T) {
	t.Run("explicit path and verbose", func(t *testing.T) {
		opts := logOptionsFromConfig(" custom.log ", true)
		assert.Equal(t, "custom.log", opts.path)
		assert.Equal(t, slog.LevelDebug, opts.level)
	})

	t.Run("falls back to configured file", func(t *testing.T) {
		opts := logOptionsFromConfig("", false)
		assert.Equal(t, viper.GetString(logFilenameKey), opts.path)
		assert.NotEmpty(t, opts.path)
	})

	t.Run("json format", func(t *testing.T) {
		viper.Set(logFormatKey, "JSON")
		t.Cleanup(func() { viper.Set(logFormatKey, defaultLogFormat) })

		assert.True(t, logOptionsFromConfig("x.log", false).json)
	})
}

func TestNewLogHandler_JSON(t *testing.T) {
	out := &bytes.Buffer{}
	logger := slog.New(newLogHandler(out, logOptions{level: slog.LevelInfo, json: true}))

	logger.Info("scoped stylesheet", "source", "style.css")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "scoped stylesheet", entry["msg"])
	assert.Equal(t, "style.css", entry["source"])
}

func TestReadConfigFile_Malformed(t *testing.T) {
	tempDir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, configFileName), []byte("scope: [\n"), 0o644))

	err := readConfigFile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), configFileName)
}

func TestReadConfigFile_Missing(t *testing.T) {
	chdirTemp(t)

	require.NoError(t, readConfigFile())
}
