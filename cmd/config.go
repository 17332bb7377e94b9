package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "scopecss"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	classFlagName       = "class"
	suffixFlagName      = "suffix"
	excludeFlagName     = "exclude"
	runParallelFlagName = "parallel"
	reportFlagName      = "report"
	dryRunFlagName      = "dry-run"
	diffFlagName        = "diff"
	verboseFlagName     = "verbose"
	logFileFlagName     = "log-file"

	scopeClassConfigKey  = "scope.class"
	scopeSuffixConfigKey = "scope.suffix"
	runParallelConfigKey = "run.parallel"
	excludeConfigKey     = "paths.exclude"
	reportConfigKey      = "report"

	defaultScopeClass  = ".fillInTheBlank-experiment"
	defaultSuffix      = ".scoped"
	defaultRunParallel = 1
	defaultReport      = ""

	envPrefix = "SCOPECSS"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logFormatKey     = "log.format"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".scopecss.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogFormat     = "text"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

// logFile is the rotating writer behind globalLogger, closed on reconfigure.
var logFile *lumberjack.Logger

// configErr holds a config file that exists but could not be read. It is
// reported by the root command rather than at package init.
var configErr error

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(scopeClassConfigKey, defaultScopeClass)
	viper.SetDefault(scopeSuffixConfigKey, defaultSuffix)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(excludeConfigKey, []string{})
	viper.SetDefault(reportConfigKey, defaultReport)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logFormatKey, defaultLogFormat)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	configErr = readConfigFile()
}

// readConfigFile loads scopecss.yaml when present. A missing file is not an
// error; a malformed one is.
func readConfigFile() error {
	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("read %s: %w", configFileName, err)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// logOptions is the resolved logging configuration for one run.
type logOptions struct {
	path       string
	level      slog.Level
	json       bool
	maxSize    int
	maxBackups int
	maxAge     int
	compress   bool
}

// logOptionsFromConfig reads the log.* keys. An explicit logPath wins over
// log.filename, and verbose forces debug level.
func logOptionsFromConfig(logPath string, verbose bool) logOptions {
	opts := logOptions{
		path:       strings.TrimSpace(logPath),
		level:      parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo),
		json:       strings.EqualFold(strings.TrimSpace(viper.GetString(logFormatKey)), "json"),
		maxSize:    viper.GetInt(logMaxSizeKey),
		maxBackups: viper.GetInt(logMaxBackupsKey),
		maxAge:     viper.GetInt(logMaxAgeKey),
		compress:   viper.GetBool(logCompressKey),
	}

	if opts.path == "" {
		opts.path = strings.TrimSpace(viper.GetString(logFilenameKey))
	}

	if opts.path == "" {
		opts.path = defaultLogFilename
	}

	if verbose {
		opts.level = slog.LevelDebug
	}

	return opts
}

func newLogHandler(w io.Writer, opts logOptions) slog.Handler {
	handlerOpts := &slog.HandlerOptions{AddSource: true, Level: opts.level}
	if opts.json {
		return slog.NewJSONHandler(w, handlerOpts)
	}

	return slog.NewTextHandler(w, handlerOpts)
}

// configureLogger points the default slog logger at a rotating log file.
// Stylesheet output goes to the command writer; the log file only carries
// diagnostics.
func configureLogger(logPath string, verbose bool) {
	opts := logOptionsFromConfig(logPath, verbose)

	if logFile != nil {
		_ = logFile.Close()
	}

	logFile = &lumberjack.Logger{
		Filename:   opts.path,
		MaxSize:    opts.maxSize,
		MaxBackups: opts.maxBackups,
		MaxAge:     opts.maxAge,
		Compress:   opts.compress,
	}

	globalLogger = slog.New(newLogHandler(logFile, opts))
	slog.SetDefault(globalLogger)
}
