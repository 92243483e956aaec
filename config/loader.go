package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/c360studio/patchmo/errs"
)

const (
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/patchmo"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"

	// EnvLogLevel overrides log.level
	EnvLogLevel = "PATCHMO_LOG_LEVEL"
	// EnvStartMarker overrides markers.start
	EnvStartMarker = "PATCHMO_START_MARKER"
	// EnvEndMarker overrides markers.end
	EnvEndMarker = "PATCHMO_END_MARKER"
)

// ProjectConfigFiles are looked up, in order, in the destination directory.
var ProjectConfigFiles = []string{".patchmo.yaml", ".patchmo.yml", ".patchmo.toml"}

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger  *slog.Logger
	homeDir string
	getenv  func(string) string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	home, _ := os.UserHomeDir()
	return &Loader{logger: logger, homeDir: home, getenv: os.Getenv}
}

// WithHomeDir overrides where the user config is looked up.
func (l *Loader) WithHomeDir(dir string) *Loader {
	l.homeDir = dir
	return l
}

// WithEnv overrides the environment lookup.
func (l *Loader) WithEnv(getenv func(string) string) *Loader {
	if getenv != nil {
		l.getenv = getenv
	}
	return l
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/patchmo/config.yaml)
// 3. Project config (.patchmo.yaml, .patchmo.yml or .patchmo.toml in dest)
// 4. Explicit config file, when path is not empty
// 5. Environment variables
func (l *Loader) Load(dest, path string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Load user config
	if userConfigPath := l.userConfigPath(); userConfigPath != "" {
		if userConfig, err := decodeFile(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	// Load project config
	if projectConfigPath := l.findProjectConfig(dest); projectConfigPath != "" {
		projectConfig, err := decodeFile(projectConfigPath)
		if err != nil {
			return nil, errs.Wrap(errs.KindConfig, err, "load project config").WithRef(projectConfigPath)
		}
		l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
		config.Merge(projectConfig)
	} else {
		l.logger.Debug("No project config found")
	}

	// Load explicit config
	if path != "" {
		explicit, err := decodeFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.KindConfig, err, "load config").WithRef(path)
		}
		l.logger.Debug("Loaded config", slog.String("path", path))
		config.Merge(explicit)
	}

	config.Merge(l.fromEnv())

	// Validate final config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ProjectConfigPath returns where a new project config for dest is written.
func ProjectConfigPath(dest string) string {
	return filepath.Join(dest, ProjectConfigFiles[0])
}

func (l *Loader) fromEnv() *Config {
	return &Config{
		Markers: MarkersConfig{
			Start: l.getenv(EnvStartMarker),
			End:   l.getenv(EnvEndMarker),
		},
		Log: LogConfig{Level: l.getenv(EnvLogLevel)},
	}
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	if l.homeDir == "" {
		return ""
	}
	return filepath.Join(l.homeDir, UserConfigDir, UserConfigFile)
}

// findProjectConfig returns the first project config file present in dest
func (l *Loader) findProjectConfig(dest string) string {
	if dest == "" {
		return ""
	}
	for _, name := range ProjectConfigFiles {
		configPath := filepath.Join(dest, name)
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			return configPath
		}
	}
	return ""
}
