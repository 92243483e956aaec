// Package config provides configuration loading and management for patchmo.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/patchmo/errs"
	"github.com/c360studio/patchmo/patch"
	"github.com/c360studio/patchmo/reconcile"
	"github.com/c360studio/patchmo/specfile"
)

// Config represents the complete patchmo configuration
type Config struct {
	Markers MarkersConfig `yaml:"markers" toml:"markers"`
	Patches PatchesConfig `yaml:"patches" toml:"patches"`
	Spec    SpecConfig    `yaml:"spec" toml:"spec"`
	Log     LogConfig     `yaml:"log" toml:"log"`
}

// MarkersConfig names the refs bounding the extracted range
type MarkersConfig struct {
	// Start is the first commit to extract (default: patchmo.START)
	Start string `yaml:"start" toml:"start"`
	// End is the last commit to extract (default: patchmo.END)
	End string `yaml:"end" toml:"end"`
}

// PatchesConfig configures patch file naming
type PatchesConfig struct {
	// KeepZeroPadding keeps git's 0001- style prefixes instead of 1-.
	// Nil means unset, so a later layer can switch it back off.
	KeepZeroPadding *bool `yaml:"keep_zero_padding" toml:"keep_zero_padding"`
}

// ZeroPadding reports whether git's padded file names are kept.
func (p PatchesConfig) ZeroPadding() bool {
	return p.KeepZeroPadding != nil && *p.KeepZeroPadding
}

// SpecConfig configures spec file discovery and suggestions
type SpecConfig struct {
	// Pattern selects the spec file in the destination (default: *.spec)
	Pattern string `yaml:"pattern" toml:"pattern"`
	// ApplyArgs are the options suggested on new %patch lines (default: -p1)
	ApplyArgs string `yaml:"apply_args" toml:"apply_args"`
}

// LogConfig configures diagnostics
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level" toml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Markers: MarkersConfig{
			Start: patch.DefaultStartMarker,
			End:   patch.DefaultEndMarker,
		},
		Patches: PatchesConfig{
			KeepZeroPadding: boolPtr(false),
		},
		Spec: SpecConfig{
			Pattern:   specfile.DefaultPattern,
			ApplyArgs: reconcile.DefaultApplyArgs,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := validateMarker("markers.start", c.Markers.Start); err != nil {
		return err
	}
	if err := validateMarker("markers.end", c.Markers.End); err != nil {
		return err
	}
	if c.Spec.Pattern == "" {
		return errs.New(errs.KindConfig, "spec.pattern is required")
	}
	if strings.ContainsRune(c.Spec.Pattern, '/') || !doublestar.ValidatePattern(c.Spec.Pattern) {
		return errs.New(errs.KindConfig, "spec.pattern %q is not a valid file name pattern", c.Spec.Pattern)
	}
	if strings.Contains(c.Spec.ApplyArgs, "\n") {
		return errs.New(errs.KindConfig, "spec.apply_args must be a single line")
	}
	if !logLevels[strings.ToLower(c.Log.Level)] {
		return errs.New(errs.KindConfig, "log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

func validateMarker(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errs.New(errs.KindConfig, "%s is required", field)
	}
	if strings.HasPrefix(value, "-") || strings.ContainsAny(value, " \t\n") {
		return errs.New(errs.KindConfig, "%s %q is not a valid ref name", field, value)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or TOML file on top of the
// defaults
func LoadFromFile(path string) (*Config, error) {
	overlay, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	config.Merge(overlay)
	return config, nil
}

// decodeFile reads a config file without applying defaults, so that layers
// only override what they set.
func decodeFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	return config, nil
}

// Encode writes the configuration as YAML
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return enc.Close()
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Markers
	if other.Markers.Start != "" {
		c.Markers.Start = other.Markers.Start
	}
	if other.Markers.End != "" {
		c.Markers.End = other.Markers.End
	}

	// Patches
	if other.Patches.KeepZeroPadding != nil {
		c.Patches.KeepZeroPadding = boolPtr(*other.Patches.KeepZeroPadding)
	}

	// Spec
	if other.Spec.Pattern != "" {
		c.Spec.Pattern = other.Spec.Pattern
	}
	if other.Spec.ApplyArgs != "" {
		c.Spec.ApplyArgs = other.Spec.ApplyArgs
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}

// RangeMarkers returns the configured range markers.
func (c *Config) RangeMarkers() patch.Markers {
	return patch.Markers{Start: c.Markers.Start, End: c.Markers.End}
}

// ReconcileOptions returns the options for the spec reconciler.
func (c *Config) ReconcileOptions() reconcile.Options {
	return reconcile.Options{SpecPattern: c.Spec.Pattern, ApplyArgs: c.Spec.ApplyArgs}
}

func boolPtr(v bool) *bool {
	return &v
}
