package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/patchmo/errs"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestLoader(home string, env map[string]string) *Loader {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLoader(logger).
		WithHomeDir(home).
		WithEnv(func(key string) string { return env[key] })
}

func TestLoaderDefaults(t *testing.T) {
	cfg, err := newTestLoader(t.TempDir(), nil).Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoaderPrecedence(t *testing.T) {
	home := t.TempDir()
	dest := t.TempDir()
	explicit := filepath.Join(t.TempDir(), "override.toml")

	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
markers:
  start: user-start
  end: user-end
spec:
  apply_args: "-p2"
log:
  level: warn
`)
	writeFile(t, filepath.Join(dest, ".patchmo.yaml"), `
markers:
  end: project-end
`)
	writeFile(t, explicit, `
[spec]
pattern = "pkg.spec"
`)

	cfg, err := newTestLoader(home, map[string]string{EnvLogLevel: "debug"}).Load(dest, explicit)
	require.NoError(t, err)

	assert.Equal(t, "user-start", cfg.Markers.Start)
	assert.Equal(t, "project-end", cfg.Markers.End)
	assert.Equal(t, "-p2", cfg.Spec.ApplyArgs)
	assert.Equal(t, "pkg.spec", cfg.Spec.Pattern)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoaderEnvMarkers(t *testing.T) {
	env := map[string]string{EnvStartMarker: "v1", EnvEndMarker: "v2"}
	cfg, err := newTestLoader(t.TempDir(), env).Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "v1", cfg.Markers.Start)
	assert.Equal(t, "v2", cfg.Markers.End)
}

func TestLoaderProjectTOML(t *testing.T) {
	dest := t.TempDir()
	writeFile(t, filepath.Join(dest, ".patchmo.toml"), `
[patches]
keep_zero_padding = true
`)

	cfg, err := newTestLoader(t.TempDir(), nil).Load(dest, "")
	require.NoError(t, err)
	assert.True(t, cfg.Patches.ZeroPadding())
}

func TestLoaderZeroPaddingOverride(t *testing.T) {
	home := t.TempDir()
	dest := t.TempDir()
	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), "patches:\n  keep_zero_padding: true\n")

	cfg, err := newTestLoader(home, nil).Load(dest, "")
	require.NoError(t, err)
	assert.True(t, cfg.Patches.ZeroPadding())

	writeFile(t, filepath.Join(dest, ".patchmo.yaml"), "patches:\n  keep_zero_padding: false\n")
	cfg, err = newTestLoader(home, nil).Load(dest, "")
	require.NoError(t, err)
	assert.False(t, cfg.Patches.ZeroPadding(), "project config turns padding back off")

	explicit := filepath.Join(t.TempDir(), "override.toml")
	writeFile(t, explicit, "[patches]\nkeep_zero_padding = true\n")
	cfg, err = newTestLoader(home, nil).Load(dest, explicit)
	require.NoError(t, err)
	assert.True(t, cfg.Patches.ZeroPadding())
}

func TestLoaderBrokenUserConfigIsSkipped(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), "markers: [")

	cfg, err := newTestLoader(home, nil).Load("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoaderErrors(t *testing.T) {
	t.Run("broken project config", func(t *testing.T) {
		dest := t.TempDir()
		writeFile(t, filepath.Join(dest, ".patchmo.yaml"), "markers: [")

		_, err := newTestLoader(t.TempDir(), nil).Load(dest, "")
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindConfig))
	})

	t.Run("missing explicit config", func(t *testing.T) {
		_, err := newTestLoader(t.TempDir(), nil).Load("", filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindConfig))
	})

	t.Run("invalid result", func(t *testing.T) {
		_, err := newTestLoader(t.TempDir(), map[string]string{EnvLogLevel: "loud"}).Load("", "")
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindConfig))
	})
}

func TestProjectConfigPath(t *testing.T) {
	assert.Equal(t, filepath.Join("dest", ".patchmo.yaml"), ProjectConfigPath("dest"))
}
