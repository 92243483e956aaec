package specfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/patchmo/errs"
)

const sampleSpec = `Name:           demo
Version:        1.0
Source0:        demo-1.0.tar.gz
Patch1:      1-a.patch
Patch2: 3-c.patch

%description
Demo.

%prep
%setup -q
%patch1 -p1 -b .1-a.patch
%patch4 -p1
`

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleSpec))
	require.NoError(t, err)

	require.Len(t, f.Declarations, 2)
	assert.Equal(t, 4, f.Declarations[0].Line)
	assert.Equal(t, "1-a.patch", f.Declarations[0].Filename)
	assert.Equal(t, "3-c.patch", f.Declarations[1].Filename)

	require.Len(t, f.Applies, 1)
	assert.Equal(t, 12, f.Applies[0].Line)
	assert.Equal(t, "1-a.patch", f.Applies[0].Filename)

	assert.Contains(t, f.Declared(), "3-c.patch")
	assert.Contains(t, f.Applied(), "1-a.patch")
	assert.NotContains(t, f.Applied(), "3-c.patch")

	mismatches := f.Mismatches()
	require.Len(t, mismatches, 1)
	assert.Equal(t, "Patch2: 3-c.patch", mismatches[0].Raw)

	assert.Equal(t, []string{"%patch4 -p1"}, f.Incomplete)
	assert.Len(t, f.Lines, 13)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.spec")
	require.NoError(t, os.WriteFile(path, []byte(sampleSpec), 0644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)
	assert.Len(t, f.Declarations, 2)

	_, err = Load(filepath.Join(dir, "missing.spec"))
	assert.True(t, errs.Is(err, errs.KindIO))
}

func TestFind(t *testing.T) {
	t.Run("single spec", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"demo.spec", "1-a.patch", "notes.txt"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
		}
		path, err := Find(dir, "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "demo.spec"), path)
	})

	t.Run("missing spec", func(t *testing.T) {
		_, err := Find(t.TempDir(), DefaultPattern)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindSpecNotFound))
		assert.Equal(t, ".spec file not found in dest", err.Error())
	})

	t.Run("directory named like a spec is ignored", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "old.spec"), 0755))
		_, err := Find(dir, DefaultPattern)
		assert.True(t, errs.Is(err, errs.KindSpecNotFound))
	})

	t.Run("ambiguous", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"a.spec", "b.spec"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
		}
		_, err := Find(dir, DefaultPattern)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindSpecAmbiguous))
		assert.NotEmpty(t, errs.HintOf(err))
	})

	t.Run("custom pattern", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"a.spec", "samba.spec"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
		}
		path, err := Find(dir, "samba*.spec")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "samba.spec"), path)
	})

	t.Run("custom pattern not found", func(t *testing.T) {
		_, err := Find(t.TempDir(), "samba*.spec")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"samba*.spec"`)
	})

	t.Run("bad pattern", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.spec"), nil, 0644))
		_, err := Find(dir, "[")
		assert.True(t, errs.Is(err, errs.KindConfig))
	})
}
