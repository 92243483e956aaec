package patch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		ok     bool
		number int
		prefix string
	}{
		{name: "1-fix.patch", ok: true, number: 1, prefix: "1"},
		{name: "0042-add-thing.patch", ok: true, number: 42, prefix: "0042"},
		{name: "10-a-b-c.patch", ok: true, number: 10, prefix: "10"},
		{name: "fix-1.patch", ok: false},
		{name: "1-fix.diff", ok: false},
		{name: "12.patch", ok: false},
		{name: "-fix.patch", ok: false},
		{name: "1a-fix.patch", ok: false},
		{name: "pkg.spec", ok: false},
		{name: "99999999999999999999-huge.patch", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := Parse(tt.name)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.number, e.Number)
				assert.Equal(t, tt.prefix, e.Prefix)
				assert.Equal(t, tt.name, e.Name)
			}
		})
	}
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "3", Prefix("3-c.patch"))
	assert.Equal(t, "nohyphen.patch", Prefix("nohyphen.patch"))
	assert.Equal(t, "", Prefix("-lead.patch"))
}

func TestScanOrdersNumerically(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "10-j.patch", "2-b.patch", "1-a.patch", "README", "notes-1.patch", "2-a.patch")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "99-dir.patch"), 0755))

	entries, err := Scan(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"1-a.patch", "2-a.patch", "2-b.patch", "10-j.patch"}, names)
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
