package reconcile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposedInsertsAfterExistingDirectives(t *testing.T) {
	dir := setupDest(t, demoSpec, "1-a.patch", "2-b.patch")

	report, err := New(Options{}, quietLogger()).Reconcile(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Name:           demo",
		"Version:        1.0",
		"Source0:        demo-1.0.tar.gz",
		"Patch1: 1-a.patch",
		"Patch2:      2-b.patch",
		"",
		"%prep",
		"%setup -q",
		"%patch1 -p1 -b .1-a.patch",
		"%patch2 -p1 -b .2-b.patch",
		"",
		"%build",
		"make",
	}, report.Proposed())
}

func TestProposedFallsBackToSourceAndSetup(t *testing.T) {
	spec := `Name: demo
Source0: demo.tar.gz

%prep
%setup -q

%build
`
	dir := setupDest(t, spec, "1-a.patch")

	report, err := New(Options{}, quietLogger()).Reconcile(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Name: demo",
		"Source0: demo.tar.gz",
		"Patch1:      1-a.patch",
		"",
		"%prep",
		"%setup -q",
		"%patch1 -p1 -b .1-a.patch",
		"",
		"%build",
	}, report.Proposed())
}

func TestPreviewShowsInsertions(t *testing.T) {
	dir := setupDest(t, demoSpec, "1-a.patch", "2-b.patch")

	report, err := New(Options{}, quietLogger()).Reconcile(dir)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.Preview(&buf))
	out := buf.String()

	assert.Contains(t, out, "--- a/demo.spec\n+++ b/demo.spec\n")
	assert.Contains(t, out, "+Patch2:      2-b.patch\n")
	assert.Contains(t, out, "+%patch2 -p1 -b .2-b.patch\n")
	assert.Contains(t, out, " Patch1: 1-a.patch\n")
	assert.NotContains(t, out, "\n-")
}

func TestPreviewUpToDate(t *testing.T) {
	dir := setupDest(t, demoSpec, "1-a.patch")

	report, err := New(Options{}, quietLogger()).Reconcile(dir)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.Preview(&buf))
	assert.Equal(t, "spec file is up to date\n", buf.String())
}
