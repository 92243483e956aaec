package reconcile

import (
	"fmt"
	"io"
	"strings"

	"github.com/c360studio/patchmo/patch"
	"github.com/c360studio/patchmo/specfile"
)

// Delimiter frames each block of suggestions.
const Delimiter = "------------"

// Report lists on-disk patches missing from the spec file, ordered by
// sequence number.
type Report struct {
	SpecPath string
	Spec     *specfile.File
	Patches  []patch.Entry

	MissingDeclarations []patch.Entry
	MissingApplies      []patch.Entry

	ApplyArgs string
}

// Complete reports whether every patch is both declared and applied.
func (r *Report) Complete() bool {
	return len(r.MissingDeclarations) == 0 && len(r.MissingApplies) == 0
}

// DeclarationLines renders a "PatchN:" suggestion per undeclared patch.
func (r *Report) DeclarationLines() []string {
	lines := make([]string, 0, len(r.MissingDeclarations))
	for _, e := range r.MissingDeclarations {
		lines = append(lines, DeclarationLine(e))
	}
	return lines
}

// ApplyLines renders a "%patchN" suggestion per unapplied patch.
func (r *Report) ApplyLines() []string {
	lines := make([]string, 0, len(r.MissingApplies))
	for _, e := range r.MissingApplies {
		lines = append(lines, ApplyLine(e, r.ApplyArgs))
	}
	return lines
}

// Render writes both suggestion blocks, each framed by Delimiter lines.
func (r *Report) Render(w io.Writer) error {
	var b strings.Builder
	b.WriteString(Delimiter + "\n")
	for _, line := range r.DeclarationLines() {
		b.WriteString(line + "\n")
	}
	b.WriteString(Delimiter + "\n")
	for _, line := range r.ApplyLines() {
		b.WriteString(line + "\n")
	}
	b.WriteString(Delimiter + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// DeclarationLine formats the declaration suggested for e.
func DeclarationLine(e patch.Entry) string {
	return fmt.Sprintf("%s%s:      %s", specfile.DeclarationKeyword, e.Prefix, e.Name)
}

// ApplyLine formats the apply line suggested for e.
func ApplyLine(e patch.Entry, args string) string {
	if args == "" {
		return fmt.Sprintf("%s%s -b %c%s", specfile.ApplyKeyword, e.Prefix, specfile.FileMarker, e.Name)
	}
	return fmt.Sprintf("%s%s %s -b %c%s", specfile.ApplyKeyword, e.Prefix, args, specfile.FileMarker, e.Name)
}
