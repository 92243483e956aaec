// Package specfile parses the patch directives of an RPM spec file.
//
// Two line dialects are recognised:
//
//	Patch3:      3-fix-build.patch
//	%patch3 -p1 -b .3-fix-build.patch
//
// Both carry the sequence number twice, once after the keyword and once as
// the filename prefix. A disagreement between the two is reported through
// Directive.Mismatch and never rejects the line.
package specfile

import (
	"path"
	"strings"

	"github.com/c360studio/patchmo/patch"
)

const (
	// DeclarationKeyword starts a patch declaration line.
	DeclarationKeyword = "Patch"
	// ApplyKeyword starts a patch apply line.
	ApplyKeyword = "%patch"
	// FileMarker prefixes the filename token of an apply line.
	FileMarker = '.'
)

// Kind distinguishes the two directive dialects.
type Kind int

const (
	KindDeclaration Kind = iota
	KindApply
)

func (k Kind) String() string {
	if k == KindApply {
		return "apply"
	}
	return "declaration"
}

// Directive is one parsed declaration or apply line.
type Directive struct {
	Kind Kind
	// Number is the literal text following the keyword, e.g. "3" for Patch3.
	Number   string
	Filename string
	// Line is the 1-based line number, zero when parsed standalone.
	Line int
	Raw  string
}

// Mismatch reports whether the keyword number differs from the filename's
// numeric prefix. The comparison is textual: "07" and "7" differ.
func (d Directive) Mismatch() bool {
	return d.Number != patch.Prefix(d.Filename)
}

// ParseDeclaration parses a "PatchN: file" line.
func ParseDeclaration(line string) (Directive, bool) {
	l := strings.TrimSpace(line)
	if !strings.HasPrefix(l, DeclarationKeyword) {
		return Directive{}, false
	}
	colon := strings.IndexByte(l, ':')
	if colon < 0 {
		return Directive{}, false
	}
	fields := strings.Fields(l[colon+1:])
	if len(fields) == 0 {
		return Directive{}, false
	}

	return Directive{
		Kind:     KindDeclaration,
		Number:   strings.TrimSpace(l[len(DeclarationKeyword):colon]),
		Filename: path.Base(fields[0]),
		Raw:      l,
	}, true
}

// ParseApply parses a "%patchN ... .file" line. A bare "%patch" takes its
// number from a leading numeric argument ("%patch 2") or a -P option.
func ParseApply(line string) (Directive, bool) {
	l := strings.TrimSpace(line)
	if !strings.HasPrefix(l, ApplyKeyword) {
		return Directive{}, false
	}
	fields := strings.Fields(l)
	number := fields[0][len(ApplyKeyword):]
	args := fields[1:]
	if number == "" && len(args) > 0 && allDigits(args[0]) {
		number = args[0]
	}
	if number == "" {
		number = optionNumber(args)
	}

	for _, tok := range args {
		if len(tok) > 1 && tok[0] == FileMarker {
			return Directive{
				Kind:     KindApply,
				Number:   number,
				Filename: tok[1:],
				Raw:      l,
			}, true
		}
	}
	return Directive{}, false
}

// optionNumber extracts N from "-PN" or "-P N".
func optionNumber(args []string) string {
	for i, tok := range args {
		if !strings.HasPrefix(tok, "-P") {
			continue
		}
		if v := tok[2:]; v != "" {
			return v
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
