package reconcile

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/c360studio/patchmo/specfile"
)

// previewContext is the number of unchanged lines shown around an insertion.
const previewContext = 2

var (
	sourceLine = regexp.MustCompile(`^Source\d*:`)
	setupLine  = regexp.MustCompile(`^%(setup|autosetup)\b`)
)

// Proposed returns the spec lines with the suggestions inserted: new
// declarations after the last declaration (or Source line), new apply lines
// after the last apply line (or %setup, or %prep).
func (r *Report) Proposed() []string {
	if r.Spec == nil {
		return nil
	}
	lines := r.Spec.Lines

	type insertion struct {
		at    int
		lines []string
	}
	var ins []insertion
	if decl := r.DeclarationLines(); len(decl) > 0 {
		ins = append(ins, insertion{at: declarationAnchor(r.Spec), lines: decl})
	}
	if apply := r.ApplyLines(); len(apply) > 0 {
		ins = append(ins, insertion{at: applyAnchor(r.Spec), lines: apply})
	}

	out := make([]string, 0, len(lines)+len(r.MissingDeclarations)+len(r.MissingApplies))
	next := 0
	sort.SliceStable(ins, func(i, j int) bool { return ins[i].at < ins[j].at })
	for _, in := range ins {
		out = append(out, lines[next:in.at]...)
		out = append(out, in.lines...)
		next = in.at
	}
	return append(out, lines[next:]...)
}

// Preview writes a line diff between the spec file and Proposed.
func (r *Report) Preview(w io.Writer) error {
	if r.Spec == nil || r.Complete() {
		_, err := fmt.Fprintln(w, "spec file is up to date")
		return err
	}

	before := joinLines(r.Spec.Lines)
	after := joinLines(r.Proposed())

	dmp := diffmatchpatch.New()
	a, b, index := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), index)

	name := filepath.Base(r.SpecPath)
	var out strings.Builder
	fmt.Fprintf(&out, "--- a/%s\n+++ b/%s\n", name, name)
	writeHunks(&out, flatten(diffs))

	_, err := io.WriteString(w, out.String())
	return err
}

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
	old  int
}

func flatten(diffs []diffmatchpatch.Diff) []diffLine {
	var out []diffLine
	old := 0
	for _, d := range diffs {
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text == "" {
				continue
			}
			if d.Type != diffmatchpatch.DiffInsert {
				old++
			}
			out = append(out, diffLine{op: d.Type, text: strings.TrimSuffix(text, "\n"), old: old})
		}
	}
	return out
}

func writeHunks(out *strings.Builder, lines []diffLine) {
	show := make([]bool, len(lines))
	for i, l := range lines {
		if l.op == diffmatchpatch.DiffEqual {
			continue
		}
		for j := max(0, i-previewContext); j <= min(len(lines)-1, i+previewContext); j++ {
			show[j] = true
		}
	}

	inHunk := false
	for i, l := range lines {
		if !show[i] {
			inHunk = false
			continue
		}
		if !inHunk {
			fmt.Fprintf(out, "@@ line %d @@\n", l.old)
			inHunk = true
		}
		switch l.op {
		case diffmatchpatch.DiffInsert:
			out.WriteString("+" + l.text + "\n")
		case diffmatchpatch.DiffDelete:
			out.WriteString("-" + l.text + "\n")
		default:
			out.WriteString(" " + l.text + "\n")
		}
	}
}

func declarationAnchor(f *specfile.File) int {
	if n := len(f.Declarations); n > 0 {
		return f.Declarations[n-1].Line
	}
	if i := lastMatch(f.Lines, sourceLine); i >= 0 {
		return i + 1
	}
	return 0
}

func applyAnchor(f *specfile.File) int {
	if n := len(f.Applies); n > 0 {
		return f.Applies[n-1].Line
	}
	if i := lastMatch(f.Lines, setupLine); i >= 0 {
		return i + 1
	}
	for i, line := range f.Lines {
		if strings.TrimSpace(line) == "%prep" {
			return i + 1
		}
	}
	return len(f.Lines)
}

func lastMatch(lines []string, re *regexp.Regexp) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if re.MatchString(strings.TrimSpace(lines[i])) {
			return i
		}
	}
	return -1
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
