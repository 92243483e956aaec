package specfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/patchmo/errs"
)

// DefaultPattern selects the spec file among the destination's entries.
const DefaultPattern = "*.spec"

// File is the parsed content of a spec file.
type File struct {
	Path         string
	Lines        []string
	Declarations []Directive
	Applies      []Directive
	// Incomplete holds directive-looking lines that name no patch file.
	Incomplete []string
}

// Declared returns the declared filenames.
func (f *File) Declared() map[string]Directive {
	return index(f.Declarations)
}

// Applied returns the filenames referenced by apply lines.
func (f *File) Applied() map[string]Directive {
	return index(f.Applies)
}

// Mismatches returns every directive whose numbers disagree, in file order.
func (f *File) Mismatches() []Directive {
	var out []Directive
	for _, d := range f.Declarations {
		if d.Mismatch() {
			out = append(out, d)
		}
	}
	for _, d := range f.Applies {
		if d.Mismatch() {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

func index(ds []Directive) map[string]Directive {
	m := make(map[string]Directive, len(ds))
	for _, d := range ds {
		m[d.Filename] = d
	}
	return m
}

// Parse reads spec content line by line.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Text()
		f.Lines = append(f.Lines, line)

		trimmed := strings.TrimSpace(line)
		if d, ok := ParseDeclaration(trimmed); ok {
			d.Line = n
			f.Declarations = append(f.Declarations, d)
		} else if strings.HasPrefix(trimmed, DeclarationKeyword) && strings.Contains(trimmed, ":") {
			f.Incomplete = append(f.Incomplete, trimmed)
		}

		if d, ok := ParseApply(trimmed); ok {
			d.Line = n
			f.Applies = append(f.Applies, d)
		} else if strings.HasPrefix(trimmed, ApplyKeyword) {
			f.Incomplete = append(f.Incomplete, trimmed)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan spec: %w", err)
	}
	return f, nil
}

// Load reads and parses the spec file at path.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "open spec file").WithRef(path)
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "read spec file").WithRef(path)
	}
	f.Path = path
	return f, nil
}

// Find returns the single regular file in dir whose name matches pattern.
func Find(dir, pattern string) (string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return "", errs.New(errs.KindConfig, "invalid spec pattern %q", pattern).WithRef(pattern)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errs.Wrap(errs.KindIO, err, "read dest").WithRef(dir)
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := doublestar.Match(pattern, e.Name())
		if err != nil {
			return "", errs.Wrap(errs.KindConfig, err, "invalid spec pattern %q", pattern)
		}
		if ok {
			matches = append(matches, e.Name())
		}
	}

	switch len(matches) {
	case 0:
		return "", errs.New(errs.KindSpecNotFound, "%s file not found in dest", describe(pattern)).WithRef(dir)
	case 1:
		return filepath.Join(dir, matches[0]), nil
	default:
		return "", errs.New(errs.KindSpecAmbiguous, "multiple spec files in dest: %s", strings.Join(matches, ", ")).
			WithHint("Set spec.pattern to select one of them").
			WithRef(dir)
	}
}

// describe renders "*.spec" as ".spec" to keep the familiar wording.
func describe(pattern string) string {
	if strings.HasPrefix(pattern, "*.") && !strings.ContainsAny(pattern[1:], "*?[{") {
		return pattern[1:]
	}
	return fmt.Sprintf("spec file matching %q", pattern)
}
