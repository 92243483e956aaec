package patch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360studio/patchmo/errs"
)

// Exporter writes one patch file per commit of a revision range.
type Exporter interface {
	FormatPatch(ctx context.Context, revRange, outDir string, startNumber int) ([]string, error)
}

// Extractor materializes a commit range as numbered patch files.
type Extractor struct {
	vcs         Exporter
	logger      *slog.Logger
	keepPadding bool
}

// NewExtractor creates an extractor backed by vcs.
func NewExtractor(vcs Exporter, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{vcs: vcs, logger: logger}
}

// KeepZeroPadding leaves git's four-digit file prefixes untouched.
func (x *Extractor) KeepZeroPadding(keep bool) *Extractor {
	x.keepPadding = keep
	return x
}

// Extract writes the patches for rng into dest, numbered from start, and
// returns the resulting file names in order.
func (x *Extractor) Extract(ctx context.Context, rng Range, dest string, start int) ([]string, error) {
	expr := rng.Expr()
	x.logger.Debug("Extracting patches",
		slog.String("range", expr),
		slog.String("dest", dest),
		slog.Int("start_number", start))

	written, err := x.vcs.FormatPatch(ctx, expr, dest, start)
	if err != nil {
		return nil, errs.Wrap(errs.KindVCS, err, "git format-patch failed").WithRef(expr)
	}

	names := make([]string, 0, len(written))
	for _, path := range written {
		name := filepath.Base(path)
		if !x.keepPadding {
			name, err = unpad(dest, name)
			if err != nil {
				return names, err
			}
		}
		x.logger.Info("Wrote patch", slog.String("file", name))
		names = append(names, name)
	}
	return names, nil
}

// unpad renames "0003-foo.patch" to "3-foo.patch" inside dir.
func unpad(dir, name string) (string, error) {
	prefix := Prefix(name)
	if !isDigits(prefix) || len(prefix) < 2 || prefix[0] != '0' {
		return name, nil
	}
	trimmed := strings.TrimLeft(prefix, "0")
	if trimmed == "" {
		trimmed = "0"
	}
	target := trimmed + name[len(prefix):]

	from := filepath.Join(dir, name)
	to := filepath.Join(dir, target)
	if _, err := os.Lstat(to); err == nil {
		return name, errs.New(errs.KindIO, "cannot rename %s: %s already exists", name, target).WithRef(to)
	}
	if err := os.Rename(from, to); err != nil {
		return name, errs.Wrap(errs.KindIO, err, "rename %s", name).WithRef(from)
	}
	return target, nil
}
