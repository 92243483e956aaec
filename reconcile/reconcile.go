// Package reconcile compares the numbered patches in a directory with the
// patch directives of the spec file next to them.
package reconcile

import (
	"log/slog"

	"github.com/c360studio/patchmo/errs"
	"github.com/c360studio/patchmo/patch"
	"github.com/c360studio/patchmo/specfile"
)

// DefaultApplyArgs are the options suggested for new %patch lines.
const DefaultApplyArgs = "-p1"

// Options tune how the spec file is located and how suggestions read.
type Options struct {
	// SpecPattern selects the spec file among the directory entries.
	SpecPattern string
	// ApplyArgs go between "%patchN" and "-b" in suggested apply lines.
	ApplyArgs string
}

// Reconciler finds patches a spec file does not reference yet.
type Reconciler struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Reconciler. Empty options fall back to the defaults.
func New(opts Options, logger *slog.Logger) *Reconciler {
	if opts.SpecPattern == "" {
		opts.SpecPattern = specfile.DefaultPattern
	}
	if opts.ApplyArgs == "" {
		opts.ApplyArgs = DefaultApplyArgs
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{opts: opts, logger: logger}
}

// Reconcile scans dir and reports the patches missing from the spec file's
// declarations and apply lines. It reads only; the spec is never modified.
func (r *Reconciler) Reconcile(dir string) (*Report, error) {
	entries, err := patch.Scan(dir)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "scan dest").WithRef(dir)
	}

	specPath, err := specfile.Find(dir, r.opts.SpecPattern)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Found spec file", slog.String("path", specPath))

	spec, err := specfile.Load(specPath)
	if err != nil {
		return nil, err
	}

	for _, d := range spec.Mismatches() {
		r.logger.Warn("Patch numbers do not match",
			slog.String("kind", d.Kind.String()),
			slog.Int("line", d.Line),
			slog.String("text", d.Raw))
	}
	for _, raw := range spec.Incomplete {
		r.logger.Debug("Directive names no patch file", slog.String("text", raw))
	}

	report := &Report{
		SpecPath:  specPath,
		Spec:      spec,
		Patches:   entries,
		ApplyArgs: r.opts.ApplyArgs,
	}

	declared := spec.Declared()
	for _, e := range entries {
		if _, ok := declared[e.Name]; ok {
			r.logger.Debug("Patch found in spec sources", slog.String("patch", e.Name))
			continue
		}
		report.MissingDeclarations = append(report.MissingDeclarations, e)
	}

	applied := spec.Applied()
	for _, e := range entries {
		if _, ok := applied[e.Name]; ok {
			r.logger.Debug("Patch found in spec prep", slog.String("patch", e.Name))
			continue
		}
		report.MissingApplies = append(report.MissingApplies, e)
	}

	r.logger.Info("Reconciled spec file",
		slog.String("spec", specPath),
		slog.Int("patches", len(entries)),
		slog.Int("undeclared", len(report.MissingDeclarations)),
		slog.Int("unapplied", len(report.MissingApplies)))
	return report, nil
}
