package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/c360studio/patchmo/config"
	"github.com/c360studio/patchmo/errs"
	"github.com/c360studio/patchmo/patch"
	"github.com/c360studio/patchmo/reconcile"
	"github.com/c360studio/patchmo/tools/git"
)

// App wires configuration, logging and the patch pipeline together.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	stdout  io.Writer
	preview bool
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, logger *slog.Logger, stdout io.Writer) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{cfg: cfg, logger: logger, stdout: stdout}
}

// Run resolves the markers in source, writes the patches into dest and
// reconciles dest's spec file. Each step runs only if the previous one
// succeeded.
func (a *App) Run(ctx context.Context, source, dest string) error {
	absDest, err := destDir(dest)
	if err != nil {
		return err
	}

	gitExecutor := git.NewExecutor(source).WithLogger(a.logger)
	if !gitExecutor.IsRepository(ctx) {
		return errs.New(errs.KindNotRepository, "%s is not a git working copy", source).
			WithHint("Pass the path of a git checkout as SOURCE").
			WithRef(source)
	}

	rng, err := patch.NewResolver(gitExecutor, a.logger).Resolve(ctx, a.cfg.RangeMarkers())
	if err != nil {
		return err
	}

	number, err := patch.NextNumber(absDest)
	if err != nil {
		return errs.Wrap(errs.KindIO, err, "scan dest").WithRef(absDest)
	}
	a.logger.Info("Found initial number", slog.Int("number", number))

	names, err := patch.NewExtractor(gitExecutor, a.logger).
		KeepZeroPadding(a.cfg.Patches.ZeroPadding()).
		Extract(ctx, rng, absDest, number)
	if err != nil {
		return err
	}
	a.logger.Info("Extracted patches", slog.String("range", rng.String()), slog.Int("count", len(names)))

	return a.Reconcile(absDest)
}

// Reconcile prints the spec lines missing for the patches in dest.
func (a *App) Reconcile(dest string) error {
	absDest, err := destDir(dest)
	if err != nil {
		return err
	}

	report, err := reconcile.New(a.cfg.ReconcileOptions(), a.logger).Reconcile(absDest)
	if err != nil {
		return err
	}
	if err := report.Render(a.stdout); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if a.preview {
		if err := report.Preview(a.stdout); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
	}
	return nil
}

// Next prints the number the next extracted patch would get.
func (a *App) Next(dest string) error {
	absDest, err := destDir(dest)
	if err != nil {
		return err
	}
	number, err := patch.NextNumber(absDest)
	if err != nil {
		return errs.Wrap(errs.KindIO, err, "scan dest").WithRef(absDest)
	}
	_, err = fmt.Fprintln(a.stdout, number)
	return err
}

func destDir(dest string) (string, error) {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", errs.Wrap(errs.KindIO, err, "resolve dest").WithRef(dest)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errs.Wrap(errs.KindIO, err, "dest not accessible").WithRef(abs)
	}
	if !info.IsDir() {
		return "", errs.New(errs.KindIO, "dest %s is not a directory", abs).WithRef(abs)
	}
	return abs, nil
}
