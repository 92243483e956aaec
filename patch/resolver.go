package patch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/c360studio/patchmo/errs"
	"github.com/c360studio/patchmo/tools/git"
)

const (
	// DefaultStartMarker names the first commit to extract.
	DefaultStartMarker = "patchmo.START"
	// DefaultEndMarker names the last commit to extract.
	DefaultEndMarker = "patchmo.END"
)

// Markers names the refs bounding the range to extract.
type Markers struct {
	Start string
	End   string
}

// DefaultMarkers returns the patchmo.START / patchmo.END pair.
func DefaultMarkers() Markers {
	return Markers{Start: DefaultStartMarker, End: DefaultEndMarker}
}

// Range is a resolved commit range, inclusive of Start.
type Range struct {
	Start string
	End   string
}

// Expr renders the range as a revision expression selecting Start through End.
func (r Range) Expr() string {
	return r.Start + "^.." + r.End
}

func (r Range) String() string {
	return short(r.Start) + ".." + short(r.End)
}

func short(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// MarkerResolver resolves a ref name to a commit id.
type MarkerResolver interface {
	ResolveMarker(ctx context.Context, name string) (string, error)
}

// Resolver turns a pair of markers into a commit range.
type Resolver struct {
	vcs    MarkerResolver
	logger *slog.Logger
}

// NewResolver creates a resolver backed by vcs.
func NewResolver(vcs MarkerResolver, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{vcs: vcs, logger: logger}
}

// Resolve resolves both markers. Either one failing aborts with a
// KindMarkerNotFound error naming it.
func (r *Resolver) Resolve(ctx context.Context, markers Markers) (Range, error) {
	start, err := r.resolve(ctx, markers.Start)
	if err != nil {
		return Range{}, err
	}
	end, err := r.resolve(ctx, markers.End)
	if err != nil {
		return Range{}, err
	}

	r.logger.Info("Found range", slog.String("start", start), slog.String("end", end))
	return Range{Start: start, End: end}, nil
}

func (r *Resolver) resolve(ctx context.Context, marker string) (string, error) {
	id, err := r.vcs.ResolveMarker(ctx, marker)
	if err == nil {
		r.logger.Debug("Resolved marker", slog.String("marker", marker), slog.String("commit", id))
		return id, nil
	}
	if errors.Is(err, git.ErrRevisionNotFound) {
		return "", errs.New(errs.KindMarkerNotFound, "no revision found for %s", marker).
			WithHint("Ensure you have set the '%s' tag", marker).
			WithRef(marker)
	}
	return "", errs.Wrap(errs.KindVCS, err, "resolve %s", marker).WithRef(marker)
}
