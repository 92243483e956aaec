// Package git runs the git operations patchmo needs against a working copy.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrRevisionNotFound is returned when a name does not resolve to a commit.
var ErrRevisionNotFound = errors.New("revision not found")

// CommandError describes a git invocation that exited unsuccessfully.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Executor runs git commands rooted at a working copy.
type Executor struct {
	repoRoot string
	binary   string
	logger   *slog.Logger
}

// NewExecutor creates a new git executor with the given repository root
func NewExecutor(repoRoot string) *Executor {
	return &Executor{repoRoot: repoRoot, binary: "git", logger: slog.Default()}
}

// WithLogger sets the logger used to trace git invocations.
func (e *Executor) WithLogger(logger *slog.Logger) *Executor {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// WithBinary overrides the git binary path.
func (e *Executor) WithBinary(path string) *Executor {
	if path != "" {
		e.binary = path
	}
	return e
}

// RepoRoot returns the working copy the executor operates on.
func (e *Executor) RepoRoot() string {
	return e.repoRoot
}

// IsRepository reports whether the repo root is inside a git working copy.
func (e *Executor) IsRepository(ctx context.Context) bool {
	_, err := e.runGit(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// ResolveMarker resolves a ref name (tag, branch or any revision) to the
// full commit id it points at.
func (e *Executor) ResolveMarker(ctx context.Context, name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "-") {
		return "", fmt.Errorf("resolve %q: %w", name, ErrRevisionNotFound)
	}
	out, err := e.runGit(ctx, "rev-parse", "--verify", "--quiet", name+"^{commit}")
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
			return "", fmt.Errorf("resolve %q: %w", name, ErrRevisionNotFound)
		}
		return "", err
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", fmt.Errorf("resolve %q: %w", name, ErrRevisionNotFound)
	}
	return fields[0], nil
}

// FormatPatch writes one patch file per commit in revRange into outDir,
// numbering from startNumber. It returns the paths git reports writing, in
// order.
func (e *Executor) FormatPatch(ctx context.Context, revRange, outDir string, startNumber int) ([]string, error) {
	if startNumber < 0 {
		return nil, fmt.Errorf("invalid start number %d", startNumber)
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil, fmt.Errorf("invalid output directory: %w", err)
	}

	out, err := e.runGit(ctx, "format-patch",
		"--no-numbered",
		"--start-number", strconv.Itoa(startNumber),
		"--output-directory", absOut,
		revRange)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(e.repoRoot, line)
		}
		written = append(written, line)
	}
	return written, nil
}

// runGit executes a git command in the repo root and returns its stdout.
func (e *Executor) runGit(ctx context.Context, args ...string) (string, error) {
	e.logger.Debug("Running cmd", slog.String("cmd", e.binary+" "+strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Dir = e.repoRoot
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return stdout.String(), &CommandError{
			Args:     args,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}
	return stdout.String(), nil
}
