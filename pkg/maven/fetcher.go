package maven

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/xerrors"

	"github.com/jarscope/jarscope/pkg/fileutil"
	"github.com/jarscope/jarscope/pkg/types"
)

const (
	// DefaultScope restricts resolution to compile-classpath artifacts.
	// Whether test/provided scope artifacts should ever be visible is a
	// deployment choice, so it stays configurable.
	DefaultScope = "compile"

	dependenciesDir = "dependencies"
)

// ResolutionError reports a resolver subprocess that exited non-zero. It
// carries the captured diagnostic output so callers can surface it.
type ResolutionError struct {
	ExitCode int
	Output   string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("maven resolution failed (exit %d): %s", e.ExitCode, e.Output)
}

type Option struct {
	MavenHome string // optional; mvn is taken from PATH when empty
	Scope     string
}

// Fetcher invokes the external resolver against a synthesized pom and
// harvests the jars it copies out.
type Fetcher struct {
	cmd   string
	scope string
}

func NewFetcher(opt Option) Fetcher {
	cmd := "mvn"
	if opt.MavenHome != "" {
		cmd = filepath.Join(opt.MavenHome, "bin", "mvn")
	}
	scope := opt.Scope
	if scope == "" {
		scope = DefaultScope
	}
	return Fetcher{
		cmd:   cmd,
		scope: scope,
	}
}

// Fetch blocks until the resolver exits, then lists the harvested jars in
// lexical order. An empty list with a nil error means the resolver
// succeeded but produced no artifacts; that is a valid outcome distinct
// from ResolutionError.
func (f Fetcher) Fetch(ctx context.Context, pomPath, outputDir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, xerrors.Errorf("fetch cancelled before the resolver started: %w", err)
	}

	targetDir := filepath.Join(outputDir, dependenciesDir)
	if err := os.MkdirAll(targetDir, os.ModePerm); err != nil {
		return nil, xerrors.Errorf("unable to create output dir: %w", err)
	}

	absPom, err := filepath.Abs(pomPath)
	if err != nil {
		return nil, xerrors.Errorf("abs path error: %w", err)
	}
	absTarget, err := filepath.Abs(targetDir)
	if err != nil {
		return nil, xerrors.Errorf("abs path error: %w", err)
	}

	args := []string{
		"-f", absPom,
		"dependency:copy-dependencies",
		"-DoutputDirectory=" + absTarget,
		"-DincludeScope=" + f.scope,
	}
	slog.Info("Invoking resolver", slog.String("cmd", f.cmd), slog.String("pom", absPom), slog.String("scope", f.scope))

	// A started resolver always runs to completion. Killing mvn mid-run
	// leaves the work directory half-written, so cancellation is only
	// observed before the subprocess starts.
	cmd := exec.CommandContext(context.WithoutCancel(ctx), f.cmd, args...)
	cmd.Dir = outputDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if xerrors.As(err, &exitErr) {
			diag := stderr.String()
			if diag == "" {
				diag = stdout.String()
			}
			slog.Error("Resolver exited with error", slog.Int("exit_code", exitErr.ExitCode()))
			return nil, &ResolutionError{ExitCode: exitErr.ExitCode(), Output: diag}
		}
		return nil, xerrors.Errorf("failed to run resolver: %w", err)
	}

	jars, err := fileutil.ListBySuffix(targetDir, types.JarSuffix)
	if err != nil {
		return nil, xerrors.Errorf("unable to list artifacts: %w", err)
	}
	slog.Info("Resolver completed", slog.Int("jars", len(jars)))
	return jars, nil
}
