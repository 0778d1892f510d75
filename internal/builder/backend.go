// Package builder invokes the external declarative build backend and
// reports the resulting artifact name.
package builder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"vmselector/internal/domain"

	"github.com/charmbracelet/x/ansi"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

// Backend turns a validated configuration into a bootable VM runner
// artifact. Implementations block until the build finishes and return
// the artifact's name, or an error wrapping the backend's failure.
type Backend interface {
	Build(ctx context.Context, cfg domain.Configuration) (string, error)
}

// CommandBackend runs the build backend as a subprocess. The backend is
// opaque: its output is streamed to Output as-is and its diagnostics are
// never reinterpreted.
type CommandBackend struct {
	// Command is the backend executable.
	Command string

	// Dir is the working directory for the build; the backend links
	// the artifact under <Dir>/result/bin/.
	Dir string

	// Output receives the backend's interleaved stdout and stderr so
	// the operator has liveness feedback during long builds.
	Output io.Writer

	// StripANSI removes terminal escape sequences from the streamed
	// output. Set when Output is not a terminal.
	StripANSI bool

	Logger hclog.Logger
}

// Args maps every configuration field to the backend's parameters.
func (b *CommandBackend) Args(cfg domain.Configuration) []string {
	args := []string{
		"--name", cfg.Name,
		"--ram", strconv.Itoa(cfg.RAMGB),
		"--cpu", strconv.Itoa(cfg.CPUCores),
		"--storage", strconv.Itoa(cfg.StorageGB),
	}
	if cfg.Overlay {
		args = append(args, "--overlay")
	}
	for _, share := range cfg.RWShares {
		args = append(args, "--share-rw", share)
	}
	for _, share := range cfg.ROShares {
		args = append(args, "--share-ro", share)
	}
	return args
}

// Build invokes the backend and blocks until it exits. Cancelling the
// context kills the subprocess. A non-zero exit or a missing artifact
// yields a *domain.BuildError; the build is never retried here.
func (b *CommandBackend) Build(ctx context.Context, cfg domain.Configuration) (string, error) {
	logger := b.logger()

	cmd := exec.CommandContext(ctx, b.Command, b.Args(cfg)...)
	cmd.Dir = b.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", &domain.BuildError{Backend: b.Command, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", &domain.BuildError{Backend: b.Command, Err: err}
	}

	logger.Debug("invoking build backend", "command", b.Command, "args", b.Args(cfg))

	if err := cmd.Start(); err != nil {
		return "", &domain.BuildError{Backend: b.Command, Err: err}
	}

	// Both streams pump into one writer; the lock keeps lines whole.
	out := &lockedWriter{w: b.Output}
	var g errgroup.Group
	g.Go(func() error { return b.stream(stdout, out) })
	g.Go(func() error { return b.stream(stderr, out) })
	streamErr := g.Wait()

	if err := cmd.Wait(); err != nil {
		logger.Error("build backend failed", "command", b.Command, "error", err)
		return "", &domain.BuildError{Backend: b.Command, Err: err}
	}
	if streamErr != nil {
		return "", &domain.BuildError{Backend: b.Command, Err: streamErr}
	}

	artifact := cfg.ArtifactName()
	artifactPath := filepath.Join(b.Dir, "result", "bin", artifact)
	if _, err := os.Stat(artifactPath); err != nil {
		logger.Error("backend exited cleanly but artifact is missing", "path", artifactPath)
		return "", &domain.BuildError{
			Backend: b.Command,
			Err:     fmt.Errorf("backend reported success but artifact %s was not produced", artifact),
		}
	}

	logger.Debug("build backend finished", "artifact", artifact)
	return artifact, nil
}

// Probe checks that the backend executable is available before a build
// is attempted.
func (b *CommandBackend) Probe(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, b.Command, "--version")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build backend %q is not available: %w", b.Command, err)
	}
	return nil
}

func (b *CommandBackend) logger() hclog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return hclog.NewNullLogger()
}

// stream copies backend output line by line, optionally stripping ANSI
// escape sequences for non-terminal destinations.
func (b *CommandBackend) stream(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if b.StripANSI {
			line = ansi.Strip(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
