package matex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Reaper deletes materialized branches from a remote. It operates on the
// remote's view of the namespace, not the local one, so it also cleans up
// branches published by other clones.
type Reaper struct {
	repoDir   string
	remote    string
	namespace string

	run Runner
	log *slog.Logger
}

// ReaperOption configures a Reaper.
type ReaperOption func(*Reaper)

// WithReaperRunner sets the subprocess implementation.
func WithReaperRunner(r Runner) ReaperOption {
	return func(rp *Reaper) {
		rp.run = r
	}
}

// WithReaperLogger sets the structured logger.
func WithReaperLogger(log *slog.Logger) ReaperOption {
	return func(rp *Reaper) {
		rp.log = log
	}
}

// NewReaper creates a Reaper for the repository at repoDir, targeting the
// named remote and branch namespace.
func NewReaper(repoDir, remote, namespace string, opts ...ReaperOption) (*Reaper, error) {
	if repoDir == "" {
		return nil, fmt.Errorf("repository directory is required")
	}
	if remote == "" {
		return nil, fmt.Errorf("remote name is required")
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	rp := &Reaper{
		repoDir:   repoDir,
		remote:    remote,
		namespace: namespace,
		run:       execRunner{},
		log:       slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)})),
	}
	for _, opt := range opts {
		opt(rp)
	}
	return rp, nil
}

// List queries the remote for every branch under the namespace.
func (rp *Reaper) List(ctx context.Context) ([]string, error) {
	repo := gitRepo{dir: rp.repoDir, run: rp.run}
	branches, err := repo.lsRemoteHeads(ctx, rp.remote, rp.namespace+"/*")
	if err != nil {
		return nil, fmt.Errorf("list %s branches on %s: %w", rp.namespace, rp.remote, err)
	}
	return branches, nil
}

// Reap deletes every namespace branch from the remote and returns the
// branches it targeted. With dryRun set, it only reports what would be
// deleted. A deletion failure is fatal: the remote may now hold a partial
// namespace, and the caller needs to know rather than get a silent
// best-effort shrug.
func (rp *Reaper) Reap(ctx context.Context, dryRun bool) ([]string, error) {
	branches, err := rp.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(branches) == 0 {
		rp.log.Info("nothing to reap", "remote", rp.remote, "namespace", rp.namespace)
		return nil, nil
	}
	if dryRun {
		rp.log.Info("dry run", "remote", rp.remote, "branches", len(branches))
		return branches, nil
	}

	repo := gitRepo{dir: rp.repoDir, run: rp.run}
	if err := repo.pushDelete(ctx, rp.remote, branches); err != nil {
		return nil, fmt.Errorf("delete %d branches on %s: %w", len(branches), rp.remote, err)
	}
	rp.log.Info("reaped branches", "remote", rp.remote, "count", len(branches))
	return branches, nil
}
