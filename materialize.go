package matex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

// Status is the outcome of one materialization key.
type Status int

const (
	// StatusCacheHit means the branch tip already matches the snippet's
	// fingerprint; nothing was executed or written.
	StatusCacheHit Status = iota

	// StatusRegenerated means the snippet was executed and the branch
	// force-updated to its result.
	StatusRegenerated

	// StatusSkipped means a required external tool was missing; the key was
	// not processed and prior branch state is untouched.
	StatusSkipped

	// StatusFailed means execution, rewrite, or publishing failed for this
	// key. Prior branch state is untouched.
	StatusFailed
)

// String returns the human-readable name of the status.
func (s Status) String() string {
	switch s {
	case StatusCacheHit:
		return "cache hit"
	case StatusRegenerated:
		return "regenerated"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the per-key outcome of a materialization run.
type Result struct {
	DocumentID  string
	RunID       string
	Target      string
	Branch      string
	Fingerprint string
	Status      Status
	Detail      string // extra context for skips
	Err         error  // non-nil iff Status is StatusFailed
}

// Failed reports whether this key failed.
func (r Result) Failed() bool {
	return r.Status == StatusFailed
}

// Materializer turns documentation snippets into materialized branches of
// the repository at repoDir, or into worktree checkouts of those branches.
// Keys are processed sequentially; a failure on one key never aborts the
// others.
type Materializer struct {
	repoDir      string
	namespace    string
	remote       string
	worktreeRoot string // empty means branch mode

	fs       afero.Fs
	run      Runner
	hashFunc HashFunc
	log      *slog.Logger
	lookPath func(string) (string, error)
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithRunner sets the subprocess implementation. Tests use a scripted
// Runner; the default shells out via os/exec.
func WithRunner(r Runner) Option {
	return func(m *Materializer) {
		m.run = r
	}
}

// WithFs sets the filesystem implementation. This is primarily useful for
// testing with in-memory filesystems.
func WithFs(fs afero.Fs) Option {
	return func(m *Materializer) {
		m.fs = fs
	}
}

// WithHashFunc sets the fingerprint digest. The default is SHA-256.
//
// Note: changing the digest invalidates every existing cache record.
func WithHashFunc(hashFunc HashFunc) Option {
	return func(m *Materializer) {
		m.hashFunc = hashFunc
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(m *Materializer) {
		m.log = log
	}
}

// WithNamespace overrides the branch namespace prefix.
func WithNamespace(namespace string) Option {
	return func(m *Materializer) {
		m.namespace = namespace
	}
}

// WithRemote names the git remote used to resolve the base URL for
// submodule rewriting. Default "origin".
func WithRemote(remote string) Option {
	return func(m *Materializer) {
		m.remote = remote
	}
}

// WithWorktreesUnder switches branch mode to worktree mode: every
// materialized branch is additionally checked out under root, at a path
// mirroring the branch hierarchy.
func WithWorktreesUnder(root string) Option {
	return func(m *Materializer) {
		m.worktreeRoot = root
	}
}

// withLookPath substitutes tool discovery in tests.
func withLookPath(f func(string) (string, error)) Option {
	return func(m *Materializer) {
		m.lookPath = f
	}
}

// New creates a Materializer for the repository at repoDir.
func New(repoDir string, opts ...Option) (*Materializer, error) {
	if repoDir == "" {
		return nil, fmt.Errorf("repository directory is required")
	}
	m := &Materializer{
		repoDir:   repoDir,
		namespace: DefaultNamespace,
		remote:    "origin",
		fs:        afero.NewOsFs(),
		run:       execRunner{},
		hashFunc:  defaultHashFunc,
		log:       slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)})),
		lookPath:  exec.LookPath,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Run materializes every (snippet, target) pair and reports one Result per
// key. It returns an error only for conditions fatal to the whole run: the
// repository lock is held, repoDir is not a git repository, or no remote
// URL can be resolved. Per-key failures are carried in the Results.
func (m *Materializer) Run(ctx context.Context, snippets []Snippet) ([]Result, error) {
	repo := gitRepo{dir: m.repoDir, run: m.run}

	gitDir, err := repo.gitDir(ctx)
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	// One materialization process per repository: concurrent regeneration
	// of the same branch must be serialized externally, and this is the
	// externality.
	lock := flock.New(filepath.Join(gitDir, "matex.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrLocked
	}
	defer lock.Unlock()

	// Resolved once per run and passed through explicitly from here on.
	baseURL, err := ResolveRemoteURL(ctx, m.run, m.repoDir, m.remote)
	if err != nil {
		return nil, err
	}

	store := cacheStore{repo: repo, ref: notesRef(m.namespace), log: m.log}
	exe := &executor{run: m.run, fs: m.fs, log: m.log}

	var results []Result
	for _, sn := range snippets {
		results = append(results, m.materializeSnippet(ctx, sn, repo, store, exe, baseURL)...)
	}
	return results, nil
}

// materializeSnippet processes every target of one snippet. The body is
// executed at most once, lazily, when the first target misses the cache.
func (m *Materializer) materializeSnippet(ctx context.Context, sn Snippet, repo gitRepo, store cacheStore, exe *executor, baseURL string) []Result {
	if len(sn.Targets) == 0 {
		return nil
	}

	if missing := m.missingTools(sn.Requires); len(missing) > 0 {
		detail := "missing tools: " + strings.Join(missing, ", ")
		m.log.Info("skipping snippet", "run_id", sn.RunID, "missing", missing)
		results := make([]Result, 0, len(sn.Targets))
		for _, target := range sn.Targets {
			results = append(results, Result{
				DocumentID: sn.DocumentID,
				RunID:      sn.RunID,
				Target:     target,
				Branch:     BranchName(m.namespace, sn.DocumentID, sn.RunID, target),
				Status:     StatusSkipped,
				Detail:     detail,
			})
		}
		return results
	}

	fp := fingerprintWith(m.hashFunc(), []byte(sn.Body))

	var (
		snap    *snapshot
		execErr error
	)
	defer func() {
		if snap != nil {
			snap.Close()
		}
	}()

	results := make([]Result, 0, len(sn.Targets))
	for _, target := range sn.Targets {
		res := Result{
			DocumentID:  sn.DocumentID,
			RunID:       sn.RunID,
			Target:      target,
			Branch:      BranchName(m.namespace, sn.DocumentID, sn.RunID, target),
			Fingerprint: fp,
		}

		if cached, _, ok := store.lookup(ctx, res.Branch); ok && cached == fp {
			res.Status = StatusCacheHit
			if err := m.ensureWorktree(ctx, repo, res.Branch, sn, target); err != nil {
				res.Status = StatusFailed
				res.Err = err
			} else {
				m.log.Info("cache hit", "branch", res.Branch)
			}
			results = append(results, res)
			continue
		}

		if snap == nil && execErr == nil {
			snap, execErr = exe.execute(ctx, sn)
		}
		if execErr != nil {
			res.Status = StatusFailed
			res.Err = execErr
			results = append(results, res)
			continue
		}

		if err := m.publish(ctx, repo, store, snap, sn, target, res.Branch, fp, baseURL); err != nil {
			res.Status = StatusFailed
			res.Err = err
			m.log.Error("regeneration failed", "branch", res.Branch, "error", err)
		} else {
			res.Status = StatusRegenerated
			m.log.Info("regenerated", "branch", res.Branch)
		}
		results = append(results, res)
	}
	return results
}

// publish locates the target's tree inside the snapshot, rewrites its
// submodule manifest, force-updates the branch ref and records the
// fingerprint against the new tip. The only ref write is the final atomic
// fetch, so a failure anywhere leaves the previous branch state untouched.
func (m *Materializer) publish(ctx context.Context, repo gitRepo, store cacheStore, snap *snapshot, sn Snippet, target, branch, fp, baseURL string) error {
	tree, err := snap.findTree(target)
	if err != nil {
		return err
	}

	changed, err := RewriteSubmodules(m.fs, tree, m.namespace, sn.DocumentID, sn.RunID, baseURL, sn.Targets)
	if err != nil {
		return fmt.Errorf("rewrite submodules: %w", err)
	}
	if changed {
		// Fold the rewritten manifest into the snippet's own tip commit so
		// the published tree carries it without an extra commit.
		treeRepo := gitRepo{dir: tree, run: m.run}
		if err := treeRepo.addFile(ctx, gitmodulesFile); err != nil {
			return err
		}
		if err := treeRepo.amend(ctx); err != nil {
			return err
		}
	}

	removed := false
	if m.worktreeRoot != "" {
		// git refuses to force-update a branch checked out in a worktree;
		// drop the stale checkout before publishing.
		wt := WorktreePath(m.worktreeRoot, m.namespace, sn.DocumentID, sn.RunID, target)
		if ok, _ := afero.DirExists(m.fs, wt); ok {
			if err := repo.worktreeRemove(ctx, wt); err != nil {
				m.log.Debug("worktree remove", "path", wt, "error", err)
			} else {
				removed = true
			}
		}
	}

	if err := repo.fetchBranch(ctx, tree, branch); err != nil {
		if removed {
			// The branch is untouched; put its checkout back too.
			if rerr := m.addWorktree(ctx, repo, branch, sn, target); rerr != nil {
				m.log.Warn("restore worktree", "branch", branch, "error", rerr)
			}
		}
		return err
	}

	if err := store.record(ctx, branch, fp); err != nil {
		return fmt.Errorf("record fingerprint for %s: %w", branch, err)
	}

	if m.worktreeRoot != "" {
		return m.addWorktree(ctx, repo, branch, sn, target)
	}
	return nil
}

// addWorktree checks branch out at its mirrored path under the worktree
// root.
func (m *Materializer) addWorktree(ctx context.Context, repo gitRepo, branch string, sn Snippet, target string) error {
	wt := WorktreePath(m.worktreeRoot, m.namespace, sn.DocumentID, sn.RunID, target)
	if err := m.fs.MkdirAll(filepath.Dir(wt), 0o755); err != nil {
		return err
	}
	return repo.worktreeAdd(ctx, wt, branch)
}

// ensureWorktree creates the checkout for a cache-hit branch when worktree
// mode is on and the checkout is missing (fresh clone, wiped output dir).
func (m *Materializer) ensureWorktree(ctx context.Context, repo gitRepo, branch string, sn Snippet, target string) error {
	if m.worktreeRoot == "" {
		return nil
	}
	wt := WorktreePath(m.worktreeRoot, m.namespace, sn.DocumentID, sn.RunID, target)
	if ok, _ := afero.DirExists(m.fs, wt); ok {
		return nil
	}
	return m.addWorktree(ctx, repo, branch, sn, target)
}

// missingTools returns the required tools not present on PATH.
func (m *Materializer) missingTools(requires []string) []string {
	var missing []string
	for _, tool := range requires {
		if _, err := m.lookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	return missing
}
