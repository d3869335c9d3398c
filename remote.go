package matex

import (
	"context"
	"fmt"
	"os"
)

// githubRepositoryEnv is the CI-supplied "owner/repo" coordinate.
const githubRepositoryEnv = "GITHUB_REPOSITORY"

// ResolveRemoteURL determines the canonical URL of the repository that owns
// materialized branches. A CI-provided repository coordinate wins; otherwise
// the locally configured URL of the named remote is used as-is. Returns
// ErrRemoteNotFound when neither source yields a value.
func ResolveRemoteURL(ctx context.Context, run Runner, dir, remote string) (string, error) {
	if coord := os.Getenv(githubRepositoryEnv); coord != "" {
		return "https://github.com/" + coord, nil
	}

	url, err := gitRepo{dir: dir, run: run}.remoteURL(ctx, remote)
	if err != nil || url == "" {
		return "", fmt.Errorf("remote %q: %w", remote, ErrRemoteNotFound)
	}
	return url, nil
}
