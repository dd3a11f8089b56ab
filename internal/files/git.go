package files

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Tracked returns the work tree root of the repository containing dir and
// the set of slash-separated paths in its index.
func Tracked(dir string) (string, map[string]bool, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", nil, fmt.Errorf("open git repository at %q: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", nil, fmt.Errorf("git worktree: %w", err)
	}
	idx, err := repo.Storer.Index()
	if err != nil {
		return "", nil, fmt.Errorf("git index: %w", err)
	}
	out := make(map[string]bool, len(idx.Entries))
	for _, e := range idx.Entries {
		out[e.Name] = true
	}
	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return "", nil, err
	}
	return filepath.Clean(root), out, nil
}

// RepoMetadata returns (repo, commit, branch) best-effort for the
// repository containing dir. Empty strings are returned for anything that
// cannot be determined.
func RepoMetadata(dir string) (string, string, string) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", "", ""
	}
	name := ""
	if remote, err := repo.Remote("origin"); err == nil && len(remote.Config().URLs) > 0 {
		name = shortRepoName(remote.Config().URLs[0])
	}
	commit, branch := "", ""
	if head, err := repo.Head(); err == nil {
		commit = head.Hash().String()
		if head.Name().IsBranch() {
			branch = head.Name().Short()
		}
	}
	return name, commit, branch
}

// shortRepoName keeps owner/name of a remote URL when possible.
func shortRepoName(url string) string {
	s := strings.TrimSuffix(strings.TrimSpace(url), ".git")
	if i := strings.LastIndex(s, ":"); i >= 0 && !strings.Contains(s[i:], "//") {
		s = s[i+1:]
	}
	parts := strings.Split(s, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}
	return s
}
