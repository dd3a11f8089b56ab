package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/treehash/treehash/internal/paths"
)

// Options describe how the candidate list of a run is assembled.
type Options struct {
	Root string
	// Include and Exclude are paths, absolute or relative to Root.
	Include []string
	Exclude []string
	// IncludeGlobs and ExcludeGlobs match root-relative slash paths.
	IncludeGlobs []string
	ExcludeGlobs []string

	FollowDirLinks   bool
	IncludeFileLinks bool
	// TrackedOnly keeps only files present in the git index of the
	// repository containing Root.
	TrackedOnly bool
	// Omit lists files that are never candidates, such as the ledger itself.
	// Relative entries are taken relative to Root.
	Omit []string

	// Warn receives paths that were given but could not be used.
	Warn func(msg, path string)
}

func (o Options) warn(msg, path string) {
	if o.Warn != nil {
		o.Warn(msg, path)
	}
}

// Select lists the candidate files described by o:
//  1. every file below the included directories, or below Root when
//     nothing is included
//  2. minus excluded directories (whole subtrees) and files
//  3. plus explicitly included files
//  4. minus the omitted paths, glob rejects and, optionally, untracked files
//
// The result holds absolute paths without duplicates.
func Select(o Options) ([]string, error) {
	root, err := filepath.Abs(o.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", o.Root, err)
	}
	root = filepath.Clean(root)

	var listed []string
	if len(o.Include) > 0 {
		for _, inc := range o.Include {
			p := Resolve(root, inc)
			if st, err := os.Stat(p); err == nil && st.IsDir() {
				got, err := ListAll(p, o.FollowDirLinks, o.IncludeFileLinks)
				if err != nil {
					return nil, err
				}
				listed = append(listed, got...)
			}
		}
	} else {
		listed, err = ListAll(root, o.FollowDirLinks, o.IncludeFileLinks)
		if err != nil {
			return nil, err
		}
	}
	listed = dedupe(listed)

	for _, exc := range o.Exclude {
		p := Resolve(root, exc)
		st, err := os.Stat(p)
		switch {
		case err == nil && st.IsDir():
			listed = remove(listed, func(f string) bool { return within(f, p) })
		case err == nil:
			listed = remove(listed, func(f string) bool { return f == p })
		default:
			o.warn("invalid exclude-path (ignoring)", exc)
		}
	}

	for _, inc := range o.Include {
		p := Resolve(root, inc)
		st, err := os.Stat(p)
		switch {
		case err == nil && st.IsDir():
		case err == nil:
			listed = append(listed, p)
		default:
			o.warn("invalid include-path (ignoring)", inc)
		}
	}

	omit := map[string]bool{}
	for _, p := range o.Omit {
		if p == "" || p == "-" {
			continue
		}
		omit[Resolve(root, p)] = true
	}
	listed = remove(listed, func(f string) bool {
		if omit[f] {
			return true
		}
		rel, _ := paths.Relativize(f, root)
		return !allowedByGlobs(rel, o.IncludeGlobs, o.ExcludeGlobs)
	})

	if o.TrackedOnly {
		repoRoot, tracked, err := Tracked(root)
		if err != nil {
			return nil, err
		}
		listed = remove(listed, func(f string) bool {
			rel, outside := paths.Relativize(f, repoRoot)
			return outside || !tracked[rel]
		})
	}
	return dedupe(listed), nil
}

// FilterRemoved drops the root-relative keys covered by the exclude paths.
// An exclude that no longer exists is treated as a directory when it ends
// with a slash and as a file otherwise.
func FilterRemoved(removed []string, root string, excludes, excludeGlobs []string) []string {
	root = filepath.Clean(root)
	out := remove(append([]string(nil), removed...), func(key string) bool {
		return !allowedByGlobs(key, nil, excludeGlobs)
	})
	for _, exc := range excludes {
		p := Resolve(root, exc)
		rel, _ := paths.Relativize(p, root)
		isDir := strings.HasSuffix(exc, "/") || strings.HasSuffix(exc, string(filepath.Separator))
		if st, err := os.Stat(p); err == nil {
			isDir = st.IsDir()
		}
		if isDir {
			out = remove(out, func(key string) bool { return rel == "." || key == rel || strings.HasPrefix(key, rel+"/") })
		} else {
			out = remove(out, func(key string) bool { return key == rel })
		}
	}
	return out
}

// Resolve returns p as a clean absolute path, interpreting relative paths
// against root.
func Resolve(root, p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return filepath.Clean(p)
}

func within(f, dir string) bool {
	return f == dir || strings.HasPrefix(f, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator))
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func remove(in []string, drop func(string) bool) []string {
	out := in[:0]
	for _, s := range in {
		if !drop(s) {
			out = append(out, s)
		}
	}
	return out
}
