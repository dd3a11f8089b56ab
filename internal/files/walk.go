package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ListAll returns the absolute paths of every file below root, in lexical
// order per directory. Symlinked directories are descended into only with
// followDirLinks; symlinked files are returned only with includeFileLinks.
// Unreadable subdirectories are skipped.
func ListAll(root string, followDirLinks, includeFileLinks bool) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", root, err)
	}
	abs = filepath.Clean(abs)
	st, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", root, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("list %q: given path is not a directory", root)
	}
	w := &walker{followDirLinks: followDirLinks, includeFileLinks: includeFileLinks, seen: map[string]bool{}}
	w.walk(abs)
	return w.out, nil
}

type walker struct {
	followDirLinks   bool
	includeFileLinks bool
	// real paths of directories already listed, so link cycles terminate
	seen map[string]bool
	out  []string
}

func (w *walker) walk(dir string) {
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		if w.seen[real] {
			return
		}
		w.seen[real] = true
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, d := range entries {
		p := filepath.Join(dir, d.Name())
		switch {
		case d.IsDir():
			w.walk(p)
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Stat(p)
			if err != nil {
				// dangling link
				continue
			}
			if target.IsDir() {
				if w.followDirLinks {
					w.walk(p)
				}
			} else if target.Mode().IsRegular() && w.includeFileLinks {
				w.out = append(w.out, p)
			}
		case d.Type().IsRegular():
			w.out = append(w.out, p)
		}
	}
}
