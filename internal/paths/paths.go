// Package paths converts between absolute file paths and the slash-separated
// root-relative keys stored in a ledger.
package paths

import (
	"path/filepath"
	"strings"
)

// Relativize returns absPath relative to root using forward slashes.
// outside reports whether the result climbs out of root through a ".."
// segment; such paths are still returned so callers can decide what to do.
func Relativize(absPath, root string) (rel string, outside bool) {
	r, err := filepath.Rel(root, absPath)
	if err != nil {
		// different volumes (windows) or a relative/absolute mix
		return filepath.ToSlash(absPath), true
	}
	rel = filepath.ToSlash(r)
	return rel, climbs(rel)
}

// Join returns the root-joined absolute form of a ledger key.
func Join(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

func climbs(rel string) bool {
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return true
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
