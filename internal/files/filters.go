package files

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// allowedByGlobs reports whether a slash-separated relative path passes the
// include/exclude globs. Include globs, when present, act as a positive
// filter; exclude globs are subtracted last.
func allowedByGlobs(relPath string, includes, excludes []string) bool {
	rp := strings.ReplaceAll(relPath, "\\", "/")
	if len(includes) > 0 && !matchAnyGlob(rp, expandGlobs(includes)) {
		return false
	}
	if len(excludes) > 0 && matchAnyGlob(rp, expandGlobs(excludes)) {
		return false
	}
	return true
}

// ParseGlobsList splits a comma-separated glob list, dropping blanks.
func ParseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// expandGlobs adds the prefix-trimmed variant of every glob so "**/x" and
// "./x" also match at the top level.
func expandGlobs(globs []string) []string {
	out := make([]string, 0, 2*len(globs))
	for _, g := range globs {
		out = append(out, g, trimGlobPrefix(g))
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, path.Base(pathToMatch)); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}

// ValidGlob reports whether g is a well-formed doublestar pattern.
func ValidGlob(g string) bool { return doublestar.ValidatePattern(g) }
