package files

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// AppendIgnore adds each pattern missing from dir/.gitignore, creating the
// file if needed. Patterns already present are left alone.
func AppendIgnore(dir string, patterns ...string) error {
	path := filepath.Join(dir, ".gitignore")
	existing := map[string]bool{}
	prev, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	sc := bufio.NewScanner(bytes.NewReader(prev))
	for sc.Scan() {
		existing[strings.TrimSpace(sc.Text())] = true
	}
	var add []string
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" && !existing[p] {
			existing[p] = true
			add = append(add, p)
		}
	}
	if len(add) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	var b strings.Builder
	if len(prev) > 0 && prev[len(prev)-1] != '\n' {
		b.WriteByte('\n')
	}
	for _, p := range add {
		b.WriteString(p + "\n")
	}
	_, err = f.WriteString(b.String())
	return err
}

// RunArtifacts returns the ignore patterns for files a run writes next to
// the data: the audit log and the metrics textfile, relative to dir.
func RunArtifacts(dir string, files ...string) []string {
	var out []string
	for _, f := range files {
		if f == "" {
			continue
		}
		rel := f
		if filepath.IsAbs(f) {
			r, err := filepath.Rel(dir, f)
			if err != nil || strings.HasPrefix(r, "..") {
				continue
			}
			rel = r
		}
		out = append(out, "/"+filepath.ToSlash(filepath.Clean(rel)))
	}
	return out
}
