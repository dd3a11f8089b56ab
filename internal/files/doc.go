// Package files enumerates the candidate files of a run: recursive listing
// with a symlink policy, include and exclude paths, doublestar globs and an
// optional git-index filter.
package files
