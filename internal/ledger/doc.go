// Package ledger reads and writes the versioned integrity ledger: a JSON
// document mapping root-relative paths to a digest and the file's mtime,
// together with the settings (root directory, hash algorithm) it was
// produced with.
//
// A ledger whose version does not equal FormatVersion, or that does not parse,
// is rejected as a whole; entries are never partially trusted.
package ledger
