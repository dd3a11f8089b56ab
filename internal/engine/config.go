package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/treehash/treehash/internal/digest"
)

// Mode selects the per-file policy of a run.
type Mode int

const (
	// ModeVerify compares files against stored digests; the ledger is never written.
	ModeVerify Mode = iota
	// ModeUpdate hashes every candidate and overwrites its entry.
	ModeUpdate
	// ModeUpdateNew only adds entries for paths not yet in the ledger.
	ModeUpdateNew
	// ModeUpdateModified re-hashes known entries whose file mtime advanced.
	ModeUpdateModified
)

var modeNames = map[Mode]string{
	ModeVerify:         "verify",
	ModeUpdate:         "update",
	ModeUpdateNew:      "update_new",
	ModeUpdateModified: "update_modified",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Updates reports whether runs in this mode persist the ledger.
func (m Mode) Updates() bool { return m != ModeVerify }

// ParseMode accepts the names printed by Mode.String.
func ParseMode(s string) (Mode, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == want {
			return m, nil
		}
	}
	return ModeVerify, fmt.Errorf("invalid mode %q (want update, update_new, update_modified or verify)", s)
}

// Config controls a single run. It is consumed by value: Run copies what it
// needs up front, so changing the caller's copy afterwards has no effect on a
// run in progress.
type Config struct {
	Mode Mode
	// Root is the directory ledger keys are relative to. Optional when the
	// ledger stores one.
	Root string
	// Algorithm overrides the ledger's algorithm; empty falls back to the
	// ledger, then to DefaultAlgorithm, then to digest.Default.
	Algorithm string
	// DefaultAlgorithm applies only to a ledger that records no algorithm.
	DefaultAlgorithm string
	// Key switches digests to HMAC when non-empty.
	Key []byte
	// Files are the absolute candidate paths, processed in order.
	Files []string

	// Source holds the current ledger; nil means there is none yet.
	Source io.Reader
	// Destination receives the updated ledger in updating modes.
	Destination io.Writer
	// Truncate empties Destination before writing. Required when Source and
	// Destination are the same file.
	Truncate bool
	// LedgerName identifies the ledger in event messages (a path or "-").
	LedgerName string

	Sink     Sink
	Progress func()
	// Digest computes file digests; nil uses an unthrottled computer.
	Digest *digest.Computer
}

// MaintenanceConfig controls Prune and FindRemoved.
type MaintenanceConfig struct {
	Root             string
	Algorithm        string
	DefaultAlgorithm string
	// Paths is the keep set for Prune and the existing-file set for
	// FindRemoved.
	Paths []string

	Source      io.Reader
	Destination io.Writer
	Truncate    bool
	LedgerName  string
	Sink        Sink
}
