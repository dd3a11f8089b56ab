package ledger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// FormatVersion is the only ledger version this build accepts and writes.
const FormatVersion = "1"

var (
	// ErrNotTruncatable is returned by Save when truncation was requested on a
	// destination that cannot be truncated (a pipe, a buffer).
	ErrNotTruncatable = errors.New("ledger destination cannot be truncated")
	// ErrMalformed marks a ledger that is not a JSON object of the expected shape.
	ErrMalformed = errors.New("malformed ledger")
	// ErrVersionMismatch marks a ledger written by an incompatible version.
	ErrVersionMismatch = errors.New("ledger version mismatch")
	// ErrMalformedSettings marks a settings object with missing or mistyped fields.
	ErrMalformedSettings = errors.New("malformed ledger settings")
)

// Outcome classifies the result of Load.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeMalformed
	OutcomeVersionMismatch
	// OutcomeMalformedSettings keeps the entries; only the settings are dropped.
	OutcomeMalformedSettings
	// OutcomeUnreadable means the source could not be read at all.
	OutcomeUnreadable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeVersionMismatch:
		return "version mismatch"
	case OutcomeMalformedSettings:
		return "malformed settings"
	case OutcomeUnreadable:
		return "unreadable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Fatal reports whether the outcome discards the ledger.
func (o Outcome) Fatal() bool {
	return o == OutcomeMalformed || o == OutcomeVersionMismatch || o == OutcomeUnreadable
}

// Ledger is the in-memory form of the persisted record.
type Ledger struct {
	Version  string
	Settings *Settings
	Files    map[string]Entry
}

// New returns an empty ledger.
func New() Ledger {
	return Ledger{Version: FormatVersion, Files: map[string]Entry{}}
}

// Clone returns a copy whose Files map can be modified independently.
func (l Ledger) Clone() Ledger {
	out := Ledger{Version: l.Version, Files: make(map[string]Entry, len(l.Files))}
	if l.Settings != nil {
		s := *l.Settings
		out.Settings = &s
	}
	for k, v := range l.Files {
		out.Files[k] = v
	}
	return out
}

type document struct {
	Version  json.RawMessage  `json:"version"`
	Settings json.RawMessage  `json:"settings"`
	Files    map[string]Entry `json:"files"`
}

type outDocument struct {
	Version  string           `json:"version"`
	Settings Settings         `json:"settings"`
	Files    map[string]Entry `json:"files"`
}

// Load reads a ledger from r. A nil reader or an empty stream is an empty
// ledger. On a fatal outcome the returned ledger is empty and err describes
// the problem; on OutcomeMalformedSettings the entries are kept.
func Load(r io.Reader) (Ledger, Outcome, error) {
	if r == nil {
		return New(), OutcomeOK, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return New(), OutcomeUnreadable, fmt.Errorf("read ledger: %w", err)
	}
	return Parse(data)
}

// Parse is Load for an in-memory payload.
func Parse(data []byte) (Ledger, Outcome, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return New(), OutcomeOK, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return New(), OutcomeMalformed, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	raw := bytes.TrimSpace(doc.Version)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return New(), OutcomeVersionMismatch, fmt.Errorf("%w: no version field (expected %q)", ErrVersionMismatch, FormatVersion)
	}
	var version string
	if err := json.Unmarshal(raw, &version); err != nil {
		return New(), OutcomeVersionMismatch, fmt.Errorf("%w: got %s, expected %q", ErrVersionMismatch, raw, FormatVersion)
	}
	if version != FormatVersion {
		return New(), OutcomeVersionMismatch, fmt.Errorf("%w: got %q, expected %q", ErrVersionMismatch, version, FormatVersion)
	}

	l := Ledger{Version: version, Files: doc.Files}
	if l.Files == nil {
		l.Files = map[string]Entry{}
	}
	s, err := parseSettings(doc.Settings)
	l.Settings = s
	if err != nil {
		return l, OutcomeMalformedSettings, err
	}
	return l, OutcomeOK, nil
}

// Marshal serializes l with the current FormatVersion and the given effective
// settings. Output is deterministic: keys sorted, two-space indent, trailing
// newline.
func Marshal(l Ledger, eff Settings) ([]byte, error) {
	files := l.Files
	if files == nil {
		files = map[string]Entry{}
	}
	b, err := json.MarshalIndent(outDocument{Version: FormatVersion, Settings: eff, Files: files}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return append(b, '\n'), nil
}

type truncater interface {
	Truncate(size int64) error
	io.Seeker
}

// Save writes payload to dst. With truncate the destination is emptied and
// rewound first. The payload is flushed and, for regular files, synced to
// stable storage before Save returns.
func Save(dst io.Writer, payload []byte, truncate bool) error {
	if dst == nil {
		return errors.New("no ledger destination")
	}
	if truncate {
		t, ok := dst.(truncater)
		if !ok {
			return ErrNotTruncatable
		}
		if err := t.Truncate(0); err != nil {
			return fmt.Errorf("truncate ledger: %w", err)
		}
		if _, err := t.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewind ledger: %w", err)
		}
	}
	bw := bufio.NewWriter(dst)
	if _, err := bw.Write(payload); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := syncDest(dst); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}
	return nil
}

func syncDest(dst io.Writer) error {
	if f, ok := dst.(*os.File); ok {
		st, err := f.Stat()
		if err != nil || !st.Mode().IsRegular() {
			return nil
		}
		return f.Sync()
	}
	if s, ok := dst.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}
