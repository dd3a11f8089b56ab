package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/treehash/treehash/internal/digest"
)

// ErrNoRoot means neither the caller nor the ledger supplied a root directory.
var ErrNoRoot = errors.New("no root directory configured and none stored in the ledger")

// Settings are embedded in every saved ledger so it is self-describing.
type Settings struct {
	RootDir       string `json:"rootDir"`
	HashAlgorithm string `json:"hashAlgorithm"`
}

// Algorithm returns the settings' algorithm; it is only meaningful on
// settings returned by Resolve.
func (s Settings) Algorithm() digest.Algorithm { return digest.Algorithm(s.HashAlgorithm) }

// Resolve merges caller supplied settings with the ones stored in the ledger:
// caller first, then ledger, then defaults. The result is the single source of
// truth for one operation. The root is made absolute and clean; the algorithm
// name is normalized.
func Resolve(caller Settings, stored *Settings) (Settings, error) {
	eff := caller
	if stored != nil {
		if eff.RootDir == "" {
			eff.RootDir = stored.RootDir
		}
		if eff.HashAlgorithm == "" {
			eff.HashAlgorithm = stored.HashAlgorithm
		}
	}
	if eff.RootDir == "" {
		return eff, ErrNoRoot
	}
	if eff.HashAlgorithm == "" {
		eff.HashAlgorithm = string(digest.Default)
	}
	alg, err := digest.Parse(eff.HashAlgorithm)
	if err != nil {
		return eff, err
	}
	eff.HashAlgorithm = string(alg)
	root, err := filepath.Abs(eff.RootDir)
	if err != nil {
		return eff, fmt.Errorf("resolve root %q: %w", eff.RootDir, err)
	}
	eff.RootDir = filepath.Clean(root)
	return eff, nil
}

// parseSettings keeps whichever fields are well-formed and reports the rest.
func parseSettings(raw json.RawMessage) (*Settings, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSettings, err)
	}
	var s Settings
	var missing []string
	if v, ok := fields["rootDir"]; !ok || !isJSONString(v) || json.Unmarshal(v, &s.RootDir) != nil {
		missing = append(missing, "rootDir")
	}
	if v, ok := fields["hashAlgorithm"]; !ok || !isJSONString(v) || json.Unmarshal(v, &s.HashAlgorithm) != nil {
		missing = append(missing, "hashAlgorithm")
	}
	if len(missing) > 0 {
		return &s, fmt.Errorf("%w: missing or invalid %v", ErrMalformedSettings, missing)
	}
	return &s, nil
}
