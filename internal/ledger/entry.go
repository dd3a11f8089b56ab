package ledger

import (
	"bytes"
	"encoding/json"
)

// Entry is the stored state of one file.
type Entry struct {
	Hash         string
	LastModified int64

	// raw holds the original JSON of an entry that failed validation so it
	// can be written back unchanged.
	raw     json.RawMessage
	badHash bool
	noMTime bool
}

type entryJSON struct {
	Hash         string `json:"hash"`
	LastModified int64  `json:"lastModified"`
}

// NewEntry returns a well-formed entry.
func NewEntry(hash string, lastModified int64) Entry {
	return Entry{Hash: hash, LastModified: lastModified}
}

// HashValid reports whether the stored hash was a JSON string.
func (e Entry) HashValid() bool { return !e.badHash }

// HasModTime reports whether the stored entry carried an integer lastModified.
func (e Entry) HasModTime() bool { return !e.noMTime }

func (e Entry) MarshalJSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}
	return json.Marshal(entryJSON{Hash: e.Hash, LastModified: e.LastModified})
}

// UnmarshalJSON never fails: a malformed entry is kept and flagged so the
// file it belongs to can be reported individually.
func (e *Entry) UnmarshalJSON(b []byte) error {
	*e = Entry{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil || fields == nil {
		e.badHash, e.noMTime = true, true
		e.raw = append(json.RawMessage(nil), b...)
		return nil
	}
	if h, ok := fields["hash"]; !ok || !isJSONString(h) || json.Unmarshal(h, &e.Hash) != nil {
		e.badHash = true
	}
	if lm, ok := fields["lastModified"]; !ok || isJSONNull(lm) || json.Unmarshal(lm, &e.LastModified) != nil {
		e.noMTime = true
	}
	if e.badHash || e.noMTime {
		e.raw = append(json.RawMessage(nil), b...)
	}
	return nil
}

func isJSONString(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '"'
}

func isJSONNull(b json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}
