package core

import (
	"encoding/json"
	"io"
)

type resultJSON struct {
	Mode        string `json:"mode"`
	Root        string `json:"root"`
	Algorithm   string `json:"algorithm"`
	Processed   int    `json:"processed"`
	Succeeded   int    `json:"succeeded"`
	Failed      int    `json:"failed"`
	Warnings    int    `json:"warnings"`
	Errors      int    `json:"errors"`
	Entries     int    `json:"entries"`
	Fingerprint string `json:"fingerprint,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
	Status      string `json:"status"`
}

// MarshalResult pretty-prints a run result as JSON for pipelines.
func MarshalResult(w io.Writer, res Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resultJSON{
		Mode:        res.Mode.String(),
		Root:        res.Settings.RootDir,
		Algorithm:   res.Settings.HashAlgorithm,
		Processed:   res.Processed,
		Succeeded:   res.Succeeded,
		Failed:      res.Failed,
		Warnings:    res.Warnings,
		Errors:      res.Errors,
		Entries:     res.Entries,
		Fingerprint: res.Fingerprint,
		DurationMS:  res.Duration.Milliseconds(),
		Status:      res.Status().String(),
	})
}

// MarshalEvents writes recorded events as a JSON array.
func MarshalEvents(w io.Writer, events []Event) error {
	if events == nil {
		events = []Event{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(events)
}

// UnmarshalEvents decodes a JSON array written by MarshalEvents.
func UnmarshalEvents(r io.Reader) ([]Event, error) {
	var evs []Event
	if err := json.NewDecoder(r).Decode(&evs); err != nil {
		return nil, err
	}
	return evs, nil
}
