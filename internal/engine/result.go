package engine

import (
	"time"

	"github.com/treehash/treehash/internal/ledger"
)

// Status is the aggregate outcome of a run that did not fail fatally.
type Status int

const (
	StatusOK Status = iota
	// StatusFilesFailed means at least one candidate was unsuccessful.
	StatusFilesFailed
	// StatusErrors means at least one error event was reported. It wins
	// over StatusFilesFailed.
	StatusErrors
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFilesFailed:
		return "files failed"
	case StatusErrors:
		return "errors"
	default:
		return "unknown"
	}
}

// Result summarizes one Run.
type Result struct {
	Mode     Mode
	Settings ledger.Settings

	Processed int
	Succeeded int
	Failed    int
	Warnings  int
	Errors    int
	// Entries is the number of ledger entries after the run.
	Entries int

	// Fingerprint is the xxhash64 of the persisted payload, empty in
	// verify mode.
	Fingerprint string
	Duration    time.Duration
}

func (r Result) Status() Status {
	switch {
	case r.Errors > 0:
		return StatusErrors
	case r.Failed > 0:
		return StatusFilesFailed
	default:
		return StatusOK
	}
}
