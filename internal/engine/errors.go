package engine

import (
	"errors"
	"fmt"
)

// ErrRootNotDir is returned by maintenance operations whose root is missing
// or not a directory.
var ErrRootNotDir = errors.New("root does not exist or is not a directory")

// Kind classifies a fatal failure. Per-file problems are never fatal; they
// are reported through the Sink and counted in Result.
type Kind int

const (
	// KindConfig covers unusable configuration: no root, bad algorithm,
	// missing destination.
	KindConfig Kind = iota + 1
	// KindLedger covers a ledger that is malformed or of another version.
	KindLedger
	// KindIO covers a ledger source that cannot be read.
	KindIO
	// KindPersist covers failures writing the ledger back.
	KindPersist
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "configuration error"
	case KindLedger:
		return "ledger error"
	case KindIO:
		return "i/o error"
	case KindPersist:
		return "persist error"
	default:
		return "error"
	}
}

// Error is a fatal failure that aborted an operation.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Kind, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of a fatal error, or 0 when err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func fatal(kind Kind, err error) error { return &Error{Kind: kind, Err: err} }
