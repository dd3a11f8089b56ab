package engine

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/treehash/treehash/internal/digest"
	"github.com/treehash/treehash/internal/ledger"
)

var errNoDestination = errors.New("an updating operation needs a ledger destination")

// Run executes one pass over cfg.Files in cfg.Mode. Per-file problems are
// reported through cfg.Sink and counted in the Result; only conditions that
// make the whole run meaningless are returned as an *Error.
func Run(cfg Config) (Result, error) {
	start := time.Now()
	files := slices.Clone(cfg.Files)
	res := Result{Mode: cfg.Mode}
	sink := tally{next: orDiscard(cfg.Sink), res: &res}

	if cfg.Mode.Updates() && cfg.Destination == nil {
		return res, fatal(KindConfig, errNoDestination)
	}
	l, eff, err := open(cfg.Source, cfg.Root, cfg.Algorithm, cfg.DefaultAlgorithm, cfg.LedgerName, sink)
	if err != nil {
		return res, err
	}
	res.Settings = eff

	comp := cfg.Digest
	if comp == nil {
		comp = &digest.Computer{}
	}
	p := &processor{
		mode:     cfg.Mode,
		settings: eff,
		key:      slices.Clone(cfg.Key),
		files:    l.Files,
		sink:     sink,
		digest:   comp,
	}
	for _, f := range files {
		p.process(f)
		if cfg.Progress != nil {
			cfg.Progress()
		}
	}
	res.Entries = len(l.Files)

	if cfg.Mode.Updates() {
		fp, err := persist(l, eff, cfg.Destination, cfg.Truncate, cfg.LedgerName, sink)
		if err != nil {
			res.Duration = time.Since(start)
			return res, err
		}
		res.Fingerprint = fp
	}
	res.Duration = time.Since(start)
	return res, nil
}

// open loads the ledger from src and resolves the effective settings. defAlg
// ranks below the algorithm stored in the ledger.
func open(src io.Reader, root, alg, defAlg, name string, sink Sink) (ledger.Ledger, ledger.Settings, error) {
	l, outcome, err := ledger.Load(src)
	switch {
	case outcome == ledger.OutcomeUnreadable:
		sink.Error(err.Error(), name)
		return l, ledger.Settings{}, fatal(KindIO, err)
	case outcome.Fatal():
		sink.Error(err.Error(), name)
		return l, ledger.Settings{}, fatal(KindLedger, err)
	case outcome == ledger.OutcomeMalformedSettings:
		sink.Warning(err.Error(), name)
		l.Settings = nil
	}
	if alg == "" && (l.Settings == nil || l.Settings.HashAlgorithm == "") {
		alg = defAlg
	}
	eff, err := ledger.Resolve(ledger.Settings{RootDir: root, HashAlgorithm: alg}, l.Settings)
	if err != nil {
		if outcome == ledger.OutcomeMalformedSettings {
			sink.Error(err.Error(), name)
		}
		return l, eff, fatal(KindConfig, err)
	}
	return l, eff, nil
}

// persist writes l with the effective settings and returns the payload
// fingerprint.
func persist(l ledger.Ledger, eff ledger.Settings, dst io.Writer, truncate bool, name string, sink Sink) (string, error) {
	payload, err := ledger.Marshal(l, eff)
	if err == nil {
		err = ledger.Save(dst, payload, truncate)
	}
	if err != nil {
		sink.Error(err.Error(), name)
		return "", fatal(KindPersist, err)
	}
	return Fingerprint(payload), nil
}

// Fingerprint is the xxhash64 of a ledger payload as 16 hex digits.
func Fingerprint(payload []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(payload))
}

func orDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}
