package engine

import (
	"iter"
	"os"
	"path/filepath"
	"slices"

	"github.com/treehash/treehash/internal/ledger"
	"github.com/treehash/treehash/internal/paths"
)

// PruneEntries returns a copy of l holding only the entries whose key, or
// root-joined absolute path, appears in keep. Elements of keep may be
// absolute or relative to root.
func PruneEntries(l ledger.Ledger, root string, keep []string) ledger.Ledger {
	set := make(map[string]struct{}, 2*len(keep))
	for _, k := range keep {
		c := filepath.Clean(k)
		set[k] = struct{}{}
		set[c] = struct{}{}
		set[filepath.ToSlash(c)] = struct{}{}
	}
	out := l.Clone()
	for key := range out.Files {
		if _, ok := set[key]; ok {
			continue
		}
		if _, ok := set[paths.Join(root, key)]; ok {
			continue
		}
		delete(out.Files, key)
	}
	return out
}

// RemovedEntries yields, in key order, every ledger key whose root-joined
// absolute path is not in existing. The sequence can be ranged over any
// number of times and always yields the same keys.
func RemovedEntries(l ledger.Ledger, root string, existing []string) iter.Seq[string] {
	set := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		set[filepath.Clean(p)] = struct{}{}
	}
	keys := make([]string, 0, len(l.Files))
	for k := range l.Files {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return func(yield func(string) bool) {
		for _, k := range keys {
			if _, ok := set[paths.Join(root, k)]; ok {
				continue
			}
			if !yield(k) {
				return
			}
		}
	}
}

// PruneResult summarizes a Prune call.
type PruneResult struct {
	Settings    ledger.Settings
	Kept        int
	Dropped     int
	Fingerprint string
}

// Prune loads the ledger, drops every entry not in cfg.Paths and saves the
// result to cfg.Destination.
func Prune(cfg MaintenanceConfig) (PruneResult, error) {
	var res PruneResult
	sink := orDiscard(cfg.Sink)
	l, eff, err := open(cfg.Source, cfg.Root, cfg.Algorithm, cfg.DefaultAlgorithm, cfg.LedgerName, sink)
	if err != nil {
		return res, err
	}
	res.Settings = eff
	if err := requireDir(eff.RootDir); err != nil {
		return res, err
	}
	if cfg.Destination == nil {
		return res, fatal(KindConfig, errNoDestination)
	}
	pruned := PruneEntries(l, eff.RootDir, cfg.Paths)
	res.Kept = len(pruned.Files)
	res.Dropped = len(l.Files) - len(pruned.Files)
	fp, err := persist(pruned, eff, cfg.Destination, cfg.Truncate, cfg.LedgerName, sink)
	if err != nil {
		return res, err
	}
	res.Fingerprint = fp
	return res, nil
}

// FindRemoved loads the ledger and returns the keys whose files are not in
// cfg.Paths, sorted.
func FindRemoved(cfg MaintenanceConfig) ([]string, error) {
	sink := orDiscard(cfg.Sink)
	l, eff, err := open(cfg.Source, cfg.Root, cfg.Algorithm, cfg.DefaultAlgorithm, cfg.LedgerName, sink)
	if err != nil {
		return nil, err
	}
	if err := requireDir(eff.RootDir); err != nil {
		return nil, err
	}
	return slices.Collect(RemovedEntries(l, eff.RootDir, cfg.Paths)), nil
}

func requireDir(root string) error {
	st, err := os.Stat(root)
	if err != nil || !st.IsDir() {
		return fatal(KindConfig, ErrRootNotDir)
	}
	return nil
}
