// Package engine contains the core integrity-ledger logic for treehash. It
// loads a ledger, resolves the effective settings, walks a caller supplied
// candidate list in order applying the run mode to each file, and persists the
// result. It also implements the maintenance operations (pruning entries and
// detecting removed files). Processing is strictly sequential so events are
// emitted in candidate order. This package is internal; external consumers
// should use the stable facade in pkg/core.
package engine
