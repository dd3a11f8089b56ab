// Package treehash provides the command-line interface for treehash. The
// root command records, verifies and maintains a ledger of file digests;
// subcommands cover shell completion, configuration and CI scaffolding,
// run history and updates.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/treehash/treehash/cmd/treehash"
//	func main() { treehash.Execute() }
package treehash
