// Package audit keeps a JSON-lines history of runs so ledger changes made
// outside treehash can be noticed.
package audit
