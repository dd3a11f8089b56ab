package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/treehash/treehash/internal/digest"
	"github.com/treehash/treehash/internal/engine"
)

// PrintSummary renders the counters of a run as a two-column table.
func PrintSummary(w io.Writer, res engine.Result) error {
	table := tablewriter.NewWriter(w)
	table.Header("Run", res.Mode.String())
	rows := [][]string{
		{"root", res.Settings.RootDir},
		{"algorithm", res.Settings.HashAlgorithm},
		{"processed", strconv.Itoa(res.Processed)},
		{"successful", strconv.Itoa(res.Succeeded)},
		{"unsuccessful", strconv.Itoa(res.Failed)},
		{"warnings", strconv.Itoa(res.Warnings)},
		{"errors", strconv.Itoa(res.Errors)},
		{"ledger entries", strconv.Itoa(res.Entries)},
	}
	if res.Fingerprint != "" {
		rows = append(rows, []string{"fingerprint", res.Fingerprint})
	}
	rows = append(rows,
		[]string{"duration", res.Duration.Round(time.Millisecond).String()},
		[]string{"status", res.Status().String()},
	)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// PrintRemoved writes one ledger key per line.
func PrintRemoved(w io.Writer, keys []string) {
	for _, k := range keys {
		fmt.Fprintln(w, k)
	}
}

// PrintAlgorithms lists the supported digest algorithms, marking the default.
func PrintAlgorithms(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header("Algorithm", "Description", "Default")
	for _, name := range digest.Names() {
		alg := digest.Algorithm(name)
		def := ""
		if alg == digest.Default {
			def = "yes"
		}
		if err := table.Append([]string{name, digest.Describe(alg), def}); err != nil {
			return err
		}
	}
	return table.Render()
}
