package treehash

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/treehash/treehash/internal/audit"
)

func init() {
	var (
		logPath string
		remove  int
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show runs recorded in an audit log",
		Example: `  treehash history --audit-log /var/log/treehash.jsonl
  treehash history --audit-log /var/log/treehash.jsonl --delete 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if logPath == "" {
				return invalidf("--audit-log is required")
			}
			al := audit.NewAuditLog(logPath)
			if cmd.Flags().Changed("delete") {
				if err := al.DeleteRecord(remove); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted record %d from %s\n", remove, al.Path())
				return nil
			}
			records, err := al.LoadHistory()
			if err != nil {
				return err
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			return printHistory(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().StringVar(&logPath, "audit-log", "", "audit log file")
	cmd.Flags().IntVar(&remove, "delete", 0, "delete the record at this index (0 = newest)")
	cmd.Flags().IntVar(&limit, "limit", 20, "show at most this many records (0 = all)")
	rootCmd.AddCommand(cmd)
}

func printHistory(w io.Writer, records []audit.RunRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "no runs recorded")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header("#", "Time", "Mode", "Ledger", "Processed", "Failed", "Errors", "Status")
	for i, r := range records {
		row := []string{
			strconv.Itoa(i),
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Mode,
			r.Ledger,
			strconv.Itoa(r.Processed),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Errors),
			r.Status,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

