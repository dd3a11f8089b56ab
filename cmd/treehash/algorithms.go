package treehash

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/treehash/treehash/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "algorithms",
		Short: "List supported digest algorithms",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return report.PrintAlgorithms(os.Stdout)
		},
	}
	rootCmd.AddCommand(cmd)
}
