package treehash

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/treehash/treehash/internal/update"
)

func init() {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the treehash version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "treehash", version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	var checkOnly bool
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update treehash to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if checkOnly {
				ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
				defer cancel()
				latest, newer, err := update.Check(ctx, version, false)
				if err != nil {
					return err
				}
				if newer {
					fmt.Fprintf(cmd.OutOrStdout(), "new version available: v%s\n", latest)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "treehash is up to date")
				}
				return nil
			}
			installed, err := update.SelfUpdate(version)
			if err != nil {
				return fmt.Errorf("self-update failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "treehash is at v%s\n", installed)
			return nil
		},
	}
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "only report whether a newer release exists")
	rootCmd.AddCommand(updateCmd)
}
