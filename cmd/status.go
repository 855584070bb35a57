package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show lead database counts and the validation breakdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Ping(ctx); err != nil {
			return err
		}

		counts, err := st.Counts(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("organizations: %d\n", counts.Organizations)
		fmt.Printf("contacts:      %d\n", counts.Contacts)
		fmt.Printf("validated:     %d\n", counts.Validated)
		fmt.Printf("catch-all:     %d\n", counts.Catchall)

		if len(counts.ByStatus) > 0 {
			fmt.Println("\nvalidation status:")
			statuses := make([]string, 0, len(counts.ByStatus))
			for s := range counts.ByStatus {
				statuses = append(statuses, s)
			}
			sort.Strings(statuses)
			for _, s := range statuses {
				fmt.Printf("  %-14s %d\n", s, counts.ByStatus[s])
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
