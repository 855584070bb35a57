package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/catchall"
)

var (
	catchallLimit  int
	catchallOffset int
	catchallDryRun bool
)

var catchallCmd = &cobra.Command{
	Use:   "catchall",
	Short: "Discover and validate emails, migrating dead contacts to the catch-all table",
	Long: `Selects one contact per organization that lacks a validated email,
predicts up to ten candidate addresses from the contact name and company
domain, and validates them in order. The first deliverable address is
saved on the contact; if every candidate fails, the contact is moved to
the catch-all table in a single transaction.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		validator, err := initValidator()
		if err != nil {
			return err
		}

		tracker := newTracker()
		engine := catchall.New(st, validator, catchall.WithTracker(tracker))

		summary, err := engine.Run(ctx, catchall.Options{
			Limit:  catchallLimit,
			Offset: catchallOffset,
			DryRun: catchallDryRun,
		})
		if err != nil {
			return err
		}

		fmt.Printf("processed: %d  validated: %d  migrated: %d  skipped: %d  validation calls: %d\n",
			summary.Processed, summary.Validated, summary.Migrated, summary.Skipped, summary.Calls)
		if summary.DryRun {
			fmt.Printf("dry run: no writes performed; estimated cost $%.4f\n", summary.CostUSD)
		}
		return nil
	},
}

func init() {
	catchallCmd.Flags().IntVar(&catchallLimit, "limit", 50, "max contacts to process")
	catchallCmd.Flags().IntVar(&catchallOffset, "offset", 0, "selection offset for paging")
	catchallCmd.Flags().BoolVar(&catchallDryRun, "dry-run", false, "validate and log decisions without writing")
	rootCmd.AddCommand(catchallCmd)
}
