package main

import (
	"fmt"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/catchall"
)

var (
	discoverContactID int64
	discoverAll       bool
	discoverLimit     int
	discoverWorkers   int
	discoverDryRun    bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find a working email for a contact, trying the stored address first",
	Long: `Runs email discovery for a single contact or a batch. A stored
address that already validated is left alone; otherwise the stored
address is tried first, then the predicted candidates. Contacts that
exhaust every candidate move to the catch-all table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if discoverContactID == 0 && !discoverAll {
			return eris.New("either --contact-id or --all is required")
		}

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
		engine := catchall.New(st, validator,
			catchall.WithTracker(tracker),
			catchall.WithExistingFirst(),
		)

		if discoverContactID != 0 {
			out, err := engine.ProcessContact(ctx, discoverContactID, discoverDryRun)
			if err != nil {
				return err
			}
			printOutcome(out)
			return nil
		}

		contacts, err := st.SelectUnvalidated(ctx, discoverLimit, 0)
		if err != nil {
			return eris.Wrap(err, "select contacts")
		}

		var validated, migrated, skipped atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(discoverWorkers)
		for _, c := range contacts {
			id := c.ID
			g.Go(func() error {
				out, err := engine.ProcessContact(gctx, id, discoverDryRun)
				if err != nil {
					return eris.Wrapf(err, "contact %d", id)
				}
				switch out.Action {
				case catchall.ActionValidated:
					validated.Add(1)
				case catchall.ActionMigrated:
					migrated.Add(1)
				default:
					skipped.Add(1)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("processed: %d  validated: %d  migrated: %d  skipped: %d\n",
			len(contacts), validated.Load(), migrated.Load(), skipped.Load())
		fmt.Printf("validation cost: $%.4f\n", tracker.Snapshot().TotalUSD)
		return nil
	},
}

func printOutcome(out *catchall.Outcome) {
	switch out.Action {
	case catchall.ActionValidated:
		fmt.Printf("contact %d (%s): validated %s\n", out.ContactID, out.Name, out.Email)
	case catchall.ActionMigrated:
		fmt.Printf("contact %d (%s): no deliverable address after %d attempts, moved to catch-all\n",
			out.ContactID, out.Name, out.Calls)
	default:
		fmt.Printf("contact %d (%s): already validated as %s\n", out.ContactID, out.Name, out.Email)
	}
}

func init() {
	discoverCmd.Flags().Int64Var(&discoverContactID, "contact-id", 0, "process a single contact")
	discoverCmd.Flags().BoolVar(&discoverAll, "all", false, "process a batch of unvalidated contacts")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 50, "max contacts in batch mode")
	discoverCmd.Flags().IntVar(&discoverWorkers, "workers", 3, "concurrent contacts in batch mode")
	discoverCmd.Flags().BoolVar(&discoverDryRun, "dry-run", false, "validate and log decisions without writing")
	rootCmd.AddCommand(discoverCmd)
}
