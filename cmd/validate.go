package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/catchall"
)

var (
	validateEmail string
	validateLimit int
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check deliverability of stored or ad-hoc email addresses",
	Long: `With --email, checks a single address and prints the verdict.
Without it, walks contacts lacking a validated email (one per
organization) and re-checks those that carry a stored address,
recording the verdict on each. Only the stored address is checked; no
candidates are predicted and nothing moves to the catch-all table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		validator, err := initValidator()
		if err != nil {
			return err
		}

		if validateEmail != "" {
			res, err := validator.Validate(ctx, validateEmail)
			if err != nil {
				return eris.Wrapf(err, "validate %s", validateEmail)
			}
			fmt.Printf("%s: %s (score %d)\n", res.Email, res.Status, res.Score)
			return nil
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		contacts, err := st.SelectUnvalidated(ctx, validateLimit, 0)
		if err != nil {
			return eris.Wrap(err, "select contacts")
		}

		tracker := newTracker()
		var checked, valid int
		for _, c := range contacts {
			if c.Email == "" {
				continue
			}
			if checked > 0 {
				select {
				case <-ctx.Done():
					return eris.Wrap(ctx.Err(), "validate cancelled")
				case <-time.After(catchall.DefaultDelay):
				}
			}

			res, err := validator.Validate(ctx, c.Email)
			if err != nil {
				return eris.Wrapf(err, "validate %s", c.Email)
			}
			checked++
			tracker.AddValidations(1)

			if res.Status.Deliverable() {
				valid++
				if err := st.SaveValidatedEmail(ctx, c.ID, c.Email, res.Score, "zerobounce"); err != nil {
					return eris.Wrapf(err, "contact %d", c.ID)
				}
				continue
			}
			if err := st.UpdateValidationStatus(ctx, c.ID, res.Status, res.Score, "zerobounce"); err != nil {
				return eris.Wrapf(err, "contact %d", c.ID)
			}
		}

		fmt.Printf("checked: %d  valid: %d  cost: $%.4f\n",
			checked, valid, tracker.Snapshot().TotalUSD)
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateEmail, "email", "", "check a single address without touching the store")
	validateCmd.Flags().IntVar(&validateLimit, "limit", 50, "max contacts to re-check")
	rootCmd.AddCommand(validateCmd)
}
