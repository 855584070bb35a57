package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/outreach"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
)

var (
	outreachClient    string
	outreachContactID int64
	outreachJSON      bool
)

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Generate a three-email outreach sequence for a contact",
	Long: `Drafts a personalized three-email cold outreach sequence for a
validated contact, written from the client profile's voice. Emails two
and three carry the profile's website and sample links as calls to
action.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Anthropic.Key == "" {
			return eris.New("anthropic API key is required (OUTREACH_ANTHROPIC_KEY)")
		}

		profile, err := outreach.LoadProfile(outreachClient)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		contact, err := st.GetContact(ctx, outreachContactID)
		if err != nil {
			return err
		}

		tracker := newTracker()
		gen := outreach.New(anthropic.NewClient(cfg.Anthropic.Key), profile, cfg.Anthropic.Model,
			outreach.WithMaxTokens(int64(cfg.Anthropic.MaxTokens)),
			outreach.WithTracker(tracker),
		)

		seq, err := gen.Sequence(ctx, *contact)
		if err != nil {
			return err
		}

		if outreachJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(seq), "encode sequence")
		}

		for i, email := range seq.Emails {
			fmt.Printf("--- email %d ---\n", i+1)
			fmt.Printf("Subject: %s\n\n", email.Subject)
			if email.Icebreaker != "" {
				fmt.Printf("%s\n\n", email.Icebreaker)
			}
			fmt.Printf("%s\n\n", email.Body)
			if email.CTAText != "" {
				fmt.Printf("%s\n", email.CTAText)
			}
			if email.CTALink != "" {
				fmt.Printf("%s\n", email.CTALink)
			}
			fmt.Println()
		}
		fmt.Printf("tokens: %d  cost: $%.4f\n", seq.Tokens, tracker.Snapshot().TotalUSD)
		return nil
	},
}

func init() {
	outreachCmd.Flags().StringVar(&outreachClient, "client", "", "path to the client profile YAML")
	outreachCmd.Flags().Int64Var(&outreachContactID, "contact-id", 0, "contact to write for")
	outreachCmd.Flags().BoolVar(&outreachJSON, "json", false, "emit the sequence as JSON")
	_ = outreachCmd.MarkFlagRequired("client")
	_ = outreachCmd.MarkFlagRequired("contact-id")
	rootCmd.AddCommand(outreachCmd)
}
