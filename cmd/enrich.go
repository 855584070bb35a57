package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/enrich"
	"github.com/sells-group/outreach-cli/pkg/perplexity"
)

var (
	enrichLimit   int
	enrichOffset  int
	enrichWorkers int
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Find leadership contacts and missing business data per organization",
	Long: `Runs a web search for each organization to find decision-maker names,
titles, and direct emails plus any business fields the lead list was
missing. Results are merged into the organization record and new
leadership contacts are inserted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Perplexity.Key == "" {
			return eris.New("perplexity API key is required (OUTREACH_PERPLEXITY_KEY)")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		client := perplexity.NewClient(cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model),
		)

		tracker := newTracker()
		enricher := enrich.New(st, client, enrich.WithTracker(tracker))

		workers := enrichWorkers
		if workers <= 0 {
			workers = cfg.Enrich.Workers
		}

		enriched, failed, err := enricher.Batch(ctx, enrichLimit, enrichOffset, workers)
		if err != nil {
			return err
		}

		fmt.Printf("enriched: %d  failed: %d  cost: $%.4f\n",
			enriched, failed, tracker.Snapshot().TotalUSD)
		return nil
	},
}

func init() {
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 50, "max organizations to enrich")
	enrichCmd.Flags().IntVar(&enrichOffset, "offset", 0, "selection offset for paging")
	enrichCmd.Flags().IntVar(&enrichWorkers, "workers", 0, "concurrent searches (default from config)")
	rootCmd.AddCommand(enrichCmd)
}
