package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/cost"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/pkg/zerobounce"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "outreach.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Schema, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initValidator() (zerobounce.Client, error) {
	if cfg.ZeroBounce.Key == "" {
		return nil, eris.New("zerobounce API key is required (OUTREACH_ZEROBOUNCE_KEY)")
	}
	return zerobounce.NewClient(cfg.ZeroBounce.Key,
		zerobounce.WithBaseURL(cfg.ZeroBounce.BaseURL),
		zerobounce.WithRateLimit(cfg.ZeroBounce.RPS),
	), nil
}

func newTracker() *cost.Tracker {
	rates := cost.DefaultRates()
	if cfg.Pricing.ZeroBouncePerCheck > 0 {
		rates.ZeroBounce.PerCheck = cfg.Pricing.ZeroBouncePerCheck
	}
	if cfg.Pricing.PerplexityPerQuery > 0 {
		rates.Perplexity.PerQuery = cfg.Pricing.PerplexityPerQuery
	}
	if cfg.Pricing.AnthropicInput > 0 {
		rates.Anthropic[cfg.Anthropic.Model] = cost.ModelRate{
			Input:  cfg.Pricing.AnthropicInput,
			Output: cfg.Pricing.AnthropicOutput,
		}
	}
	return cost.NewTracker(cost.NewCalculator(rates))
}
