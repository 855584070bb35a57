package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/cost"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/pkg/perplexity"
)

// DefaultWorkers is the enrichment concurrency when none is configured.
const DefaultWorkers = 5

// Enricher researches organizations and writes the findings back.
type Enricher struct {
	store   store.Store
	client  perplexity.Client
	tracker *cost.Tracker
	log     *zap.Logger
	retry   resilience.RetryConfig
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithTracker attaches a cost tracker.
func WithTracker(t *cost.Tracker) Option {
	return func(e *Enricher) { e.tracker = t }
}

// WithLogger sets the enricher logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Enricher) { e.log = l }
}

// WithRetry overrides the retry policy for research calls.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(e *Enricher) { e.retry = cfg }
}

// New creates an Enricher.
func New(st store.Store, client perplexity.Client, opts ...Option) *Enricher {
	e := &Enricher{
		store:  st,
		client: client,
		log:    zap.L(),
		retry: resilience.RetryConfig{
			OnRetry: resilience.Logger("perplexity", "leadership search"),
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Organization researches a single organization and persists leadership
// contacts and recovered business fields.
func (e *Enricher) Organization(ctx context.Context, org model.Organization) (*model.EnrichmentResult, error) {
	prompt := LeadershipPrompt(org.CompanyName, org.WebsiteURL)

	type reply struct {
		text  string
		usage perplexity.Usage
	}
	r, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (reply, error) {
		text, usage, err := e.client.Search(ctx, prompt)
		return reply{text, usage}, err
	})
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: research %s", org.CompanyName)
	}
	if e.tracker != nil {
		e.tracker.AddPerplexityQuery()
	}

	result, err := e.ParseAndSave(ctx, org, r.text)
	if err != nil {
		return nil, err
	}
	result.QueryTokens = r.usage.Total()
	return result, nil
}

// ParseAndSave decodes a research reply and applies it to the store.
func (e *Enricher) ParseAndSave(ctx context.Context, org model.Organization, text string) (*model.EnrichmentResult, error) {
	result, err := ParseResult(text)
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: %s", org.CompanyName)
	}
	result.OrgID = org.ID

	if err := e.store.SaveEnrichment(ctx, org.ID, result.Business); err != nil {
		return nil, err
	}

	// Upsert keyed on (org, name): re-enriching an organization refines
	// its leadership contacts instead of duplicating them.
	for _, lc := range result.Leadership {
		err := e.store.UpsertContact(ctx, model.Contact{
			OrgID:     org.ID,
			Name:      lc.Name,
			RoleTitle: lc.Title,
			Email:     lc.Email,
		})
		if err != nil {
			return nil, err
		}
	}

	e.log.Info("organization enriched",
		zap.Int64("org_id", org.ID),
		zap.String("company", org.CompanyName),
		zap.Int("leadership_contacts", len(result.Leadership)))
	return result, nil
}

// Batch enriches a page of organizations with a bounded worker pool.
// Individual failures are logged and counted, not fatal: one camp with
// a broken website should not stop the other forty-nine.
func (e *Enricher) Batch(ctx context.Context, limit, offset, workers int) (enriched, failed int, err error) {
	orgs, err := e.store.ListOrganizations(ctx, limit, offset)
	if err != nil {
		return 0, 0, eris.Wrap(err, "enrich: list organizations")
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var group errgroup.Group
	group.SetLimit(workers)
	results := make([]error, len(orgs))

	for i, org := range orgs {
		group.Go(func() error {
			_, err := e.Organization(ctx, org)
			results[i] = err
			if err != nil {
				e.log.Warn("enrichment failed",
					zap.String("company", org.CompanyName),
					zap.Error(err))
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return 0, 0, eris.Wrap(err, "enrich: batch")
	}

	for _, r := range results {
		if r == nil {
			enriched++
		} else {
			failed++
		}
	}
	return enriched, failed, nil
}
