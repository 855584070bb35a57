// Package catchall implements the email discovery and catch-all
// migration workflow. For each contact lacking a validated email it
// predicts candidate addresses from the contact name and company
// domain, validates them one at a time, and either records the first
// deliverable address or moves the contact to the catch-all table.
package catchall

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/cost"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/predict"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/pkg/zerobounce"
)

// DefaultDelay is the pause between consecutive validation calls for
// the same contact. ZeroBounce meters per-second request rates, and a
// full candidate list is ten calls back to back.
const DefaultDelay = time.Second

// Action is the terminal outcome for one processed contact.
type Action string

const (
	ActionValidated Action = "validated"
	ActionMigrated  Action = "migrated"
	ActionSkipped   Action = "skipped"
)

// Outcome reports what happened to a single contact.
type Outcome struct {
	ContactID int64
	OrgID     int64
	Name      string
	Company   string
	Action    Action
	Email     string
	Status    model.ValidationStatus
	Attempted []string
	Calls     int
}

// Summary tallies a full run.
type Summary struct {
	Processed int
	Validated int
	Migrated  int
	Skipped   int
	Calls     int
	DryRun    bool
	CostUSD   float64
}

// Options control one engine run.
type Options struct {
	Limit  int
	Offset int
	DryRun bool
}

// sleepFunc pauses for d or returns early with the context's error.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Engine runs the migration workflow against a store and a validator.
type Engine struct {
	store     store.Store
	validator zerobounce.Client
	tracker   *cost.Tracker
	log       *zap.Logger
	delay     time.Duration
	sleep     sleepFunc
	provider  string

	tryExisting bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithDelay overrides the pause between validation calls.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) { e.delay = d }
}

// WithTracker attaches a cost tracker to the run.
func WithTracker(t *cost.Tracker) Option {
	return func(e *Engine) { e.tracker = t }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithExistingFirst makes the engine validate a contact's stored email
// before any predicted candidate. Discovery runs want this; the batch
// migration selector already excludes validated contacts, and its
// semantics treat a stale stored address as absent.
func WithExistingFirst() Option {
	return func(e *Engine) { e.tryExisting = true }
}

// withSleep replaces the inter-call pause, used by tests.
func withSleep(fn sleepFunc) Option {
	return func(e *Engine) { e.sleep = fn }
}

// New creates an Engine.
func New(st store.Store, validator zerobounce.Client, opts ...Option) *Engine {
	e := &Engine{
		store:     st,
		validator: validator,
		log:       zap.L(),
		delay:     DefaultDelay,
		sleep:     sleepCtx,
		provider:  "zerobounce",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run processes one batch of contacts sequentially and returns the
// tally. A validation failure only moves the loop to the next
// candidate, but a store failure aborts the whole batch: a half-applied
// migration is worse than a short run.
func (e *Engine) Run(ctx context.Context, opts Options) (*Summary, error) {
	contacts, err := e.store.SelectUnvalidated(ctx, opts.Limit, opts.Offset)
	if err != nil {
		return nil, eris.Wrap(err, "catchall: select contacts")
	}

	summary := &Summary{DryRun: opts.DryRun}
	e.log.Info("starting catch-all migration run",
		zap.Int("contacts", len(contacts)),
		zap.Bool("dry_run", opts.DryRun))

	for _, c := range contacts {
		if err := ctx.Err(); err != nil {
			return summary, eris.Wrap(err, "catchall: run cancelled")
		}

		out, err := e.processContact(ctx, c, opts.DryRun)
		if err != nil {
			return summary, eris.Wrapf(err, "catchall: contact %d", c.ID)
		}

		summary.Processed++
		summary.Calls += out.Calls
		switch out.Action {
		case ActionValidated:
			summary.Validated++
		case ActionMigrated:
			summary.Migrated++
		default:
			summary.Skipped++
		}
		e.logOutcome(out, opts.DryRun)
	}

	if e.tracker != nil {
		summary.CostUSD = e.tracker.Snapshot().TotalUSD
	}
	e.log.Info("catch-all migration run complete",
		zap.Int("processed", summary.Processed),
		zap.Int("validated", summary.Validated),
		zap.Int("migrated", summary.Migrated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("validation_calls", summary.Calls),
		zap.Bool("dry_run", opts.DryRun))
	return summary, nil
}

// ProcessContact runs the workflow for a single contact, used by the
// webhook handler and the --contact-id path.
func (e *Engine) ProcessContact(ctx context.Context, contactID int64, dryRun bool) (*Outcome, error) {
	c, err := e.store.GetContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	out, err := e.processContact(ctx, *c, dryRun)
	if err != nil {
		return nil, err
	}
	e.logOutcome(out, dryRun)
	return &out, nil
}

func (e *Engine) processContact(ctx context.Context, c model.Contact, dryRun bool) (Outcome, error) {
	out := Outcome{
		ContactID: c.ID,
		OrgID:     c.OrgID,
		Name:      c.Name,
		Company:   c.CompanyName,
	}

	if c.HasValidatedEmail() {
		out.Action = ActionSkipped
		out.Email = c.Email
		out.Status = c.Status
		return out, nil
	}

	candidates := predict.Candidates(c.Name, c.WebsiteURL)
	if e.tryExisting && c.Email != "" {
		candidates = prependUnique(c.Email, candidates)
	}
	if len(candidates) == 0 {
		// Nothing to try: no usable name or domain. The contact goes
		// straight to the catch-all table.
		out.Action = ActionMigrated
		if dryRun {
			return out, nil
		}
		rec := model.NewCatchallRecord(c, nil)
		if err := e.store.MigrateToCatchall(ctx, rec); err != nil {
			return out, err
		}
		return out, nil
	}

	for i, email := range candidates {
		if i > 0 {
			if err := e.sleep(ctx, e.delay); err != nil {
				return out, eris.Wrap(err, "catchall: wait between validations")
			}
		}

		res, err := e.validator.Validate(ctx, email)
		if err != nil {
			return out, eris.Wrapf(err, "catchall: validate %s", email)
		}
		out.Calls++
		out.Attempted = append(out.Attempted, email)
		if e.tracker != nil {
			e.tracker.AddValidations(1)
		}

		e.log.Debug("validation attempt",
			zap.Int64("contact_id", c.ID),
			zap.String("email", email),
			zap.String("status", string(res.Status)),
			zap.Int("attempt", i+1),
			zap.Int("of", len(candidates)))

		if res.Status.Deliverable() {
			out.Action = ActionValidated
			out.Email = email
			out.Status = res.Status
			if dryRun {
				return out, nil
			}
			if err := e.store.SaveValidatedEmail(ctx, c.ID, email, res.Score, e.provider); err != nil {
				return out, err
			}
			return out, nil
		}
		out.Status = res.Status
	}

	// Every candidate failed. Migrate with the full attempt list.
	out.Action = ActionMigrated
	if dryRun {
		return out, nil
	}
	rec := model.NewCatchallRecord(c, out.Attempted)
	if err := e.store.MigrateToCatchall(ctx, rec); err != nil {
		return out, err
	}
	return out, nil
}

// prependUnique puts email at the front of the list, removing any
// later duplicate so it is only tried once.
func prependUnique(email string, list []string) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, email)
	for _, e := range list {
		if e != email {
			out = append(out, e)
		}
	}
	return out
}

func (e *Engine) logOutcome(out Outcome, dryRun bool) {
	fields := []zap.Field{
		zap.Int64("contact_id", out.ContactID),
		zap.String("contact", out.Name),
		zap.String("company", out.Company),
		zap.Int("calls", out.Calls),
		zap.Bool("dry_run", dryRun),
	}
	switch out.Action {
	case ActionValidated:
		e.log.Info("email validated", append(fields, zap.String("email", out.Email))...)
	case ActionMigrated:
		e.log.Info("contact moved to catch-all",
			append(fields, zap.Int("attempted", len(out.Attempted)))...)
	default:
		e.log.Info("contact skipped", fields...)
	}
}
