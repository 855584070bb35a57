package outreach

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/cost"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
)

const defaultMaxTokens = 2048

// Generator produces outreach sequences with Claude.
type Generator struct {
	client    anthropic.Client
	profile   *ClientProfile
	model     string
	maxTokens int64
	tracker   *cost.Tracker
	log       *zap.Logger
	retry     resilience.RetryConfig
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxTokens overrides the generation token cap.
func WithMaxTokens(n int64) Option {
	return func(g *Generator) { g.maxTokens = n }
}

// WithTracker attaches a cost tracker.
func WithTracker(t *cost.Tracker) Option {
	return func(g *Generator) { g.tracker = t }
}

// WithLogger sets the generator logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// New creates a Generator for one client profile.
func New(client anthropic.Client, profile *ClientProfile, modelName string, opts ...Option) *Generator {
	g := &Generator{
		client:    client,
		profile:   profile,
		model:     modelName,
		maxTokens: defaultMaxTokens,
		log:       zap.L(),
		retry: resilience.RetryConfig{
			OnRetry: resilience.Logger("anthropic", "outreach sequence"),
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Sequence generates the three-email sequence for one contact. The
// second and third emails get their CTA links from the client profile.
func (g *Generator) Sequence(ctx context.Context, c model.Contact) (*model.OutreachSequence, error) {
	prompt := buildPrompt(g.profile, c)

	resp, err := resilience.DoVal(ctx, g.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return g.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     g.model,
			MaxTokens: g.maxTokens,
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
	})
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: generate for contact %d", c.ID)
	}

	emails, err := ParseSequence(resp.Text())
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: contact %d", c.ID)
	}

	// CTA links per email position: reply / website / sample.
	emails[1].CTALink = g.profile.WebsiteURL
	emails[2].CTALink = g.profile.SampleURL

	seq := &model.OutreachSequence{
		ContactID: c.ID,
		Emails:    emails,
		Tokens:    int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
	}
	if g.tracker != nil {
		g.tracker.AddClaude(g.model, int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens))
		seq.CostUSD = g.tracker.Snapshot().TotalUSD
	}

	g.log.Info("outreach sequence generated",
		zap.Int64("contact_id", c.ID),
		zap.String("company", c.CompanyName),
		zap.Int("tokens", seq.Tokens))
	return seq, nil
}
