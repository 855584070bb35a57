package cost

import "sync"

// Tracker accumulates API usage across a run. Safe for concurrent use
// by the enrichment workers.
type Tracker struct {
	mu sync.Mutex

	calc *Calculator

	validations       int
	perplexityQueries int
	claudeInput       int
	claudeOutput      int
	claudeUSD         float64
}

// NewTracker creates a Tracker that prices usage with the given calculator.
func NewTracker(calc *Calculator) *Tracker {
	return &Tracker{calc: calc}
}

// AddValidations records n mailbox validation calls.
func (t *Tracker) AddValidations(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.validations += n
}

// AddPerplexityQuery records one research query.
func (t *Tracker) AddPerplexityQuery() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.perplexityQueries++
}

// AddClaude records token usage for one Claude call on the given model.
func (t *Tracker) AddClaude(model string, input, output int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.claudeInput += input
	t.claudeOutput += output
	t.claudeUSD += t.calc.Claude(model, input, output)
}

// Usage is a snapshot of accumulated spend.
type Usage struct {
	Validations        int
	PerplexityQueries  int
	ClaudeInputTokens  int
	ClaudeOutputTokens int
	TotalUSD           float64
}

// Snapshot returns the usage and total cost so far.
func (t *Tracker) Snapshot() Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Usage{
		Validations:        t.validations,
		PerplexityQueries:  t.perplexityQueries,
		ClaudeInputTokens:  t.claudeInput,
		ClaudeOutputTokens: t.claudeOutput,
		TotalUSD: t.calc.Validation(t.validations) +
			float64(t.perplexityQueries)*t.calc.PerplexityQuery() +
			t.claudeUSD,
	}
}
