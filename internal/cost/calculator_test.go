package cost

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculator_Claude(t *testing.T) {
	c := NewCalculator(DefaultRates())

	got := c.Claude("claude-sonnet-4-5-20250929", 1_000_000, 100_000)
	assert.InDelta(t, 3.00+1.50, got, 1e-9)

	assert.Zero(t, c.Claude("unknown-model", 1000, 1000))
}

func TestCalculator_Validation(t *testing.T) {
	c := NewCalculator(DefaultRates())
	assert.InDelta(t, 0.08, c.Validation(10), 1e-9)
	assert.Zero(t, c.Validation(0))
}

func TestTracker_Snapshot(t *testing.T) {
	tr := NewTracker(NewCalculator(DefaultRates()))

	tr.AddValidations(5)
	tr.AddPerplexityQuery()
	tr.AddClaude("claude-sonnet-4-5-20250929", 1_000_000, 0)

	u := tr.Snapshot()
	assert.Equal(t, 5, u.Validations)
	assert.Equal(t, 1, u.PerplexityQueries)
	assert.Equal(t, 1_000_000, u.ClaudeInputTokens)
	assert.InDelta(t, 5*0.008+0.005+3.00, u.TotalUSD, 1e-9)
}

func TestTracker_Concurrent(t *testing.T) {
	tr := NewTracker(NewCalculator(DefaultRates()))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.AddValidations(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tr.Snapshot().Validations)
}
