package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/config"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "test.db"),
		},
	}
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "oracle"}}

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestInitStore_SQLite(t *testing.T) {
	cfg = sqliteConfig(t)

	st, err := initStore(context.Background())
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.Ping(context.Background()))
}

func TestInitValidator_MissingKey(t *testing.T) {
	cfg = &config.Config{}

	_, err := initValidator()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OUTREACH_ZEROBOUNCE_KEY")
}

func TestNewTracker_PricingOverrides(t *testing.T) {
	cfg = &config.Config{
		Anthropic: config.AnthropicConfig{Model: "test-model"},
		Pricing: config.PricingConfig{
			ZeroBouncePerCheck: 0.01,
			AnthropicInput:     1.0,
			AnthropicOutput:    5.0,
		},
	}

	tracker := newTracker()
	tracker.AddValidations(3)
	assert.InDelta(t, 0.03, tracker.Snapshot().TotalUSD, 1e-9)
}

func TestCatchallCmd_RunE_FailsWithoutValidatorKey(t *testing.T) {
	cfg = sqliteConfig(t)

	catchallCmd.SetContext(context.Background())
	err := catchallCmd.RunE(catchallCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zerobounce API key")
}

func TestEnrichCmd_RunE_FailsWithoutKey(t *testing.T) {
	cfg = sqliteConfig(t)

	enrichCmd.SetContext(context.Background())
	err := enrichCmd.RunE(enrichCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "perplexity API key")
}
