package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(".env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout())
	assert.Equal(t, 2*time.Second, cfg.PollInterval())
	assert.Equal(t, 30*time.Minute, cfg.PendingTTL())
	assert.Equal(t, 60*time.Second, cfg.ResendCooldown())

	// The whole poll budget must fit inside the write timeout, or the
	// success page would be cut off mid-verification.
	pollBudget := cfg.PollInterval() * time.Duration(cfg.Checkout.PollMaxTries)
	assert.LessOrEqual(t, pollBudget, time.Duration(cfg.App.WriteTimeout)*time.Second)
}
