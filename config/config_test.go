package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SUBMIT_LIMIT_PER_DAY", "")
	t.Setenv("GO_ENV", "")
	t.Setenv("BLOB_SWEEP_INTERVAL_MINUTES", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 20, cfg.SubmitLimitPerDay)
	assert.Equal(t, 60, cfg.BlobSweepIntervalMinutes)
	assert.Equal(t, "maintenance", cfg.AMQPExchange)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GO_ENV", "production")
	t.Setenv("DRAFT_TTL_HOURS", "48")
	t.Setenv("SUBMIT_LIMIT_PER_DAY", "not-a-number")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 48, cfg.DraftTTLHours)
	assert.Equal(t, 20, cfg.SubmitLimitPerDay)
}
