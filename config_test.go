package tiercache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devblac/sport-tracker-sub006/tier"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero default TTL", func(c *Config) { c.DefaultTTL = 0 }, true},
		{"negative top keys", func(c *Config) { c.TopKeys = -1 }, true},
		{"ephemeral zero size", func(c *Config) { c.Ephemeral.MaxSize = 0 }, true},
		{"ephemeral bad policy", func(c *Config) { c.Ephemeral.Policy = "random" }, true},
		{"disabled local ignores bad settings", func(c *Config) {
			c.Local.Enabled = false
			c.Local.MaxSize = -1
			c.Local.Policy = "bogus"
		}, false},
		{"enabled shared negative TTL", func(c *Config) {
			c.Shared.Enabled = true
			c.Shared.DefaultTTL = -time.Minute
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTierConfigTTLFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultTTL = 10 * time.Minute

	// A tier without its own TTL inherits the global default.
	tc := cfg.tierConfig(TierEphemeral, TierSettings{MaxSize: 1, Policy: tier.PolicyLRU})
	assert.Equal(t, 10*time.Minute, tc.DefaultTTL)

	// A tier with its own TTL keeps it.
	tc = cfg.tierConfig(TierLocal, TierSettings{MaxSize: 1, DefaultTTL: time.Hour, Policy: tier.PolicyLRU})
	assert.Equal(t, time.Hour, tc.DefaultTTL)
}

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.DefaultTTL)
	assert.True(t, cfg.Ephemeral.Enabled)
	assert.Equal(t, tier.PolicyLRU, cfg.Ephemeral.Policy)
	assert.True(t, cfg.Local.Enabled)
	assert.Equal(t, int64(50<<20), cfg.Local.MaxSize)
	assert.False(t, cfg.Shared.Enabled)
	assert.True(t, cfg.PrefetchEnabled)
	assert.Equal(t, 10, cfg.TopKeys)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("CACHE_DEFAULT_TTL", "90s")
	t.Setenv("CACHE_EPHEMERAL_MAX_SIZE", "1024")
	t.Setenv("CACHE_LOCAL_ENABLED", "false")
	t.Setenv("CACHE_SHARED_ENABLED", "true")
	t.Setenv("CACHE_SHARED_POLICY", "priority")
	t.Setenv("CACHE_TOP_KEYS", "3")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.DefaultTTL)
	assert.Equal(t, int64(1024), cfg.Ephemeral.MaxSize)
	assert.False(t, cfg.Local.Enabled)
	assert.True(t, cfg.Shared.Enabled)
	assert.Equal(t, tier.PolicyPriority, cfg.Shared.Policy)
	assert.Equal(t, 3, cfg.TopKeys)
}

func TestConfigFromEnvRejectsInvalid(t *testing.T) {
	t.Setenv("CACHE_EPHEMERAL_POLICY", "fifo")

	_, err := ConfigFromEnv()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
