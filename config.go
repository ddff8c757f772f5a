package tiercache

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/devblac/sport-tracker-sub006/tier"
)

// Tier names, in probe order (fastest first).
const (
	TierEphemeral = "ephemeral"
	TierLocal     = "local"
	TierShared    = "shared"
)

// TierSettings declares one tier's static properties.
type TierSettings struct {
	// Enabled toggles the tier. The ephemeral tier ignores this and is
	// always active.
	Enabled bool
	// MaxSize is the capacity budget in bytes.
	MaxSize int64
	// DefaultTTL applies to entries written without an explicit TTL.
	// Zero falls back to the global default.
	DefaultTTL time.Duration
	// Policy selects the eviction ordering when the tier is over budget.
	Policy tier.EvictionPolicy
}

// Config is the static cache configuration. There is no hot-reload: the
// Manager captures it at construction.
type Config struct {
	// DefaultTTL applies when neither the write nor the tier declares one.
	DefaultTTL time.Duration

	Ephemeral TierSettings
	Local     TierSettings
	Shared    TierSettings

	// LocalDir is the directory backing the persistent-local tier. Ignored
	// when a local store is injected via WithLocalStore.
	LocalDir string

	// OptimizationInterval is the period of the background optimize pass.
	// Zero disables the periodic pass; Optimize stays callable on demand.
	OptimizationInterval time.Duration

	// PrefetchEnabled toggles the Prefetch operation.
	PrefetchEnabled bool

	// TopKeys is how many keys the performance report ranks by access count.
	TopKeys int
}

// DefaultConfig returns a configuration suitable for a client device:
// a small fast memory tier, a quota-bounded durable tier, and a disabled
// shared tier (enabled explicitly when a backend is wired in).
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 5 * time.Minute,
		Ephemeral: TierSettings{
			Enabled: true,
			MaxSize: 10 << 20, // 10 MiB
			Policy:  tier.PolicyLRU,
		},
		Local: TierSettings{
			Enabled:    true,
			MaxSize:    50 << 20, // 50 MiB
			DefaultTTL: time.Hour,
			Policy:     tier.PolicyLFU,
		},
		Shared: TierSettings{
			Enabled:    false,
			MaxSize:    200 << 20, // 200 MiB
			DefaultTTL: 24 * time.Hour,
			Policy:     tier.PolicyTTL,
		},
		LocalDir:             "cache",
		OptimizationInterval: 5 * time.Minute,
		PrefetchEnabled:      true,
		TopKeys:              10,
	}
}

func (c Config) validate() error {
	if c.DefaultTTL <= 0 {
		return fmt.Errorf("%w: default TTL must be positive", ErrInvalidConfig)
	}
	if c.TopKeys < 0 {
		return fmt.Errorf("%w: top keys must not be negative", ErrInvalidConfig)
	}

	check := func(name string, ts TierSettings, always bool) error {
		if !ts.Enabled && !always {
			return nil
		}
		if ts.MaxSize <= 0 {
			return fmt.Errorf("%w: tier %s: max size must be positive", ErrInvalidConfig, name)
		}
		if ts.DefaultTTL < 0 {
			return fmt.Errorf("%w: tier %s: default TTL must not be negative", ErrInvalidConfig, name)
		}
		if err := ts.Policy.Validate(); err != nil {
			return fmt.Errorf("%w: tier %s: %v", ErrInvalidConfig, name, err)
		}
		return nil
	}

	if err := check(TierEphemeral, c.Ephemeral, true); err != nil {
		return err
	}
	if err := check(TierLocal, c.Local, false); err != nil {
		return err
	}
	return check(TierShared, c.Shared, false)
}

// tierConfig lowers the settings for one tier, applying TTL fallback.
func (c Config) tierConfig(name string, ts TierSettings) tier.Config {
	ttl := ts.DefaultTTL
	if ttl == 0 {
		ttl = c.DefaultTTL
	}
	return tier.Config{
		Name:       name,
		MaxSize:    ts.MaxSize,
		DefaultTTL: ttl,
		Policy:     ts.Policy,
	}
}

// envConfig mirrors Config flat for environment parsing.
type envConfig struct {
	DefaultTTL time.Duration `env:"CACHE_DEFAULT_TTL" envDefault:"5m"`

	EphemeralMaxSize int64         `env:"CACHE_EPHEMERAL_MAX_SIZE" envDefault:"10485760"`
	EphemeralTTL     time.Duration `env:"CACHE_EPHEMERAL_TTL"`
	EphemeralPolicy  string        `env:"CACHE_EPHEMERAL_POLICY" envDefault:"lru"`

	LocalEnabled bool          `env:"CACHE_LOCAL_ENABLED" envDefault:"true"`
	LocalMaxSize int64         `env:"CACHE_LOCAL_MAX_SIZE" envDefault:"52428800"`
	LocalTTL     time.Duration `env:"CACHE_LOCAL_TTL" envDefault:"1h"`
	LocalPolicy  string        `env:"CACHE_LOCAL_POLICY" envDefault:"lfu"`
	LocalDir     string        `env:"CACHE_LOCAL_DIR" envDefault:"cache"`

	SharedEnabled bool          `env:"CACHE_SHARED_ENABLED" envDefault:"false"`
	SharedMaxSize int64         `env:"CACHE_SHARED_MAX_SIZE" envDefault:"209715200"`
	SharedTTL     time.Duration `env:"CACHE_SHARED_TTL" envDefault:"24h"`
	SharedPolicy  string        `env:"CACHE_SHARED_POLICY" envDefault:"ttl"`

	OptimizationInterval time.Duration `env:"CACHE_OPTIMIZATION_INTERVAL" envDefault:"5m"`
	PrefetchEnabled      bool          `env:"CACHE_PREFETCH_ENABLED" envDefault:"true"`
	TopKeys              int           `env:"CACHE_TOP_KEYS" envDefault:"10"`
}

// ConfigFromEnv builds a Config from CACHE_* environment variables,
// falling back to the defaults of DefaultConfig.
func ConfigFromEnv() (Config, error) {
	ec, err := env.ParseAs[envConfig]()
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := Config{
		DefaultTTL: ec.DefaultTTL,
		Ephemeral: TierSettings{
			Enabled:    true,
			MaxSize:    ec.EphemeralMaxSize,
			DefaultTTL: ec.EphemeralTTL,
			Policy:     tier.EvictionPolicy(ec.EphemeralPolicy),
		},
		Local: TierSettings{
			Enabled:    ec.LocalEnabled,
			MaxSize:    ec.LocalMaxSize,
			DefaultTTL: ec.LocalTTL,
			Policy:     tier.EvictionPolicy(ec.LocalPolicy),
		},
		Shared: TierSettings{
			Enabled:    ec.SharedEnabled,
			MaxSize:    ec.SharedMaxSize,
			DefaultTTL: ec.SharedTTL,
			Policy:     tier.EvictionPolicy(ec.SharedPolicy),
		},
		LocalDir:             ec.LocalDir,
		OptimizationInterval: ec.OptimizationInterval,
		PrefetchEnabled:      ec.PrefetchEnabled,
		TopKeys:              ec.TopKeys,
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
