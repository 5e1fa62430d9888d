package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig holds operator-tunable billing behavior. It is loaded
// from billing.yml and hot-reloaded on change.
type BillingConfig struct {
	// OverdueGraceDays is how many days past the due date a charge may
	// stay unpaid before the overdue sweep re-classifies it.
	OverdueGraceDays int `mapstructure:"overdueGraceDays"`
	// SweepInterval controls how often the overdue sweep runs.
	SweepInterval time.Duration `mapstructure:"sweepInterval"`
	// SweepBatchSize caps how many charges one sweep pass updates.
	SweepBatchSize int `mapstructure:"sweepBatchSize"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		OverdueGraceDays: 0,
		SweepInterval:    time.Hour,
		SweepBatchSize:   500,
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/rentflow/config") // Volume-mounted config
	v.AddConfigPath("/etc/rentflow")            // System config
	v.AddConfigPath(".")                        // Current directory (dev mode)

	v.SetEnvPrefix("RENTFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultBillingConfig()
		v.SetDefault("billing.overdueGraceDays", defaults.OverdueGraceDays)
		v.SetDefault("billing.sweepInterval", defaults.SweepInterval)
		v.SetDefault("billing.sweepBatchSize", defaults.SweepBatchSize)
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		updated = updated.withDefaults()
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfigHolder wraps a fixed config with no file watch.
// Intended for tests and one-shot tooling.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg.withDefaults())
	return holder
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func (c BillingConfig) withDefaults() BillingConfig {
	defaults := DefaultBillingConfig()
	if c.SweepInterval <= 0 {
		c.SweepInterval = defaults.SweepInterval
	}
	if c.SweepBatchSize <= 0 {
		c.SweepBatchSize = defaults.SweepBatchSize
	}
	return c
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.OverdueGraceDays < 0 {
		return errors.New("billing.overdueGraceDays cannot be negative")
	}
	return nil
}
