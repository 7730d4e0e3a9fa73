package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Plan binds a subscription tier to its payment gateway price.
type Plan struct {
	Tier    string `mapstructure:"tier"`
	PriceID string `mapstructure:"priceId"`
}

// PlanConfig is the billing catalog: paid plans plus the free-tier limits
// consulted by the entitlement gate.
type PlanConfig struct {
	Plans                []Plan `mapstructure:"plans"`
	FreeGenerationLimit  int    `mapstructure:"freeGenerationLimit"`
	StandardHistoryLimit int    `mapstructure:"standardHistoryLimit"`
}

func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		Plans: []Plan{
			{Tier: "standard", PriceID: strings.TrimSpace(os.Getenv("STRIPE_STANDARD_PRICE_ID"))},
			{Tier: "premium", PriceID: strings.TrimSpace(os.Getenv("STRIPE_PREMIUM_PRICE_ID"))},
		},
		FreeGenerationLimit:  5,
		StandardHistoryLimit: 50,
	}
}

// PriceID resolves the gateway price reference for a tier. An empty or
// malformed price id is a configuration error, not a runtime condition.
func (c PlanConfig) PriceID(tier string) (string, error) {
	for _, plan := range c.Plans {
		if plan.Tier != tier {
			continue
		}
		price := strings.TrimSpace(plan.PriceID)
		if price == "" {
			return "", ErrPriceNotConfigured
		}
		if !strings.HasPrefix(price, "price_") {
			return "", ErrPriceMalformed
		}
		return price, nil
	}
	return "", ErrPriceNotConfigured
}

// TierForPrice maps a gateway price reference back to its tier.
func (c PlanConfig) TierForPrice(priceID string) (string, bool) {
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return "", false
	}
	for _, plan := range c.Plans {
		if strings.TrimSpace(plan.PriceID) == priceID {
			return plan.Tier, true
		}
	}
	return "", false
}

var (
	ErrPriceNotConfigured = errors.New("price_not_configured")
	ErrPriceMalformed     = errors.New("price_malformed")
)

// PlanConfigHolder serves the current catalog and hot-reloads it when the
// plans file changes on disk.
type PlanConfigHolder struct {
	current atomic.Value // holds PlanConfig
}

func NewPlanConfigHolder() (*PlanConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("plans")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/careercraft")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CAREERCRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPlanConfig()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		v.SetDefault("billing.plans", defaults.Plans)
		v.SetDefault("billing.freeGenerationLimit", defaults.FreeGenerationLimit)
		v.SetDefault("billing.standardHistoryLimit", defaults.StandardHistoryLimit)
	}

	var cfg PlanConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	applyPlanDefaults(&cfg, defaults)

	holder := &PlanConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PlanConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[plan-config] reload failed: %v", err)
			return
		}
		applyPlanDefaults(&updated, defaults)
		holder.current.Store(updated)
		log.Printf("[plan-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPlanConfigHolder serves a fixed catalog, for tests and for
// embedding without a config file.
func NewStaticPlanConfigHolder(cfg PlanConfig) *PlanConfigHolder {
	applyPlanDefaults(&cfg, DefaultPlanConfig())
	holder := &PlanConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PlanConfigHolder) Get() PlanConfig {
	return h.current.Load().(PlanConfig)
}

func applyPlanDefaults(cfg *PlanConfig, defaults PlanConfig) {
	if len(cfg.Plans) == 0 {
		cfg.Plans = defaults.Plans
	}
	if cfg.FreeGenerationLimit <= 0 {
		cfg.FreeGenerationLimit = defaults.FreeGenerationLimit
	}
	if cfg.StandardHistoryLimit <= 0 {
		cfg.StandardHistoryLimit = defaults.StandardHistoryLimit
	}
}
