package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"partsource/internal/bootstrap/logging"
	"partsource/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Events   EventsConfig   `mapstructure:"events"`
	Sourcing SourcingConfig `mapstructure:"sourcing"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type EventsConfig struct {
	// NATSURL empty means events stay in-process.
	NATSURL string `mapstructure:"nats_url"`
}

// SourcingConfig carries the shop-tunable decision parameters.
type SourcingConfig struct {
	PriceWeight        float64       `mapstructure:"price_weight"`
	AvailabilityWeight float64       `mapstructure:"availability_weight"`
	LeadTimeWeight     float64       `mapstructure:"lead_time_weight"`
	QualityWeight      float64       `mapstructure:"quality_weight"`
	TieEpsilon         float64       `mapstructure:"tie_epsilon"`
	OverridePremiumPct float64       `mapstructure:"override_premium_pct"`
	AggregationWindow  time.Duration `mapstructure:"aggregation_window"`
	VendorTimeout      time.Duration `mapstructure:"vendor_timeout"`
	WorkerPoolSize     int           `mapstructure:"worker_pool_size"`
	// PreferredVendor pins a shop-level vendor override; empty disables it.
	PreferredVendor string              `mapstructure:"preferred_vendor"`
	Routing         []RoutingRuleConfig `mapstructure:"routing"`
}

// RoutingRuleConfig is one declarative vendor-routing rule; rules apply in
// order, first match wins.
type RoutingRuleConfig struct {
	CategoryPattern string   `mapstructure:"category_pattern"`
	BrandPreference string   `mapstructure:"brand_preference"`
	VendorIDs       []string `mapstructure:"vendor_ids"`
}

type CacheConfig struct {
	OutcomeCapacity int           `mapstructure:"outcome_capacity"`
	OutcomeTTL      time.Duration `mapstructure:"outcome_ttl"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Int("worker_pool_size", cfg.Sourcing.WorkerPoolSize),
	)

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}

	weightSum := cfg.Sourcing.PriceWeight +
		cfg.Sourcing.AvailabilityWeight +
		cfg.Sourcing.LeadTimeWeight +
		cfg.Sourcing.QualityWeight
	if math.Abs(weightSum-1.0) > 1e-9 {
		return fmt.Errorf("sourcing weights must sum to 1.0, got %v", weightSum)
	}

	if cfg.Sourcing.TieEpsilon < 0 {
		return errors.New("sourcing.tie_epsilon must not be negative")
	}
	if cfg.Sourcing.OverridePremiumPct < 0 {
		return errors.New("sourcing.override_premium_pct must not be negative")
	}
	if cfg.Sourcing.WorkerPoolSize < 1 {
		return errors.New("sourcing.worker_pool_size must be at least 1")
	}
	if cfg.Cache.OutcomeCapacity < 1 {
		return errors.New("cache.outcome_capacity must be at least 1")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "partsource")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/partsource.sqlite")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("events.nats_url", "")
	v.SetDefault("sourcing.price_weight", 0.40)
	v.SetDefault("sourcing.availability_weight", 0.20)
	v.SetDefault("sourcing.lead_time_weight", 0.20)
	v.SetDefault("sourcing.quality_weight", 0.20)
	v.SetDefault("sourcing.tie_epsilon", 0.5)
	v.SetDefault("sourcing.override_premium_pct", 10.0)
	v.SetDefault("sourcing.aggregation_window", 2*time.Minute)
	v.SetDefault("sourcing.vendor_timeout", 15*time.Second)
	v.SetDefault("sourcing.worker_pool_size", 8)
	v.SetDefault("cache.outcome_capacity", 512)
	v.SetDefault("cache.outcome_ttl", 10*time.Minute)
}
