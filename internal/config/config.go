// Package config holds the settings every command and server component is
// built from. A Config is assembled once at startup and passed down
// explicitly; nothing reads it from package state.
//
// Sources are applied in order, later ones winning: built-in defaults, an
// optional YAML file, OMS_* environment variables (plus DATABASE_URL), and
// finally command-line flags applied by the caller before Validate.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Config is the complete runtime configuration.
type Config struct {
	Database    Database    `yaml:"database" json:"database"`
	WooCommerce WooCommerce `yaml:"woocommerce" json:"woocommerce"`
	Courier     Courier     `yaml:"courier" json:"courier"`
	Server      Server      `yaml:"server" json:"server"`
	LogLevel    string      `yaml:"log_level" json:"log_level"`
}

// Database selects the persistence driver.
type Database struct {
	Driver string `yaml:"driver" json:"driver"` // "sqlite3" | "postgres"
	DSN    string `yaml:"dsn" json:"dsn"`
}

// WooCommerce holds storefront credentials.
type WooCommerce struct {
	URL            string `yaml:"url" json:"url"`
	ConsumerKey    string `yaml:"consumer_key" json:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret" json:"consumer_secret"`
	WebhookSecret  string `yaml:"webhook_secret" json:"webhook_secret"`
}

// Courier holds the delivery partner settings.
type Courier struct {
	BaseURL      string `yaml:"base_url" json:"base_url"`
	APIKey       string `yaml:"api_key" json:"api_key"`
	FromBranch   string `yaml:"from_branch" json:"from_branch"`
	DeliveryFrom string `yaml:"delivery_from" json:"delivery_from"`
}

// Server configures the webhook listener.
type Server struct {
	Addr           string        `yaml:"addr" json:"addr"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst" json:"rate_limit_burst"`
	RedisAddr      string        `yaml:"redis_addr" json:"redis_addr"` // empty: in-memory delivery guard
	DeliveryTTL    time.Duration `yaml:"delivery_ttl" json:"delivery_ttl"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Database: Database{Driver: "sqlite3", DSN: "oms.db"},
		Courier: Courier{
			FromBranch:   "POKHARA",
			DeliveryFrom: "Pokhara",
		},
		Server: Server{
			Addr:           ":8080",
			RateLimitRPS:   5,
			RateLimitBurst: 10,
			DeliveryTTL:    24 * time.Hour,
		},
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment seen through getenv. The result is not
// validated; call Validate after applying flag overrides.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := map[string]*string{
		"OMS_DATABASE_DRIVER":             &c.Database.Driver,
		"OMS_DATABASE_DSN":                &c.Database.DSN,
		"OMS_WOOCOMMERCE_URL":             &c.WooCommerce.URL,
		"OMS_WOOCOMMERCE_CONSUMER_KEY":    &c.WooCommerce.ConsumerKey,
		"OMS_WOOCOMMERCE_CONSUMER_SECRET": &c.WooCommerce.ConsumerSecret,
		"OMS_WOOCOMMERCE_WEBHOOK_SECRET":  &c.WooCommerce.WebhookSecret,
		"OMS_COURIER_BASE_URL":            &c.Courier.BaseURL,
		"OMS_COURIER_API_KEY":             &c.Courier.APIKey,
		"OMS_COURIER_FROM_BRANCH":         &c.Courier.FromBranch,
		"OMS_COURIER_DELIVERY_FROM":       &c.Courier.DeliveryFrom,
		"OMS_SERVER_ADDR":                 &c.Server.Addr,
		"OMS_SERVER_REDIS_ADDR":           &c.Server.RedisAddr,
		"OMS_LOG_LEVEL":                   &c.LogLevel,
	}
	for key, dst := range str {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	if v := getenv("DATABASE_URL"); v != "" && getenv("OMS_DATABASE_DSN") == "" {
		c.Database.DSN = v
		if strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://") {
			c.Database.Driver = "postgres"
		}
	}

	if v := getenv("OMS_SERVER_RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("OMS_SERVER_RATE_LIMIT_RPS: %w", err)
		}
		c.Server.RateLimitRPS = rps
	}
	if v := getenv("OMS_SERVER_RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OMS_SERVER_RATE_LIMIT_BURST: %w", err)
		}
		c.Server.RateLimitBurst = burst
	}
	if v := getenv("OMS_SERVER_DELIVERY_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("OMS_SERVER_DELIVERY_TTL: %w", err)
		}
		c.Server.DeliveryTTL = ttl
	}
	return nil
}

// Validate checks the configuration against the embedded schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := schema.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RequireWooCommerce reports the first storefront setting a REST pull needs
// but lacks.
func (c *Config) RequireWooCommerce() error {
	switch {
	case c.WooCommerce.URL == "":
		return errors.New("woocommerce.url not set")
	case c.WooCommerce.ConsumerKey == "":
		return errors.New("woocommerce.consumer_key not set")
	case c.WooCommerce.ConsumerSecret == "":
		return errors.New("woocommerce.consumer_secret not set")
	}
	return nil
}

// RequireCourier reports the first courier setting shipping needs but lacks.
func (c *Config) RequireCourier() error {
	switch {
	case c.Courier.BaseURL == "":
		return errors.New("courier.base_url not set")
	case c.Courier.APIKey == "":
		return errors.New("courier.api_key not set")
	}
	return nil
}

// Level maps LogLevel onto a slog level. Unknown values mean info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
