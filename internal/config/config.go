package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort        string        `mapstructure:"HTTP_PORT"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	MaxBodyBytes    int64         `mapstructure:"MAX_REQUEST_BODY_SIZE"`

	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         int    `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`

	CatalogDBPath         string `mapstructure:"CATALOG_DB_PATH"`
	CatalogMigrationsPath string `mapstructure:"CATALOG_MIGRATIONS_PATH"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	CartCacheTTL  time.Duration `mapstructure:"CART_CACHE_TTL"`

	KafkaBrokers     string        `mapstructure:"KAFKA_BROKERS"`
	OrderEventsTopic string        `mapstructure:"ORDER_EVENTS_TOPIC"`
	OutboxPollPeriod time.Duration `mapstructure:"OUTBOX_POLL_PERIOD"`
	CartCacheGroupID string        `mapstructure:"CART_CACHE_GROUP_ID"`

	BreakerFailureThreshold uint32        `mapstructure:"BREAKER_FAILURE_THRESHOLD"`
	BreakerOpenTimeout      time.Duration `mapstructure:"BREAKER_OPEN_TIMEOUT"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	MinorUnitPlaces int32  `mapstructure:"PRICING_MINOR_UNIT_PLACES"`
	MaxLineQuantity int    `mapstructure:"MAX_LINE_QUANTITY"`
	ShippingFee     string `mapstructure:"SHIPPING_FEE"`

	shippingFee decimal.Decimal
}

var defaults = map[string]any{
	"HTTP_PORT":             "8080",
	"REQUEST_TIMEOUT":       30 * time.Second,
	"SHUTDOWN_TIMEOUT":      10 * time.Second,
	"MAX_REQUEST_BODY_SIZE": int64(1 << 20),

	"DB_HOST":         "localhost",
	"DB_PORT":         5432,
	"DB_USER":         "postgres",
	"DB_PASSWORD":     "postgres",
	"DB_NAME":         "food_order",
	"MIGRATIONS_PATH": "internal/repository/migrations",

	"CATALOG_DB_PATH":         "catalog.db",
	"CATALOG_MIGRATIONS_PATH": "internal/catalog/migrations",

	"REDIS_ADDR":     "localhost:6379",
	"REDIS_PASSWORD": "",
	"CART_CACHE_TTL": 15 * time.Minute,

	"KAFKA_BROKERS":       "localhost:9092",
	"ORDER_EVENTS_TOPIC":  "order-events",
	"OUTBOX_POLL_PERIOD":  time.Second,
	"CART_CACHE_GROUP_ID": "storefront-cart-cache",

	"BREAKER_FAILURE_THRESHOLD": 5,
	"BREAKER_OPEN_TIMEOUT":      30 * time.Second,

	"LOG_LEVEL":  "info",
	"LOG_FORMAT": "json",

	"PRICING_MINOR_UNIT_PLACES": 0,
	"MAX_LINE_QUANTITY":         10,
	"SHIPPING_FEE":              "30000",
}

// Load reads an optional .env file, then environment variables, falling back to defaults.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxLineQuantity < 1 {
		return fmt.Errorf("MAX_LINE_QUANTITY must be positive, got %d", c.MaxLineQuantity)
	}
	if c.MinorUnitPlaces < 0 {
		return fmt.Errorf("PRICING_MINOR_UNIT_PLACES must not be negative, got %d", c.MinorUnitPlaces)
	}
	fee, err := decimal.NewFromString(c.ShippingFee)
	if err != nil {
		return fmt.Errorf("SHIPPING_FEE is not a number: %w", err)
	}
	if fee.IsNegative() {
		return fmt.Errorf("SHIPPING_FEE must not be negative, got %s", fee)
	}
	c.shippingFee = fee
	return nil
}

// ShippingFeeAmount is the flat fee charged on storefront delivery orders.
func (c *Config) ShippingFeeAmount() decimal.Decimal {
	return c.shippingFee
}

// Brokers splits KAFKA_BROKERS on commas.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
