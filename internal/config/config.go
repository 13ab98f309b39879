package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/entremotivator/Syncup/pkg/config"
)

// Auth strategies accepted by AUTH_STRATEGY.
const (
	StrategyPurchase = "purchase"
	StrategyJWT      = "jwt"
	StrategyCustomer = "customer"
)

// Config holds all configuration for the syncup service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// WordPress / WooCommerce gateway
	WPBaseURL        string        `env:"WP_BASE_URL" envDefault:""`
	WCConsumerKey    string        `env:"WC_CONSUMER_KEY" envDefault:""`
	WCConsumerSecret string        `env:"WC_CONSUMER_SECRET" envDefault:""`
	TokenTimeout     time.Duration `env:"GATEWAY_TOKEN_TIMEOUT" envDefault:"10s"`
	OrdersTimeout    time.Duration `env:"GATEWAY_ORDERS_TIMEOUT" envDefault:"15s"`
	ValidateTimeout  time.Duration `env:"GATEWAY_VALIDATE_TIMEOUT" envDefault:"5s"`

	// Login behavior
	AuthStrategy string `env:"AUTH_STRATEGY" envDefault:"purchase"`

	// Usage quota
	QueryLimit int `env:"QUERY_LIMIT" envDefault:"30"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"syncup"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"syncup_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"syncup_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis
	RedisHost string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisDB   int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Session tokens
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	SessionExpiry time.Duration `env:"SESSION_EXPIRY" envDefault:"12h"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`

	// Tracing
	TracingEnabled bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint   string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSample    float64 `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load syncup config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	switch cfg.AuthStrategy {
	case StrategyPurchase, StrategyJWT, StrategyCustomer:
	default:
		return nil, fmt.Errorf("invalid AUTH_STRATEGY %q: must be one of purchase, jwt, customer", cfg.AuthStrategy)
	}

	if cfg.QueryLimit < 1 {
		return nil, fmt.Errorf("QUERY_LIMIT must be positive, got %d", cfg.QueryLimit)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == "change-this-to-a-secure-secret" {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
	}

	return cfg, nil
}

// GatewayConfigured reports whether the WordPress base URL is set. When it is
// not, gateway-backed operations degrade to empty results instead of failing.
func (c *Config) GatewayConfigured() bool {
	return c.WPBaseURL != ""
}

// StoreConfigured reports whether WooCommerce REST credentials are present.
func (c *Config) StoreConfigured() bool {
	return c.WCConsumerKey != "" && c.WCConsumerSecret != ""
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// RedisAddr returns the Redis host:port address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
