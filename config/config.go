package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	AppEnv string

	RedisURL     string
	GuestCartTTL time.Duration
	SessionIdle  time.Duration

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	// CatalogBackend is "postgres" or "dynamodb".
	CatalogBackend   string
	ProductsTable    string
	ProductCacheTTL  time.Duration
	JWTSecret        string
	CartTopicARN     string
	CheckoutTopicARN string
	IdentityQueueURL string
	AllowedOrigins   []string

	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string
	UseSecrets          bool
}

// SecretSource resolves JSON secrets by name. pkg/aws.SecretsClient satisfies it.
type SecretSource interface {
	GetSecretJSON(ctx context.Context, name string) (map[string]string, error)
	GetSecret(ctx context.Context, name string) (string, error)
}

const (
	SecretDBCredentials = "cart/DB_CREDENTIALS"
	SecretJWT           = "cart/JWT_SECRET"
)

// MinSessionIdle is the shortest SESSION_IDLE_TIMEOUT accepted.
const MinSessionIdle = time.Second

// Load reads the environment, after loading a .env file when one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:         getEnv("PORT", "8086"),
		AppEnv:       getEnv("APP_ENV", "development"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
		GuestCartTTL: getDuration("GUEST_CART_TTL", 7*24*time.Hour),
		SessionIdle:  getDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Colombo"),

		CatalogBackend:   strings.ToLower(getEnv("CATALOG_BACKEND", "postgres")),
		ProductsTable:    getEnv("DDB_TABLE_PRODUCTS", "Products"),
		ProductCacheTTL:  getDuration("PRODUCT_CACHE_TTL", 10*time.Minute),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		CartTopicARN:     os.Getenv("CART_SNS_TOPIC_ARN"),
		CheckoutTopicARN: os.Getenv("CHECKOUT_SNS_TOPIC_ARN"),
		IdentityQueueURL: os.Getenv("IDENTITY_SQS_QUEUE_URL"),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "CyberGear"),
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/cybergear/services"),
		UseSecrets:          os.Getenv("AWS_USE_SECRETS") == "true",
	}
}

// ApplySecrets overrides DB credentials and the JWT secret with the values
// stored in Secrets Manager. Missing secrets keep the environment values.
func (c *Config) ApplySecrets(ctx context.Context, sm SecretSource) {
	if m, err := sm.GetSecretJSON(ctx, SecretDBCredentials); err == nil {
		override(&c.PostgresUser, m["POSTGRES_USER"])
		override(&c.PostgresPassword, m["POSTGRES_PASSWORD"])
		override(&c.PostgresDB, m["POSTGRES_DB"])
		override(&c.PostgresHost, m["POSTGRES_HOST"])
		override(&c.PostgresPort, m["POSTGRES_PORT"])
	}
	if v, err := sm.GetSecret(ctx, SecretJWT); err == nil {
		override(&c.JWTSecret, strings.TrimSpace(v))
	}
}

// Validate reports configuration the service cannot start without.
func (c *Config) Validate() error {
	if c.PostgresUser == "" || c.PostgresPassword == "" || c.PostgresDB == "" || c.PostgresHost == "" {
		return fmt.Errorf("database config incomplete")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET not set")
	}
	if c.SessionIdle < MinSessionIdle {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be at least %s, got %s", MinSessionIdle, c.SessionIdle)
	}
	switch c.CatalogBackend {
	case "postgres", "dynamodb":
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", c.CatalogBackend)
	}
	return nil
}

// PostgresDSN builds the lib/pq style DSN gorm's postgres driver expects.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone,
	)
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getDuration accepts Go durations ("90m") or plain seconds ("3600").
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSuffix(strings.TrimSpace(s), "/"); s != "" {
			out = append(out, s)
		}
	}
	return out
}
