package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        zapcore.Level

	StorageBackend string
	SQLitePath     string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	MongoURI       string
	MongoDBName    string
	CartTTL        time.Duration // 0 keeps carts forever

	PricingURL              string
	PricingTimeout          time.Duration
	BreakerFailureThreshold uint32
	BreakerOpenTimeout      time.Duration

	DefaultShipmentPlan string
	ClearCartOnOrder    bool
	BannerLimit         int

	KafkaBrokers []string // empty disables the order-placed consumer
	KafkaTopic   string
	KafkaGroupID string

	NATSURL            string // empty disables alert publishing
	AlertSubjectPrefix string
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second, &errs),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendSQLite)),
		SQLitePath:     getEnv("SQLITE_PATH", "./cart.db"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0, &errs),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "storefront"),
		CartTTL:        getEnvDuration("CART_TTL", 30*24*time.Hour, &errs),

		PricingURL:              getEnv("PRICING_API_URL", "http://localhost:3000/api"),
		PricingTimeout:          getEnvDuration("PRICING_TIMEOUT", 10*time.Second, &errs),
		BreakerFailureThreshold: uint32(getEnvInt("PRICING_BREAKER_FAILURES", 5, &errs)),
		BreakerOpenTimeout:      getEnvDuration("PRICING_BREAKER_OPEN_TIMEOUT", 30*time.Second, &errs),

		DefaultShipmentPlan: getEnv("DEFAULT_SHIPMENT_PLAN", ""),
		ClearCartOnOrder:    getEnvBool("CLEAR_CART_ON_ORDER", true, &errs),
		BannerLimit:         getEnvInt("ALERT_BANNER_LIMIT", 10, &errs),

		KafkaBrokers: getEnvList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_ORDER_TOPIC", "order-placed"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "storefront-cart"),

		NATSURL:            getEnv("NATS_URL", ""),
		AlertSubjectPrefix: getEnv("ALERT_SUBJECT_PREFIX", "storefront.alerts"),
	}

	level, err := zapcore.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	cfg.LogLevel = level

	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendSQLite, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("STORAGE_BACKEND: unknown backend %q", c.StorageBackend)
	}
	if c.PricingURL == "" {
		return errors.New("PRICING_API_URL is required")
	}
	if c.RedisDB < 0 || c.BannerLimit < 0 {
		return errors.New("REDIS_DB and ALERT_BANNER_LIMIT must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return d
}

func getEnvInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return b
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
