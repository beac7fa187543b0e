// Package config reads the server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures the whole process configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	TrustedProxies []string

	CustomerAPI CustomerAPIConfig
	Registry    RegistryConfig
	Postcode    PostcodeConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
}

// CustomerAPIConfig points at the external customer collection.
type CustomerAPIConfig struct {
	URL     string
	Timeout time.Duration
}

// RegistryConfig holds the list and form policies.
type RegistryConfig struct {
	PageSize     int
	CPFMatch     string // exact | like
	RequireEmail bool
	MinAge       int
	SessionTTL   time.Duration
}

type PostcodeConfig struct {
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// RedisConfig is optional; an empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig is optional; empty Brokers keeps audit events in the log.
type KafkaConfig struct {
	Brokers         string
	AuditTopic      string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

// Defaults.
const (
	DefaultAddr           = ":8080"
	DefaultCustomerAPIURL = "http://localhost:3000/clientes"
	DefaultPostcodeURL    = "https://viacep.com.br/ws"
	DefaultPageSize       = 10
	DefaultMinAge         = 18
	DefaultAuditTopic     = "customer-audit"
)

// Load reads an optional .env file into the environment (existing variables
// win) and then builds the config.
func Load(envFiles ...string) (Server, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return Server{}, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var errs []string
	parseDuration := func(key string, def time.Duration) time.Duration {
		raw := os.Getenv(key)
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			errs = append(errs, key+" must be a positive duration")
			return def
		}
		return d
	}
	parseInt := func(key string, def int) int {
		raw := os.Getenv(key)
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs = append(errs, key+" must be a positive integer")
			return def
		}
		return n
	}
	parseBool := func(key string) bool {
		b, _ := strconv.ParseBool(os.Getenv(key)) //nolint:errcheck // unset or malformed means false
		return b
	}

	cpfMatch := strings.ToLower(getEnv("CPF_MATCH", "exact"))
	if cpfMatch != "exact" && cpfMatch != "like" {
		errs = append(errs, "CPF_MATCH must be exact or like")
		cpfMatch = "exact"
	}

	cfg := Server{
		Addr:           getEnv("REGISTRY_ADDR", DefaultAddr),
		Environment:    getEnv("ENVIRONMENT", "local"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
		CustomerAPI: CustomerAPIConfig{
			URL:     getEnv("CUSTOMER_API_URL", DefaultCustomerAPIURL),
			Timeout: parseDuration("CUSTOMER_API_TIMEOUT", 10*time.Second),
		},
		Registry: RegistryConfig{
			PageSize:     parseInt("PAGE_SIZE", DefaultPageSize),
			CPFMatch:     cpfMatch,
			RequireEmail: parseBool("REQUIRE_EMAIL"),
			MinAge:       parseInt("MIN_AGE", DefaultMinAge),
			SessionTTL:   parseDuration("SESSION_TTL", 30*time.Minute),
		},
		Postcode: PostcodeConfig{
			URL:      getEnv("POSTCODE_API_URL", DefaultPostcodeURL),
			Timeout:  parseDuration("POSTCODE_API_TIMEOUT", 5*time.Second),
			CacheTTL: parseDuration("POSTCODE_CACHE_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     parseInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:         os.Getenv("KAFKA_BROKERS"),
			AuditTopic:      getEnv("AUDIT_TOPIC", DefaultAuditTopic),
			Acks:            getEnv("KAFKA_ACKS", "all"),
			Retries:         parseInt("KAFKA_RETRIES", 3),
			DeliveryTimeout: parseDuration("KAFKA_DELIVERY_TIMEOUT", 30*time.Second),
		},
	}

	if len(errs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
