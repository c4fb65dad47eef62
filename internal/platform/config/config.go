// Package config loads process configuration from the environment so main
// stays lean. Each component receives its own explicit struct; nothing reads
// the environment after startup.
package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// Resolver captures the platform serving policy the URL resolver needs.
type Resolver struct {
	// UseSubdomain switches production serving to <slug>.<PublicDomain>.
	UseSubdomain bool
	// PublicDomain is the base domain for project subdomains.
	PublicDomain string
	// ProductionDomain is the shared fallback serving domain.
	ProductionDomain string
	// ExternalVersionDomain hosts pull-request preview builds.
	ExternalVersionDomain string
	// PublicDomainUsesHTTPS enforces https on platform-owned hostnames.
	PublicDomainUsesHTTPS bool
}

// Postgres captures project store configuration. An empty URL selects the
// in-memory store.
type Postgres struct {
	URL string
}

// Redis captures resolved-URL cache configuration. An empty URL disables
// the cache.
type Redis struct {
	URL          string
	CacheTTL     time.Duration
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Config is the process-wide configuration, read once at startup.
type Config struct {
	Server   Server
	Resolver Resolver
	Postgres Postgres
	Redis    Redis
}

// FromEnv builds the full configuration from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr: getEnv("DOCSHOST_ADDR", ":8080"),
		},
		Resolver: Resolver{
			UseSubdomain:          getBool("DOCSHOST_USE_SUBDOMAIN", false),
			PublicDomain:          os.Getenv("DOCSHOST_PUBLIC_DOMAIN"),
			ProductionDomain:      getEnv("DOCSHOST_PRODUCTION_DOMAIN", "localhost:8000"),
			ExternalVersionDomain: getEnv("DOCSHOST_EXTERNAL_VERSION_DOMAIN", "external-builds.localhost"),
			PublicDomainUsesHTTPS: getBool("DOCSHOST_PUBLIC_DOMAIN_HTTPS", false),
		},
		Postgres: Postgres{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			CacheTTL:     getDuration("DOCSHOST_RESOLVE_CACHE_TTL", 5*time.Minute),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
