package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration read from the environment.
type Config struct {
	Port                   string
	DatabaseURL            string
	RedisURL               string
	RouteStore             string
	ORSAPIKey              string
	ORSBaseURL             string
	RoutingTimeout         time.Duration
	CacheMaxEntries        int
	CacheDefaultTTL        time.Duration
	DefaultDailyDistanceKm float64
	DefaultFuelPrice       float64
	SessionSendTimeout     time.Duration
	LogLevel               string
	SeedPath               string
}

// Route store backends selectable with ROUTE_STORE.
const (
	RouteStoreAuto     = ""
	RouteStorePostgres = "postgres"
	RouteStoreRedis    = "redis"
	RouteStoreNone     = "none"
)

// LoadDotEnv loads a .env file into the environment when one exists.
// It reports whether a file was loaded.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Load reads the configuration from the environment, applying defaults.
func Load() (Config, error) {
	var errs []string

	cfg := Config{
		Port:        Get("PORT", "8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:    strings.TrimSpace(os.Getenv("REDIS_URL")),
		RouteStore:  strings.ToLower(strings.TrimSpace(os.Getenv("ROUTE_STORE"))),
		ORSAPIKey:   strings.TrimSpace(os.Getenv("ORS_API_KEY")),
		ORSBaseURL:  Get("ORS_BASE_URL", "https://api.openrouteservice.org"),
		LogLevel:    Get("LOG_LEVEL", "info"),
		SeedPath:    Get("SEED_PATH", "data/seeds/travelers.json"),
	}

	var err error
	if cfg.RoutingTimeout, err = GetDuration("ROUTING_TIMEOUT", 5*time.Second); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.CacheMaxEntries, err = GetInt("CACHE_MAX_ENTRIES", 1000); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.CacheDefaultTTL, err = GetDuration("CACHE_DEFAULT_TTL", time.Hour); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.DefaultDailyDistanceKm, err = GetFloat("DEFAULT_DAILY_DISTANCE_KM", 500); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.DefaultFuelPrice, err = GetFloat("DEFAULT_FUEL_PRICE", 1.60); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.SessionSendTimeout, err = GetDuration("SESSION_SEND_TIMEOUT", 5*time.Second); err != nil {
		errs = append(errs, err.Error())
	}

	switch cfg.RouteStore {
	case RouteStoreAuto, RouteStorePostgres, RouteStoreRedis, RouteStoreNone:
	default:
		errs = append(errs, fmt.Sprintf("ROUTE_STORE must be one of postgres, redis, none; got %q", cfg.RouteStore))
	}

	if cfg.CacheMaxEntries <= 0 {
		errs = append(errs, "CACHE_MAX_ENTRIES must be positive")
	}
	if cfg.DefaultDailyDistanceKm <= 0 {
		errs = append(errs, "DEFAULT_DAILY_DISTANCE_KM must be positive")
	}
	if cfg.DefaultFuelPrice < 0 {
		errs = append(errs, "DEFAULT_FUEL_PRICE must not be negative")
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("load config: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func GetFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return f, nil
}

// GetDuration parses values such as "5s" or "1h".
func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	if d <= 0 {
		return fallback, fmt.Errorf("%s: duration must be positive, got %q", key, v)
	}
	return d, nil
}
