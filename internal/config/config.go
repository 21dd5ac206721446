package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"relief-grid-go/pkg/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPPort    string
	Env         string
	CORSOrigins []string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Feeds       FeedsConfig
	Donations   DonationsConfig
	Export      ExportConfig
}

// HTTPConfig.TrustedProxies lists the peers whose forwarded-for headers are
// believed. Everyone else is identified by the socket address.
type HTTPConfig struct {
	TrustedProxies []netip.Prefix
}

type DBConfig struct {
	Driver          string
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret     string
	SkipAuth      bool
	MockActorID   string
	MockActorRole string
}

type RateLimitConfig struct {
	Enabled   bool
	Window    time.Duration
	Limit     int
	RedisAddr string
	RedisDB   int
}

type FeedsConfig struct {
	CacheTTL time.Duration
}

type DonationsConfig struct {
	// ApplyPolicy is "creation" or "delivery".
	ApplyPolicy string
}

type ExportConfig struct {
	GCSBucket string
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	proxies, err := parsePrefixes(getEnvList("HTTP_TRUSTED_PROXIES", nil))
	if err != nil {
		return Config{}, fmt.Errorf("HTTP_TRUSTED_PROXIES: %w", err)
	}

	cfg := Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		HTTP:        HTTPConfig{TrustedProxies: proxies},
		DB: DBConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "relief_grid"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("AUTH_JWT_SECRET", ""),
			SkipAuth:      getEnvBool("AUTH_SKIP", false),
			MockActorID:   getEnv("AUTH_MOCK_ACTOR_ID", "00000000-0000-0000-0000-000000000001"),
			MockActorRole: getEnv("AUTH_MOCK_ACTOR_ROLE", "admin"),
		},
		RateLimit: RateLimitConfig{
			Enabled:   getEnvBool("RATE_LIMIT_ENABLED", true),
			Window:    getEnvDuration("RATE_LIMIT_WINDOW", 10*time.Minute),
			Limit:     getEnvInt("RATE_LIMIT_LIMIT", 1),
			RedisAddr: getEnv("RATE_LIMIT_REDIS_ADDR", ""),
			RedisDB:   getEnvInt("RATE_LIMIT_REDIS_DB", 0),
		},
		Feeds: FeedsConfig{
			CacheTTL: getEnvDuration("FEEDS_CACHE_TTL", 15*time.Second),
		},
		Donations: DonationsConfig{
			ApplyPolicy: strings.ToLower(getEnv("DONATION_APPLY_POLICY", "creation")),
		},
		Export: ExportConfig{
			GCSBucket: getEnv("EXPORT_GCS_BUCKET", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	switch c.Donations.ApplyPolicy {
	case "creation", "delivery":
	default:
		return fmt.Errorf("unsupported DONATION_APPLY_POLICY %q", c.Donations.ApplyPolicy)
	}
	if !c.Auth.SkipAuth && c.Auth.JWTSecret == "" && c.Env != "development" {
		return fmt.Errorf("AUTH_JWT_SECRET is required outside development")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

// parsePrefixes accepts CIDR ranges and bare addresses.
func parsePrefixes(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, value := range values {
		if !strings.Contains(value, "/") {
			addr, err := netip.ParseAddr(value)
			if err != nil {
				return nil, err
			}
			addr = addr.Unmap()
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(value)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes, nil
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Driver == DriverSQLite {
		return "file:" + c.Name + ".db?_foreign_keys=on"
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
