package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string   `env:"PORT,         default=8000"`
	Env         string   `env:"ENV,          default=development"`
	LogLevel    string   `env:"LOG_LEVEL,    default=info"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:5173"`
	BodyLimit   string   `env:"BODY_LIMIT,   default=16M"`

	// TrustedProxies lists the CIDRs allowed to set X-Forwarded-For. Empty
	// means the peer address is the client address.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	Tokens    TokenConfig
	Cookies   CookieConfig
	RateLimit RateLimitConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	MinIO     MinIOConfig

	CleanupWorkers int `env:"CLEANUP_WORKERS, default=4"`
}

type TokenConfig struct {
	AccessSecret  string        `env:"ACCESS_TOKEN_SECRET, required"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_EXPIRY,  default=15m"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET, required"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_EXPIRY, default=240h"`
}

type CookieConfig struct {
	Secure   bool   `env:"COOKIE_SECURE,   default=true"`
	SameSite string `env:"COOKIE_SAMESITE, default=strict"`
	Domain   string `env:"COOKIE_DOMAIN"`
}

type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS, default=10"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW,   default=1m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=videotube"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT,   default=localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY, default=minioadmin"`
	SecretKey string `env:"MINIO_SECRET_KEY, default=minioadmin"`
	Bucket    string `env:"MINIO_BUCKET,     default=videotube"`
	UseSSL    bool   `env:"MINIO_USE_SSL,    default=false"`
	PublicURL string `env:"MINIO_PUBLIC_URL"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// SameSiteMode converts the configured cookie policy to its http.SameSite value.
func (c CookieConfig) SameSiteMode() http.SameSite {
	mode, _ := ParseSameSite(c.SameSite)
	return mode
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom builds the configuration from lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Tokens.AccessTTL <= 0 || c.Tokens.RefreshTTL <= 0 {
		return errors.New("token expiry must be positive")
	}
	if c.Tokens.AccessSecret == c.Tokens.RefreshSecret {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	sameSite, err := ParseSameSite(c.Cookies.SameSite)
	if err != nil {
		return err
	}
	if sameSite == http.SameSiteNoneMode && !c.Cookies.Secure {
		return errors.New("COOKIE_SAMESITE=none requires COOKIE_SECURE=true")
	}
	if _, err := c.ProxyRanges(); err != nil {
		return err
	}
	if c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0 {
		return errors.New("rate limit must allow at least one request per window")
	}
	return nil
}

// ProxyRanges parses TrustedProxies.
func (c *Config) ProxyRanges() ([]*net.IPNet, error) {
	ranges := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, cidr := range c.TrustedProxies {
		_, n, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", cidr)
		}
		ranges = append(ranges, n)
	}
	return ranges, nil
}

// ParseSameSite accepts strict, lax or none (case-insensitive).
func ParseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return http.SameSiteStrictMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteStrictMode, fmt.Errorf("invalid COOKIE_SAMESITE %q", s)
	}
}
