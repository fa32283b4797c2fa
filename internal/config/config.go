package config

import (
	"errors"
	"fmt"
	"net"
	neturl "net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	// EnvLocal, EnvDev and EnvProd select the logging profile.
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	// StoreDriverPostgres and StoreDriverMemory select the user store.
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	// RegistrationAdmin requires an admin token for every user creation.
	RegistrationAdmin = "admin"
	// RegistrationOpen lets anonymous callers create plain user accounts.
	RegistrationOpen = "open"
)

// Config centralises runtime configuration. It is loaded once at startup and
// never mutated afterwards.
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"local"`
	HTTPPort    string `env:"HTTP_PORT"`
	Port        string `env:"PORT" envDefault:"8080"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`

	SecretKey      string        `env:"SECRET_KEY,required,notEmpty,unset"`
	Algorithm      string        `env:"ALGORITHM" envDefault:"HS256"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"60m"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`

	RegistrationPolicy string `env:"REGISTRATION_POLICY" envDefault:"admin"`
	BootstrapAdmin     Admin  `envPrefix:"BOOTSTRAP_ADMIN_"`

	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout    time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// Admin holds the optional administrator seeded at startup.
type Admin struct {
	Username string `env:"USERNAME"`
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD,unset"`
}

// pgEnv holds the discrete PG* variables used when DATABASE_URL is absent.
type pgEnv struct {
	Host     string `env:"PGHOST"`
	Port     string `env:"PGPORT" envDefault:"5432"`
	User     string `env:"PGUSER"`
	Password string `env:"PGPASSWORD"`
	Database string `env:"PGDATABASE"`
	SSLMode  string `env:"PGSSLMODE" envDefault:"disable"`
}

// Load reads configuration from the environment, after merging an optional .env file.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the current process environment.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.HTTPPort == "" {
		cfg.HTTPPort = cfg.Port
	}
	cfg.Algorithm = strings.ToUpper(strings.TrimSpace(cfg.Algorithm))
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.RegistrationPolicy = strings.ToLower(strings.TrimSpace(cfg.RegistrationPolicy))
	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)

	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		var pg pgEnv
		if err := env.Parse(&pg); err != nil {
			return Config{}, fmt.Errorf("parse env: %w", err)
		}
		cfg.DatabaseURL = pg.dsn()
	}
	cfg.DatabaseURL = normalisePostgresScheme(cfg.DatabaseURL)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the process cannot start with.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database configuration missing: provide DATABASE_URL or PG* env vars")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported ALGORITHM %q: use HS256, HS384 or HS512", c.Algorithm)
	}

	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	switch c.RegistrationPolicy {
	case RegistrationAdmin, RegistrationOpen:
	default:
		return fmt.Errorf("unsupported REGISTRATION_POLICY %q", c.RegistrationPolicy)
	}

	if c.BootstrapAdmin.Username != "" && (c.BootstrapAdmin.Email == "" || c.BootstrapAdmin.Password == "") {
		return fmt.Errorf("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD are required with BOOTSTRAP_ADMIN_USERNAME")
	}
	return nil
}

func (p pgEnv) dsn() string {
	if p.Host == "" || p.User == "" {
		return ""
	}
	database := p.Database
	if database == "" {
		database = p.User
	}

	dsn := &neturl.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(p.Host, p.Port),
		Path:   "/" + database,
		User:   neturl.User(p.User),
	}
	if p.Password != "" {
		dsn.User = neturl.UserPassword(p.User, p.Password)
	}
	query := dsn.Query()
	if p.SSLMode != "" {
		query.Set("sslmode", p.SSLMode)
	}
	dsn.RawQuery = query.Encode()
	return dsn.String()
}

func normalisePostgresScheme(url string) string {
	url = strings.TrimSpace(url)
	if strings.HasPrefix(url, "postgresql://") {
		return "postgres://" + strings.TrimPrefix(url, "postgresql://")
	}
	return url
}

func trimAll(values []string) []string {
	parts := []string{}
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return []string{"*"}
	}
	return parts
}
