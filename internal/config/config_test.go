package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("DATABASE_URL", "postgresql://u:p@localhost:5432/auth")
}

func TestParse_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "postgres://u:p@localhost:5432/auth", cfg.DatabaseURL)
	assert.Equal(t, "test-secret", cfg.SecretKey)
	assert.Equal(t, "HS256", cfg.Algorithm)
	assert.Equal(t, 60*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, RegistrationAdmin, cfg.RegistrationPolicy)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
}

func TestParse_SecretRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/auth")
	t.Setenv("SECRET_KEY", "")
	os.Unsetenv("SECRET_KEY")

	_, err := Parse()
	require.Error(t, err)
}

func TestParse_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ALGORITHM", "hs512")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("REGISTRATION_POLICY", "Open")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("BOOTSTRAP_ADMIN_USERNAME", "root")
	t.Setenv("BOOTSTRAP_ADMIN_EMAIL", "root@example.com")
	t.Setenv("BOOTSTRAP_ADMIN_PASSWORD", "changeme")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "HS512", cfg.Algorithm)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, RegistrationOpen, cfg.RegistrationPolicy)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, Admin{Username: "root", Email: "root@example.com", Password: "changeme"}, cfg.BootstrapAdmin)
}

func TestParse_PGFallback(t *testing.T) {
	t.Setenv("SECRET_KEY", "s")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PGHOST", "db")
	t.Setenv("PGUSER", "app")
	t.Setenv("PGPASSWORD", "pw")
	t.Setenv("PGDATABASE", "auth")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:pw@db:5432/auth?sslmode=disable", cfg.DatabaseURL)
}

func TestParse_MemoryStoreNeedsNoDatabase(t *testing.T) {
	t.Setenv("SECRET_KEY", "s")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PGHOST", "")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestValidate_Rejects(t *testing.T) {
	valid := Config{
		StoreDriver:        StoreDriverMemory,
		Algorithm:          "HS256",
		AccessTokenTTL:     time.Hour,
		BcryptCost:         10,
		RegistrationPolicy: RegistrationAdmin,
	}
	require.NoError(t, valid.Validate())

	tests := map[string]func(c *Config){
		"postgres without dsn": func(c *Config) { c.StoreDriver = StoreDriverPostgres },
		"unknown driver":       func(c *Config) { c.StoreDriver = "mysql" },
		"asymmetric alg":       func(c *Config) { c.Algorithm = "RS256" },
		"zero ttl":             func(c *Config) { c.AccessTokenTTL = 0 },
		"cost too low":         func(c *Config) { c.BcryptCost = 2 },
		"cost too high":        func(c *Config) { c.BcryptCost = 40 },
		"unknown policy":       func(c *Config) { c.RegistrationPolicy = "invite" },
		"partial admin":        func(c *Config) { c.BootstrapAdmin = Admin{Username: "root"} },
	}
	for name, mutate := range tests {
		c := valid
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SECRET_KEY=from-dotenv\nSTORE_DRIVER=memory\nACCESS_TOKEN_TTL=5m\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// godotenv never overrides existing variables, so register cleanups for the keys it sets
	for _, key := range []string{"SECRET_KEY", "STORE_DRIVER", "ACCESS_TOKEN_TTL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.SecretKey)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
}
