package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Name          string `yaml:"name" env:"APP_NAME"`
	Port          string `yaml:"port" env:"APP_PORT"`
	LogLevel      string `yaml:"log_level" env:"APP_LOG_LEVEL"`
	LogPretty     bool   `yaml:"log_pretty" env:"APP_LOG_PRETTY"`
	AllowedOrigin string `yaml:"allowed_origin" env:"CORS_ALLOWED_ORIGIN"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host" env:"DB_HOST"`
	Port            string        `yaml:"port" env:"DB_PORT"`
	User            string        `yaml:"user" env:"DB_USER"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	DBName          string        `yaml:"dbname" env:"DB_NAME"`
	SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE"`
	MaxConns        int32         `yaml:"max_conns" env:"DB_MAX_CONNS"`
	MinConns        int32         `yaml:"min_conns" env:"DB_MIN_CONNS"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"DB_MAX_CONN_LIFETIME"`
	Migrate         bool          `yaml:"migrate" env:"DB_MIGRATE"`
}

// DSN renders the keyword/value connection string understood by pgx.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL   time.Duration `yaml:"token_ttl" env:"JWT_TTL"`
	Issuer     string        `yaml:"issuer" env:"JWT_ISSUER"`
	BcryptCost int           `yaml:"bcrypt_cost" env:"BCRYPT_COST"`
}

type GeoConfig struct {
	BaseURL  string `yaml:"base_url" env:"GEO_BASE_URL"`
	Language string `yaml:"language" env:"GEO_LANGUAGE"`
}

type AstroConfig struct {
	BaseURL string `yaml:"base_url" env:"FREEASTRO_BASE_URL"`
	// APIKey may stay empty at startup; chart routes then answer with a configuration error.
	APIKey string `yaml:"api_key" env:"FREEASTRO_API_KEY"`
}

type HTTPClientConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"HTTP_CLIENT_TIMEOUT"`
}

type Config struct {
	App        AppConfig        `yaml:"app"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Auth       AuthConfig       `yaml:"auth"`
	Geo        GeoConfig        `yaml:"geo"`
	Astro      AstroConfig      `yaml:"astro"`
	HTTPClient HTTPClientConfig `yaml:"http_client"`
}

// LoadDefaults fills every field that has a sensible development value.
// JWTSecret has none and must come from the file or the environment.
func (c *Config) LoadDefaults() {
	c.App.Name = "vura"
	c.App.Port = "3000"
	c.App.LogLevel = "info"
	c.App.AllowedOrigin = "https://danielbendersantos.github.io"

	c.Postgres.Host = "localhost"
	c.Postgres.Port = "5432"
	c.Postgres.User = "postgres"
	c.Postgres.DBName = "vura"
	c.Postgres.SSLMode = "disable"
	c.Postgres.MaxConns = 10
	c.Postgres.MinConns = 1
	c.Postgres.MaxConnLifetime = time.Hour
	c.Postgres.Migrate = true

	c.Auth.TokenTTL = 7 * 24 * time.Hour
	c.Auth.Issuer = "vura"
	c.Auth.BcryptCost = 10

	c.Geo.BaseURL = "https://geocoding-api.open-meteo.com/v1/search"
	c.Geo.Language = "pt"

	c.Astro.BaseURL = "https://astro-api-1qnc.onrender.com/api/v1"
}

// Load builds the configuration in layers: defaults, then the optional YAML
// file at path, then variables from a .env file, then the process environment.
// Later layers only override what they actually set.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(c); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return nil
}

func (c *Config) Validate() error {
	switch {
	case c.Auth.JWTSecret == "":
		return errors.New("config: JWT_SECRET is required")
	case c.Auth.TokenTTL <= 0:
		return errors.New("config: JWT_TTL must be positive")
	case c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost:
		return fmt.Errorf("config: BCRYPT_COST must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
	case c.Postgres.Host == "":
		return errors.New("config: DB_HOST is required")
	case c.Postgres.User == "":
		return errors.New("config: DB_USER is required")
	case c.Postgres.DBName == "":
		return errors.New("config: DB_NAME is required")
	case c.App.Port == "":
		return errors.New("config: APP_PORT is required")
	}

	return nil
}
