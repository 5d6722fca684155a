package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
	Database     DatabaseConfig     `yaml:"database"`
	Store        StoreConfig        `yaml:"store"`
	KurrentDB    KurrentDBConfig    `yaml:"kurrentdb"`
	Auth         AuthConfig         `yaml:"auth"`
	Incident     IncidentConfig     `yaml:"incident"`
	Access       AccessConfig       `yaml:"access"`
	Notification NotificationConfig `yaml:"notification"`
	Coordination CoordinationConfig `yaml:"coordination"`
	Dashboard    DashboardConfig    `yaml:"dashboard"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port           int           `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	Env            string        `yaml:"env" env:"ENV" env-default:"development"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"60s"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type DatabaseConfig struct {
	Host         string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port         int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User         string        `yaml:"user" env:"DB_USER" env-default:"sigurado"`
	Password     string        `yaml:"password" env:"DB_PASSWORD" env-default:"sigurado"`
	Database     string        `yaml:"name" env:"DB_NAME" env-default:"sigurado"`
	SSLMode      string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	MaxConns     int32         `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"25"`
	MinConns     int32         `yaml:"min_conns" env:"DB_MIN_CONNS" env-default:"5"`
	QueryTimeout time.Duration `yaml:"query_timeout" env:"DB_QUERY_TIMEOUT" env-default:"5s"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// StoreConfig selects the entity store backend.
type StoreConfig struct {
	// Driver is "postgres" or "memory"
	Driver        string `yaml:"driver" env:"STORE_DRIVER" env-default:"postgres"`
	AutoMigrate   bool   `yaml:"auto_migrate" env:"STORE_AUTO_MIGRATE" env-default:"true"`
	SeedDistricts bool   `yaml:"seed_districts" env:"STORE_SEED_DISTRICTS" env-default:"true"`
}

// KurrentDBConfig holds configuration for the optional event stream mirror.
type KurrentDBConfig struct {
	Enabled      bool   `yaml:"enabled" env:"KURRENTDB_ENABLED" env-default:"false"`
	Host         string `yaml:"host" env:"KURRENTDB_HOST" env-default:"localhost"`
	Port         int    `yaml:"port" env:"KURRENTDB_PORT" env-default:"2113"`
	Insecure     bool   `yaml:"insecure" env:"KURRENTDB_INSECURE" env-default:"true"`
	Username     string `yaml:"username" env:"KURRENTDB_USERNAME"`
	Password     string `yaml:"password" env:"KURRENTDB_PASSWORD"`
	StreamPrefix string `yaml:"stream_prefix" env:"KURRENTDB_STREAM_PREFIX" env-default:"sigurado"`
}

type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"dev-secret-change-in-prod"`
	Issuer           string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"sigurado"`
	TokenTTL         time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"12h"`
	BcryptCost       int           `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST" env-default:"10"`
	RegistrableRoles []string      `yaml:"registrable_roles" env:"AUTH_REGISTRABLE_ROLES" env-separator:"," env-default:"citizen,responder"`
}

type IncidentConfig struct {
	// FallbackDistrictCode is used when neither the request nor the reporter names a district
	FallbackDistrictCode string `yaml:"fallback_district_code" env:"INCIDENT_FALLBACK_DISTRICT" env-default:"GLR-AGS"`
	// StrictOrdering rejects status moves backwards along reported..closed
	StrictOrdering bool `yaml:"strict_ordering" env:"INCIDENT_STRICT_ORDERING" env-default:"false"`
}

type AccessConfig struct {
	// RestrictCitizenIncidents limits citizens to incidents they reported
	RestrictCitizenIncidents bool `yaml:"restrict_citizen_incidents" env:"ACCESS_RESTRICT_CITIZEN_INCIDENTS" env-default:"false"`
}

type NotificationConfig struct {
	StatusUpdates bool `yaml:"status_updates" env:"NOTIFICATION_STATUS_UPDATES" env-default:"false"`
}

type CoordinationConfig struct {
	ReleaseOnClose bool `yaml:"release_on_close" env:"COORDINATION_RELEASE_ON_CLOSE" env-default:"true"`
}

type DashboardConfig struct {
	// RefreshSpec is a cron spec for the incident gauge refresh; empty disables it
	RefreshSpec string `yaml:"refresh_spec" env:"DASHBOARD_REFRESH_SPEC" env-default:"@every 1m"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"20"`
	Burst             int `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"40"`
}

// Load reads the YAML file at path (when given) and then applies environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Server.Env == "production" && c.Auth.JWTSecret == "dev-secret-change-in-prod" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost %d out of range", c.Auth.BcryptCost)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
