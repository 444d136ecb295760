package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "FLORA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	Admin   AdminConfig
	Metrics MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env      string `envconfig:"FLORA_APP_ENV" default:"dev"`
	Port     string `envconfig:"FLORA_APP_PORT" default:"3000"`
	LogLevel string `envconfig:"FLORA_LOG_LEVEL" default:"info"`
	// TimeZone is the shop's local zone, used for order calendar days and
	// "today" buckets in reports.
	TimeZone string `envconfig:"FLORA_TIME_ZONE" default:"Asia/Manila"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", a.TimeZone, err)
	}
	return loc, nil
}

type DBConfig struct {
	Driver string `envconfig:"FLORA_DB_DRIVER" default:"postgres"`
	DSN    string `envconfig:"FLORA_DB_DSN"`

	Host     string `envconfig:"FLORA_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"FLORA_DB_PORT" default:"5432"`
	User     string `envconfig:"FLORA_DB_USER"`
	Password string `envconfig:"FLORA_DB_PASSWORD"`
	Name     string `envconfig:"FLORA_DB_NAME"`
	SSLMode  string `envconfig:"FLORA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FLORA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FLORA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FLORA_DB_CONN_MAX_LIFETIME" default:"1h"`

	// AutoMigrate runs GORM AutoMigrate at startup instead of goose; meant for
	// sqlite and local development.
	AutoMigrate bool `envconfig:"FLORA_DB_AUTO_MIGRATE" default:"false"`
}

func (d *DBConfig) ensureDSN() error {
	switch d.Driver {
	case DriverSQLite:
		if d.DSN == "" {
			d.DSN = "file:flora.db?_foreign_keys=on"
		}
		return nil
	case DriverPostgres:
		if d.DSN != "" {
			return nil
		}
		if d.User == "" || d.Name == "" {
			return fmt.Errorf("FLORA_DB_DSN or FLORA_DB_USER and FLORA_DB_NAME are required")
		}
		d.DSN = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
		)
		return nil
	default:
		return fmt.Errorf("unsupported FLORA_DB_DRIVER %q", d.Driver)
	}
}

type JWTConfig struct {
	Secret string        `envconfig:"FLORA_JWT_SECRET" default:"change-me-in-production"`
	Issuer string        `envconfig:"FLORA_JWT_ISSUER" default:"go-flowershop-admin"`
	TTL    time.Duration `envconfig:"FLORA_JWT_TTL" default:"24h"`
}

// AdminConfig seeds the first superuser when no account with that email exists.
type AdminConfig struct {
	Username string `envconfig:"FLORA_ADMIN_USERNAME" default:"admin"`
	Email    string `envconfig:"FLORA_ADMIN_EMAIL" default:"admin@example.com"`
	Password string `envconfig:"FLORA_ADMIN_PASSWORD" default:"admin123"`
}

type MetricsConfig struct {
	Namespace string `envconfig:"FLORA_METRICS_NAMESPACE" default:"flora"`
}
