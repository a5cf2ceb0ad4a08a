package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// Either URL or the discrete Name/User/Password triple must be provided.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"omitempty,url"`
	Host            string        `mapstructure:"host" validate:"required_without=URL"`
	Port            int           `mapstructure:"port" validate:"gt=0,lt=65536"`
	Name            string        `mapstructure:"name" validate:"required_without=URL"`
	User            string        `mapstructure:"user" validate:"required_without=URL"`
	Password        string        `mapstructure:"password" validate:"required_without=URL"`
	SSLMode         string        `mapstructure:"sslmode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gt=0"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start"`
}

// DSN returns the connection string. URL wins when set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	// JWTSecret is the HS256 signing key; at least 256 bits.
	JWTSecret  string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	ClockSkew  time.Duration `mapstructure:"clock_skew" validate:"gte=0"`
	BcryptCost int           `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
	// LoginRatePerSecond of 0 disables login rate limiting.
	LoginRatePerSecond float64 `mapstructure:"login_rate_per_second" validate:"gte=0"`
	LoginBurst         int     `mapstructure:"login_burst" validate:"gte=1"`
}

// MetricsConfig selects the OpenTelemetry metrics exporter.
type MetricsConfig struct {
	Exporter string `mapstructure:"exporter" validate:"oneof=prometheus stdout none"`
}

// SeedConfig controls bootstrap data. Passwords are only required when
// seeding is enabled.
type SeedConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	AdminPassword string `mapstructure:"admin_password" validate:"required_if=Enabled true"`
	UserPassword  string `mapstructure:"user_password" validate:"required_if=Enabled true"`
	SampleBooks   bool   `mapstructure:"sample_books"`
}

// String gives a loggable summary without secrets.
func (c *Config) String() string {
	return fmt.Sprintf("server.port=%d server.log_level=%s database.host=%s database.name=%s metrics.exporter=%s seed.enabled=%t",
		c.Server.Port, c.Server.LogLevel, c.Database.Host, c.Database.Name, c.Metrics.Exporter, c.Seed.Enabled)
}
