package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/damoang/angple-memo/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration loaded from configs/config.<env>.yaml
// and overridden by environment variables.
type Config struct {
	Env        string           `yaml:"env"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Identity   IdentityConfig   `yaml:"identity"`
	Session    SessionConfig    `yaml:"session"`
	Invitation InvitationConfig `yaml:"invitation"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port            int `yaml:"port"`
	ShutdownTimeout int `yaml:"shutdown_timeout"` // seconds
}

// DatabaseConfig database settings
type DatabaseConfig struct {
	Driver          string `yaml:"driver"` // mysql | sqlite
	DSN             string `yaml:"dsn"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Name            string `yaml:"name"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

// GetDSN returns the configured DSN, building a MySQL DSN from parts when empty.
func (d DatabaseConfig) GetDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Driver == "sqlite" {
		return "memo.db"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// RedisConfig redis settings; an empty host disables redis
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// Enabled reports whether a redis host is configured
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// IdentityConfig third-party identity provider settings
type IdentityConfig struct {
	CandidateHosts []string `yaml:"candidate_hosts"`
	APIKey         string   `yaml:"api_key"`
	JWTSecret      string   `yaml:"jwt_secret"` // optional; when set provider tokens are HS256-verified
	Timeout        int      `yaml:"timeout"`    // seconds per attempt
	Retries        int      `yaml:"retries"`
	CacheTTL       int      `yaml:"cache_ttl"` // seconds
}

// TimeoutDuration returns the per-attempt timeout
func (i IdentityConfig) TimeoutDuration() time.Duration {
	return time.Duration(i.Timeout) * time.Second
}

// CacheTTLDuration returns the identity cache TTL
func (i IdentityConfig) CacheTTLDuration() time.Duration {
	return time.Duration(i.CacheTTL) * time.Second
}

// SessionConfig legacy session settings
type SessionConfig struct {
	TTLHours      int    `yaml:"ttl_hours"`
	CookieName    string `yaml:"cookie_name"`
	PurgeInterval int    `yaml:"purge_interval"` // minutes
}

// TTL returns the session lifetime
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

// InvitationConfig invitation settings
type InvitationConfig struct {
	TTLHours      int    `yaml:"ttl_hours"`
	AcceptURLBase string `yaml:"accept_url_base"`
}

// TTL returns the invitation lifetime
func (i InvitationConfig) TTL() time.Duration {
	return time.Duration(i.TTLHours) * time.Hour
}

// SMTPConfig outgoing mail settings; an empty host disables mail
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
	Timeout  int    `yaml:"timeout"` // seconds, bounds dial and the whole exchange
}

// TimeoutDuration returns the SMTP timeout
func (s SMTPConfig) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// CORSConfig CORS settings
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// RateLimitConfig request rate limiting (requires redis)
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

// IsDevelopment reports whether the app runs in a local/dev environment
func (c *Config) IsDevelopment() bool {
	switch c.Env {
	case "", "local", "dev", "development", "test":
		return true
	}
	return false
}

// Default returns a configuration with every default applied
func Default() *Config {
	return &Config{
		Env: "local",
		Server: ServerConfig{
			Port:            8082,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			Port:            3306,
			MaxIdleConns:    10,
			MaxOpenConns:    50,
			ConnMaxLifetime: 300,
		},
		Redis: RedisConfig{
			Port:     6379,
			PoolSize: 10,
		},
		Identity: IdentityConfig{
			Timeout:  3,
			Retries:  2,
			CacheTTL: 300,
		},
		Session: SessionConfig{
			TTLHours:      30 * 24,
			CookieName:    "access_token",
			PurgeInterval: 60,
		},
		Invitation: InvitationConfig{
			TTLHours:      7 * 24,
			AcceptURLBase: "http://localhost:3000/invitations",
		},
		SMTP: SMTPConfig{
			Port:     "587",
			FromName: "Memo",
			Timeout:  10,
		},
		CORS: CORSConfig{
			AllowOrigins: "http://localhost:3000",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 120,
		},
	}
}

// Load reads the YAML file at path (missing file is not an error) on top of the
// defaults and then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults + env only
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Session.TTLHours <= 0 || c.Invitation.TTLHours <= 0 {
		return fmt.Errorf("session and invitation ttl must be positive")
	}
	return nil
}

func applyEnv(c *Config) {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Env = v
	}
	setInt(&c.Server.Port, "PORT")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")
	setString(&c.Database.Host, "DB_HOST")
	setInt(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.Redis.Host, "REDIS_HOST")
	setInt(&c.Redis.Port, "REDIS_PORT")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	if v := os.Getenv("IDP_HOSTS"); v != "" {
		c.Identity.CandidateHosts = SplitAndTrim(v, ",")
	}
	setString(&c.Identity.APIKey, "IDP_API_KEY")
	setString(&c.Identity.JWTSecret, "IDP_JWT_SECRET")
	setString(&c.SMTP.Host, "SMTP_HOST")
	setString(&c.SMTP.Port, "SMTP_PORT")
	setString(&c.SMTP.Username, "SMTP_USERNAME")
	setString(&c.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.SMTP.From, "SMTP_FROM")
	setInt(&c.SMTP.Timeout, "SMTP_TIMEOUT")
	setString(&c.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// SplitAndTrim splits s by sep and drops empty, trimmed parts
func SplitAndTrim(s, sep string) []string {
	parts := []string{}
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// LogResolved logs the effective configuration without secrets
func LogResolved(c *Config) {
	logger.Info("config: env=%s port=%d db_driver=%s redis=%v idp_candidates=%d smtp=%v",
		c.Env, c.Server.Port, c.Database.Driver, c.Redis.Enabled(),
		len(c.Identity.CandidateHosts), c.SMTP.Host != "")
}
