package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Auth     AuthConfig     `json:"auth"`
	Login    LoginConfig    `json:"login"`
	Cache    CacheConfig    `json:"cache"`
	Audit    AuditConfig    `json:"audit"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
	LogLevel    string `json:"log_level"`
}

type DatabaseConfig struct {
	DSN     string `json:"dsn"`
	Verbose bool   `json:"verbose"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type AuthConfig struct {
	JWTSecret      string `json:"jwt_secret"`
	JWTExpiryHours int    `json:"jwt_expiry_hours"`
}

// LoginConfig throttles failed logins per email and client address
type LoginConfig struct {
	Algorithm     string `json:"algorithm"` // fixed_window or sliding_window
	MaxAttempts   int    `json:"max_attempts"`
	WindowMinutes int    `json:"window_minutes"`
}

type CacheConfig struct {
	TierTTLSeconds int `json:"tier_ttl_seconds"`
}

type AuditConfig struct {
	BufferSize           int `json:"buffer_size"`
	BatchSize            int `json:"batch_size"`
	FlushIntervalSeconds int `json:"flush_interval_seconds"`
	RetentionDays        int `json:"retention_days"`
}

// Returns host:port unless an explicit address is configured
func (r RedisConfig) GetRedisAddr() string {
	if r.Addr != "" {
		return r.Addr
	}
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads the JSON config at path. A missing file is not an error, the
// defaults and environment are used instead.
func Load(path string) (*Config, error) {
	config := Default()

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Environment: "development"},
		Redis:  RedisConfig{Host: "localhost", Port: 6379},
		Auth:   AuthConfig{JWTExpiryHours: 24},
		Login:  LoginConfig{Algorithm: "fixed_window", MaxAttempts: 5, WindowMinutes: 15},
		Cache:  CacheConfig{TierTTLSeconds: 300},
		Audit: AuditConfig{
			BufferSize:           1000,
			BatchSize:            100,
			FlushIntervalSeconds: 5,
			RetentionDays:        365,
		},
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Server.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
}

func (c *Config) applyDefaults() {
	d := Default()

	if c.Server.Port == "" {
		c.Server.Port = d.Server.Port
	}
	if c.Auth.JWTExpiryHours <= 0 {
		c.Auth.JWTExpiryHours = d.Auth.JWTExpiryHours
	}
	if c.Login.Algorithm == "" {
		c.Login.Algorithm = d.Login.Algorithm
	}
	if c.Login.MaxAttempts <= 0 {
		c.Login.MaxAttempts = d.Login.MaxAttempts
	}
	if c.Login.WindowMinutes <= 0 {
		c.Login.WindowMinutes = d.Login.WindowMinutes
	}
	if c.Cache.TierTTLSeconds <= 0 {
		c.Cache.TierTTLSeconds = d.Cache.TierTTLSeconds
	}
	if c.Audit.BufferSize <= 0 {
		c.Audit.BufferSize = d.Audit.BufferSize
	}
	if c.Audit.BatchSize <= 0 {
		c.Audit.BatchSize = d.Audit.BatchSize
	}
	if c.Audit.FlushIntervalSeconds <= 0 {
		c.Audit.FlushIntervalSeconds = d.Audit.FlushIntervalSeconds
	}
	if c.Audit.RetentionDays <= 0 {
		c.Audit.RetentionDays = d.Audit.RetentionDays
	}
}

func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database dsn is required (set DATABASE_URL)")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("jwt secret is required (set JWT_SECRET)")
	}
	switch c.Login.Algorithm {
	case "fixed_window", "sliding_window":
	default:
		return fmt.Errorf("unknown login rate limit algorithm %q", c.Login.Algorithm)
	}
	return nil
}
