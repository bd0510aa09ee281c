package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PointPackage is a purchasable bundle of ledger points.
type PointPackage struct {
	ID     string `yaml:"id"`
	Points int64  `yaml:"points"`
	Bonus  int64  `yaml:"bonus"`
}

// Total is the number of points credited for one purchase of the package.
func (p PointPackage) Total() int64 { return p.Points + p.Bonus }

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	Quota struct {
		DailyFreeLimit int
		MessageCost    int64
		Timezone       string
		Location       *time.Location
	}

	Match struct {
		CrushCost int64
	}

	Fanout struct {
		Buffer       int
		UseRedis     bool
		RedisChannel string
	}

	Packages []PointPackage
}

// fileConfig is the optional YAML overlay read from CONFIG_FILE.
// Environment variables always win over values from the file.
type fileConfig struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"logLevel"`
	DB       struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"db"`
	RedisAddr string `yaml:"redisAddr"`
	GRPCPort  string `yaml:"grpcPort"`
	Quota     struct {
		DailyFreeLimit *int   `yaml:"dailyFreeLimit"`
		MessageCost    *int64 `yaml:"messageCost"`
		Timezone       string `yaml:"timezone"`
	} `yaml:"quota"`
	CrushCost *int64         `yaml:"crushCost"`
	Packages  []PointPackage `yaml:"packages"`
}

// DefaultPackages mirrors the point bundles sold in the app store listing.
func DefaultPackages() []PointPackage {
	return []PointPackage{
		{ID: "starter", Points: 15, Bonus: 0},
		{ID: "popular", Points: 70, Bonus: 5},
		{ID: "premium", Points: 150, Bonus: 15},
	}
}

// New builds the configuration from .env, the optional CONFIG_FILE overlay and the
// process environment. Invalid values fall back to defaults; use Load to get errors.
func New() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = defaults()
		cfg.DB.DSN = cfg.buildDSN()
	}
	return cfg
}

// Load is New with validation errors surfaced to the caller.
func Load() (*Config, error) {
	// .env is optional; a missing file is the normal production case
	_ = godotenv.Load()

	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.App.ENV = "production"

	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Log.Component = "grpc_server"

	cfg.DB.Driver = "mysql"
	cfg.DB.Host = "localhost"
	cfg.DB.Port = "3306"
	cfg.DB.User = "root"
	cfg.DB.Password = "root"
	cfg.DB.Name = "spark"

	cfg.Redis.Addr = "localhost:6379"

	cfg.GRPC.Host = "127.0.0.1"
	cfg.GRPC.Port = "50051"

	cfg.Quota.DailyFreeLimit = 5
	cfg.Quota.MessageCost = 10
	cfg.Quota.Timezone = "UTC"
	cfg.Quota.Location = time.UTC

	cfg.Match.CrushCost = 50

	cfg.Fanout.Buffer = 64
	cfg.Fanout.RedisChannel = "spark:events"

	cfg.Packages = DefaultPackages()
	return cfg
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if fc.Env != "" {
		c.App.ENV = fc.Env
	}
	if fc.LogLevel != "" {
		c.Log.Level = fc.LogLevel
	}
	if fc.DB.Driver != "" {
		c.DB.Driver = fc.DB.Driver
	}
	if fc.DB.DSN != "" {
		c.DB.DSN = fc.DB.DSN
	}
	if fc.RedisAddr != "" {
		c.Redis.Addr = fc.RedisAddr
	}
	if fc.GRPCPort != "" {
		c.GRPC.Port = fc.GRPCPort
	}
	if fc.Quota.DailyFreeLimit != nil {
		c.Quota.DailyFreeLimit = *fc.Quota.DailyFreeLimit
	}
	if fc.Quota.MessageCost != nil {
		c.Quota.MessageCost = *fc.Quota.MessageCost
	}
	if fc.Quota.Timezone != "" {
		c.Quota.Timezone = fc.Quota.Timezone
	}
	if fc.CrushCost != nil {
		c.Match.CrushCost = *fc.CrushCost
	}
	if len(fc.Packages) > 0 {
		c.Packages = fc.Packages
	}
	return nil
}

func (c *Config) applyEnv() {
	c.App.ENV = getEnvDefault("APP_ENV", c.App.ENV)

	// Logger
	c.Log.Level = getEnvDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvDefault("LOG_FORMAT", c.Log.Format)
	c.Log.Component = getEnvDefault("LOG_COMPONENT", c.Log.Component)
	c.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	c.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", c.DB.Driver))
	c.DB.DSN = getEnvDefault("DB_DSN", getEnvDefault("MYSQL_DSN", c.DB.DSN))
	c.DB.Host = getEnvDefault("DB_HOST", c.DB.Host)
	c.DB.Port = getEnvDefault("DB_PORT", c.DB.Port)
	c.DB.User = getEnvDefault("DB_USER", c.DB.User)
	c.DB.Password = getEnvDefault("DB_PASSWORD", c.DB.Password)
	c.DB.Name = getEnvDefault("DB_NAME", c.DB.Name)
	if c.DB.DSN == "" {
		c.DB.DSN = c.buildDSN()
	}

	// Redis
	c.Redis.Addr = getEnvDefault("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnvDefault("REDIS_PASSWORD", c.Redis.Password)
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = dbInt
		}
	}

	// gRPC
	c.GRPC.Host = getEnvDefault("GRPC_HOST", c.GRPC.Host)
	c.GRPC.Port = getEnvDefault("GRPC_PORT", c.GRPC.Port)

	// Quota & ledger
	c.Quota.DailyFreeLimit = getEnvInt("FREE_MESSAGES_PER_DAY", c.Quota.DailyFreeLimit)
	c.Quota.MessageCost = int64(getEnvInt("MESSAGE_COST_POINTS", int(c.Quota.MessageCost)))
	c.Quota.Timezone = getEnvDefault("QUOTA_TIMEZONE", c.Quota.Timezone)
	c.Match.CrushCost = int64(getEnvInt("CRUSH_COST_POINTS", int(c.Match.CrushCost)))

	// Fan-out
	c.Fanout.Buffer = getEnvInt("FANOUT_BUFFER", c.Fanout.Buffer)
	if v := os.Getenv("FANOUT_REDIS"); v != "" {
		c.Fanout.UseRedis = isTruthy(v)
	}
	c.Fanout.RedisChannel = getEnvDefault("FANOUT_CHANNEL", c.Fanout.RedisChannel)
}

func (c *Config) buildDSN() string {
	switch c.DB.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name,
		)
	case "sqlite":
		return c.DB.Name + ".db"
	default:
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name,
		)
	}
}

// Validate checks the values the core depends on and resolves the quota timezone.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.Quota.DailyFreeLimit < 0 {
		return fmt.Errorf("FREE_MESSAGES_PER_DAY must be >= 0, got %d", c.Quota.DailyFreeLimit)
	}
	if c.Quota.MessageCost <= 0 {
		return fmt.Errorf("MESSAGE_COST_POINTS must be > 0, got %d", c.Quota.MessageCost)
	}
	if c.Match.CrushCost <= 0 {
		return fmt.Errorf("CRUSH_COST_POINTS must be > 0, got %d", c.Match.CrushCost)
	}
	if c.Fanout.Buffer <= 0 {
		c.Fanout.Buffer = 64
	}
	loc, err := time.LoadLocation(c.Quota.Timezone)
	if err != nil {
		return fmt.Errorf("invalid QUOTA_TIMEZONE %q: %w", c.Quota.Timezone, err)
	}
	c.Quota.Location = loc

	seen := make(map[string]struct{}, len(c.Packages))
	for _, p := range c.Packages {
		if p.ID == "" || p.Total() <= 0 {
			return fmt.Errorf("invalid point package %+v", p)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate point package %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Package looks up a point package by id.
func (c *Config) Package(id string) (PointPackage, bool) {
	for _, p := range c.Packages {
		if p.ID == id {
			return p, true
		}
	}
	return PointPackage{}, false
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
