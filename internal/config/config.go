// Package config provides configuration management for the pitwall simulator.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig          `mapstructure:"app" validate:"required"`
	Simulation  SimulationConfig   `mapstructure:"simulation" validate:"required"`
	Circuit     CircuitConfig      `mapstructure:"circuit" validate:"required"`
	Competitors []CompetitorConfig `mapstructure:"competitors" validate:"dive"`
	Output      OutputConfig       `mapstructure:"output"`
	Database    DatabaseConfig     `mapstructure:"database"`
	Metrics     MetricsConfig      `mapstructure:"metrics"`
	Schedule    ScheduleConfig     `mapstructure:"schedule"`
	Cache       CacheConfig        `mapstructure:"cache"`
	Notify      NotifyConfig       `mapstructure:"notify"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// SimulationConfig represents monte carlo run settings
type SimulationConfig struct {
	Iterations    int   `mapstructure:"iterations" validate:"required,gt=0"`
	Seed          int64 `mapstructure:"seed"`
	ProgressEvery int   `mapstructure:"progress_every" validate:"gte=0"`
	Workers       int   `mapstructure:"workers" validate:"gte=0"`
	Verbose       bool  `mapstructure:"verbose"`
}

// CircuitConfig represents the race circuit
type CircuitConfig struct {
	LapLength       float64 `mapstructure:"lap_length" validate:"finite,required,gt=0"`
	Laps            int     `mapstructure:"laps" validate:"required,gte=1"`
	WeatherVariance float64 `mapstructure:"weather_variance" validate:"finite,gte=0"`
}

// CompetitorConfig represents one entrant and its strategy parameters
type CompetitorConfig struct {
	Name       string  `mapstructure:"name" validate:"required"`
	BaseSpeed  float64 `mapstructure:"base_speed" validate:"finite,required,gt=0"`
	SpeedStd   float64 `mapstructure:"speed_std" validate:"finite,gte=0"`
	CrashProb  float64 `mapstructure:"crash_prob" validate:"finite,gte=0,lte=1"`
	PitMean    float64 `mapstructure:"pit_mean" validate:"finite,gte=0"`
	PitStd     float64 `mapstructure:"pit_std" validate:"finite,gte=0"`
	PitLaps    []int   `mapstructure:"pit_laps"`
	TyreDecay  float64 `mapstructure:"tyre_decay" validate:"finite,gte=0"`
	BoostLaps  []int   `mapstructure:"boost_laps"`
	BoostSpeed float64 `mapstructure:"boost_speed" validate:"finite"`
	BoostCrash float64 `mapstructure:"boost_crash" validate:"finite,gte=0,lte=1"`
}

// OutputConfig represents report destinations. Empty paths are skipped.
type OutputConfig struct {
	CSVPath  string `mapstructure:"csv_path"`
	JSONPath string `mapstructure:"json_path"`
	HTMLPath string `mapstructure:"html_path"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required_if=Enabled true"`
	User               string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"gte=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// ScheduleConfig represents periodic re-runs in serve mode
type ScheduleConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron" validate:"required_if=Enabled true,omitempty,cronspec"`
}

// CacheConfig represents result caching
type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds" validate:"gte=0"`
}

// NotifyConfig represents the run-completed webhook
type NotifyConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	WebhookURL        string  `mapstructure:"webhook_url" validate:"required_if=Enabled true,omitempty,url"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit         float64 `mapstructure:"rate_limit" validate:"finite,gte=0"`
	CircuitBreakerMax int     `mapstructure:"circuit_breaker_max" validate:"gte=0"`
	CooldownSeconds   int     `mapstructure:"cooldown_seconds" validate:"gte=0"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
