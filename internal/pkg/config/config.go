package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"

	"github.com/samirrijal/circlehole/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Circle    CircleConfig    `mapstructure:"circle"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// CircleConfig holds request defaults and limits for ring generation.
type CircleConfig struct {
	CenterLat              float64 `mapstructure:"center_lat"`
	CenterLon              float64 `mapstructure:"center_lon"`
	Radius                 float64 `mapstructure:"radius"`
	Points                 int     `mapstructure:"points"`
	MaxPoints              int     `mapstructure:"max_points"`
	EnforceOppositeWinding bool    `mapstructure:"enforce_opposite_winding"`
	CacheTTL               int     `mapstructure:"cache_ttl"` // seconds
}

// Center returns the default center as a GeoPoint.
func (c CircleConfig) Center() domain.GeoPoint {
	return domain.GeoPoint{Lat: c.CenterLat, Lon: c.CenterLon}
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("circle.center_lat", 37.78)
	v.SetDefault("circle.center_lon", -122.41)
	v.SetDefault("circle.radius", domain.DefaultRadiusMeters)
	v.SetDefault("circle.points", 64)
	v.SetDefault("circle.max_points", 360)
	v.SetDefault("circle.enforce_opposite_winding", true)
	v.SetDefault("circle.cache_ttl", 300)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: CIRCLEHOLE_CIRCLE_MAX_POINTS → circle.max_points
	v.SetEnvPrefix("CIRCLEHOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Circle.CenterLat < -90 || c.Circle.CenterLat > 90 {
		errs = append(errs, fmt.Sprintf("circle.center_lat must be -90..90, got %v", c.Circle.CenterLat))
	}
	if c.Circle.CenterLon < -180 || c.Circle.CenterLon > 180 {
		errs = append(errs, fmt.Sprintf("circle.center_lon must be -180..180, got %v", c.Circle.CenterLon))
	}
	if c.Circle.Radius < 0 || math.IsNaN(c.Circle.Radius) || math.IsInf(c.Circle.Radius, 0) {
		errs = append(errs, fmt.Sprintf("circle.radius must be a non-negative number, got %v", c.Circle.Radius))
	}
	if c.Circle.MaxPoints <= 0 {
		errs = append(errs, "circle.max_points must be positive")
	}
	if c.Circle.Points <= 0 || c.Circle.Points > c.Circle.MaxPoints {
		errs = append(errs, fmt.Sprintf("circle.points must be 1-%d, got %d", c.Circle.MaxPoints, c.Circle.Points))
	}
	if c.Circle.CacheTTL < 0 {
		errs = append(errs, "circle.cache_ttl must not be negative")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
