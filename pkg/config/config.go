package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete hiveboard configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Hive      HiveConfig      `yaml:"hive"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Store     StoreConfig     `yaml:"store"`
	Events    EventsConfig    `yaml:"events"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP API server settings
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	MetricsEnabled  bool          `yaml:"metrics_enabled"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AuthSecret      string        `yaml:"auth_secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
}

// DashboardConfig holds TUI dashboard settings. The intervals drive the
// per-widget pollers; StaleFactor multiplies an interval to decide when a
// widget's last-known-good snapshot counts as stale.
type DashboardConfig struct {
	APIBaseURL       string        `yaml:"api_base_url"`
	ResourceInterval time.Duration `yaml:"resource_interval"`
	MonitorInterval  time.Duration `yaml:"monitor_interval"`
	HiveInterval     time.Duration `yaml:"hive_interval"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	StaleFactor      int           `yaml:"stale_factor"`
}

// HiveConfig holds coordinator settings
type HiveConfig struct {
	TickInterval   time.Duration `yaml:"tick_interval"`
	PositionJitter float64       `yaml:"position_jitter"`
}

// MonitorConfig holds performance monitor settings and alert thresholds.
// Usage thresholds are percentages, the failure rate is a ratio.
type MonitorConfig struct {
	SampleInterval      time.Duration `yaml:"sample_interval"`
	HistorySize         int           `yaml:"history_size"`
	CPUWarning          float64       `yaml:"cpu_warning"`
	CPUCritical         float64       `yaml:"cpu_critical"`
	MemoryWarning       float64       `yaml:"memory_warning"`
	MemoryCritical      float64       `yaml:"memory_critical"`
	FailureRateCritical float64       `yaml:"failure_rate_critical"`
}

// StoreConfig selects and configures the agent/task store backend
type StoreConfig struct {
	Backend string      `yaml:"backend"` // memory, redis
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection settings for the redis store backend
type RedisConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// EventsConfig holds Kafka event publishing settings
type EventsConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Load reads configuration from a YAML file, layering it over defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	// Env overrides apply whether or not the file exists
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is present
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			MetricsEnabled:  true,
			ShutdownTimeout: 30 * time.Second,
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
		},
		Dashboard: DashboardConfig{
			APIBaseURL:       "http://localhost:8080",
			ResourceInterval: 30 * time.Second,
			MonitorInterval:  5 * time.Second,
			HiveInterval:     2 * time.Second,
			FetchTimeout:     10 * time.Second,
			StaleFactor:      3,
		},
		Hive: HiveConfig{
			TickInterval:   time.Second,
			PositionJitter: 2.0,
		},
		Monitor: MonitorConfig{
			SampleInterval:      5 * time.Second,
			HistorySize:         60,
			CPUWarning:          70,
			CPUCritical:         85,
			MemoryWarning:       75,
			MemoryCritical:      90,
			FailureRateCritical: 0.5,
		},
		Store: StoreConfig{
			Backend: "memory",
			Redis: RedisConfig{
				Address: "localhost:6379",
				TTL:     5 * time.Minute,
			},
		},
		Events: EventsConfig{
			Enabled: false,
			Brokers: []string{"localhost:9092"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.ListenAddr = GetEnv("HIVEBOARD_LISTEN_ADDR", cfg.Server.ListenAddr)
	cfg.Server.AuthSecret = GetEnv("HIVEBOARD_AUTH_SECRET", cfg.Server.AuthSecret)
	cfg.Dashboard.APIBaseURL = GetEnv("HIVEBOARD_API_URL", cfg.Dashboard.APIBaseURL)
	cfg.Store.Backend = GetEnv("HIVEBOARD_STORE_BACKEND", cfg.Store.Backend)
	cfg.Store.Redis.Address = GetEnv("HIVEBOARD_REDIS_ADDRESS", cfg.Store.Redis.Address)
	cfg.Logging.Level = GetEnv("HIVEBOARD_LOG_LEVEL", cfg.Logging.Level)
	if brokers := os.Getenv("HIVEBOARD_KAFKA_BROKERS"); brokers != "" {
		cfg.Events.Enabled = true
		cfg.Events.Brokers = []string{brokers}
	}
}

// GetEnv retrieves environment variable with a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt retrieves environment variable as int with a default value
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// GetEnvBool retrieves environment variable as bool with a default value
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
