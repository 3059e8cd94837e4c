package config

import (
	"os"
	"strconv"
)

// DBConfig holds the PostgreSQL connection settings.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// MQConfig holds the RabbitMQ settings.
type MQConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the Redis settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig holds the shared secret used to validate service tokens.
type AuthConfig struct {
	Secret string `yaml:"secret"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// ForecastConfig tunes the scheduling and projection core. The velocity
// trend band and window are deliberately configuration, not hidden
// constants.
type ForecastConfig struct {
	// TrendTolerance is the fraction around planned velocity treated as
	// stable (0.10 = ±10%).
	TrendTolerance float64 `yaml:"trend_tolerance"`
	// VelocityWindowDays is the trailing window for recent velocity.
	VelocityWindowDays int `yaml:"velocity_window_days"`
	// MaxHorizonDays caps the simulated timeline.
	MaxHorizonDays int `yaml:"max_horizon_days"`
	// CacheTTLSeconds bounds how long computed projections stay cached.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	// RecomputeIntervalSeconds is the forecast runner's scan period.
	RecomputeIntervalSeconds int `yaml:"recompute_interval_seconds"`
}

// OverrideDBFromEnv applies DB_* environment variables on top of the file
// configuration.
func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
}

// OverrideMQFromEnv applies MQ_URL on top of the file configuration.
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

// OverrideRedisFromEnv applies REDIS_* environment variables.
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

// OverrideAuthFromEnv applies AUTH_SECRET.
func OverrideAuthFromEnv(cfg *AuthConfig) {
	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		cfg.Secret = secret
	}
}

// OverrideServerFromEnv applies SERVER_PORT.
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}
