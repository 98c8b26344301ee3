package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	SWAPI   SWAPIConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Music   MusicConfig
	Bridge  BridgeConfig
	UI      UIConfig
	Logging LoggingConfig
}

type SWAPIConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	TTL time.Duration
}

type MusicConfig struct {
	Enabled bool
	Player  string
	Args    []string
	Track   string
}

type BridgeConfig struct {
	Addr string // empty disables the websocket bridge
}

type UIConfig struct {
	SearchText string
}

type LoggingConfig struct {
	Level  string
	File   string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		SWAPI: SWAPIConfig{
			BaseURL:     getEnv("SWAPI_BASE_URL", "https://swapi.dev/api"),
			Timeout:     time.Duration(getEnvInt("SWAPI_TIMEOUT_SECONDS", 10)) * time.Second,
			MaxAttempts: getEnvInt("SWAPI_MAX_ATTEMPTS", 3),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvInt("CACHE_TTL_MINUTES", 30)) * time.Minute,
		},
		Music: MusicConfig{
			Enabled: getEnvBool("MUSIC_ENABLED", true),
			Player:  getEnv("MUSIC_PLAYER", "mpg123"),
			Args:    parseCommaSeparated(getEnv("MUSIC_PLAYER_ARGS", "--quiet,{track}")),
			Track:   getEnv("MUSIC_TRACK", "assets/cantina.mp3"),
		},
		Bridge: BridgeConfig{
			Addr: getEnv("BRIDGE_ADDR", ""),
		},
		UI: UIConfig{
			SearchText: getEnv("UI_SEARCH_TEXT", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			File:   getEnv("LOG_FILE", "logs/cantina.log"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SWAPI.BaseURL == "" {
		return fmt.Errorf("SWAPI_BASE_URL is required")
	}
	if !strings.HasPrefix(c.SWAPI.BaseURL, "http://") && !strings.HasPrefix(c.SWAPI.BaseURL, "https://") {
		return fmt.Errorf("SWAPI_BASE_URL must be an http(s) URL: %q", c.SWAPI.BaseURL)
	}
	if c.SWAPI.Timeout <= 0 {
		return fmt.Errorf("SWAPI_TIMEOUT_SECONDS must be positive")
	}
	if c.SWAPI.MaxAttempts < 1 {
		return fmt.Errorf("SWAPI_MAX_ATTEMPTS must be at least 1")
	}
	if c.Redis.Enabled {
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required when REDIS_ENABLED is set")
		}
		if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
			return fmt.Errorf("REDIS_PORT out of range: %d", c.Redis.Port)
		}
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL_MINUTES must be positive")
	}
	if c.Music.Enabled {
		if c.Music.Player == "" {
			return fmt.Errorf("MUSIC_PLAYER is required when MUSIC_ENABLED is set")
		}
		if c.Music.Track == "" {
			return fmt.Errorf("MUSIC_TRACK is required when MUSIC_ENABLED is set")
		}
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
