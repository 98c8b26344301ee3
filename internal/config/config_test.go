package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SWAPI_BASE_URL", "SWAPI_TIMEOUT_SECONDS", "SWAPI_MAX_ATTEMPTS",
		"REDIS_ENABLED", "CACHE_TTL_MINUTES", "MUSIC_ENABLED", "MUSIC_PLAYER",
		"MUSIC_PLAYER_ARGS", "MUSIC_TRACK", "BRIDGE_ADDR", "UI_SEARCH_TEXT",
		"LOG_LEVEL", "LOG_FILE", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SWAPI.BaseURL != "https://swapi.dev/api" {
		t.Errorf("unexpected base url %q", cfg.SWAPI.BaseURL)
	}
	if cfg.SWAPI.Timeout != 10*time.Second || cfg.SWAPI.MaxAttempts != 3 {
		t.Errorf("unexpected swapi config %+v", cfg.SWAPI)
	}
	if cfg.Redis.Enabled {
		t.Errorf("expected redis disabled by default")
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("unexpected cache ttl %v", cfg.Cache.TTL)
	}
	if len(cfg.Music.Args) != 2 || cfg.Music.Args[1] != "{track}" {
		t.Errorf("unexpected player args %v", cfg.Music.Args)
	}
	if cfg.Bridge.Addr != "" {
		t.Errorf("expected bridge disabled by default")
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("unexpected log format %q", cfg.Logging.Format)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SWAPI_BASE_URL", "http://localhost:8080/api")
	t.Setenv("SWAPI_MAX_ATTEMPTS", "5")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("CACHE_TTL_MINUTES", "5")
	t.Setenv("MUSIC_ENABLED", "false")
	t.Setenv("MUSIC_PLAYER_ARGS", " -q , {track} ,")
	t.Setenv("BRIDGE_ADDR", ":8787")
	t.Setenv("UI_SEARCH_TEXT", "sky")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SWAPI.BaseURL != "http://localhost:8080/api" || cfg.SWAPI.MaxAttempts != 5 {
		t.Errorf("unexpected swapi config %+v", cfg.SWAPI)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Host != "cache" || cfg.Redis.Port != 6380 {
		t.Errorf("unexpected redis config %+v", cfg.Redis)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("unexpected cache ttl %v", cfg.Cache.TTL)
	}
	if cfg.Music.Enabled {
		t.Errorf("expected music disabled")
	}
	if len(cfg.Music.Args) != 2 || cfg.Music.Args[0] != "-q" {
		t.Errorf("expected trimmed args, got %v", cfg.Music.Args)
	}
	if cfg.Bridge.Addr != ":8787" || cfg.UI.SearchText != "sky" {
		t.Errorf("unexpected bridge/ui config %+v %+v", cfg.Bridge, cfg.UI)
	}
}

func TestLoadIgnoresUnparseableNumbers(t *testing.T) {
	t.Setenv("SWAPI_TIMEOUT_SECONDS", "soon")
	t.Setenv("REDIS_ENABLED", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SWAPI.Timeout != 10*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.SWAPI.Timeout)
	}
	if cfg.Redis.Enabled {
		t.Errorf("expected default redis flag")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SWAPI:   SWAPIConfig{BaseURL: "https://swapi.dev/api", Timeout: time.Second, MaxAttempts: 1},
			Cache:   CacheConfig{TTL: time.Minute},
			Music:   MusicConfig{Enabled: true, Player: "mpg123", Track: "a.mp3"},
			Logging: LoggingConfig{Format: "console"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"missing base url", func(c *Config) { c.SWAPI.BaseURL = "" }, false},
		{"non http base url", func(c *Config) { c.SWAPI.BaseURL = "ftp://swapi" }, false},
		{"zero attempts", func(c *Config) { c.SWAPI.MaxAttempts = 0 }, false},
		{"redis without host", func(c *Config) { c.Redis = RedisConfig{Enabled: true, Port: 6379} }, false},
		{"redis bad port", func(c *Config) { c.Redis = RedisConfig{Enabled: true, Host: "h", Port: 70000} }, false},
		{"redis disabled ignores fields", func(c *Config) { c.Redis = RedisConfig{Port: -1} }, true},
		{"music without track", func(c *Config) { c.Music.Track = "" }, false},
		{"music disabled", func(c *Config) { c.Music = MusicConfig{} }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
