package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kapu/cantina-go/internal/bridge"
	"github.com/kapu/cantina-go/internal/config"
	"github.com/kapu/cantina-go/internal/people"
	"github.com/kapu/cantina-go/internal/service/cache"
	"github.com/kapu/cantina-go/internal/service/music"
	"github.com/kapu/cantina-go/internal/service/swapi"
	"go.uber.org/zap"
)

// Container bundles the assembled services behind the people browser.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Controller *people.Controller
	Bridge     *bridge.Server // nil when no bridge address is configured
	Music      people.MusicController

	closers []func()
}

// Build assembles the data source, music and controller. Redis is
// optional: when it cannot be reached pages are fetched uncached.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()

	// People source
	client := swapi.NewClient(nil, swapi.ClientConfig{
		BaseURL:     cfg.SWAPI.BaseURL,
		Timeout:     cfg.SWAPI.Timeout,
		MaxAttempts: cfg.SWAPI.MaxAttempts,
	}, logger.Named("swapi"))

	var (
		source people.PeopleSource = client
		cached bool
	)
	if cfg.Redis.Enabled {
		cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			logger.Warn("Redis unavailable, people pages will not be cached", zap.Error(cacheErr))
		} else {
			closers = append(closers, func() {
				_ = cacheSvc.Close()
			})
			source = swapi.NewCachedSource(client, cacheSvc, cfg.Cache.TTL, logger.Named("page_cache"))
			cached = true
		}
	}

	// Music
	var player people.MusicController
	if cfg.Music.Enabled {
		player = music.NewProcessPlayer(music.PlayerConfig{
			Command: cfg.Music.Player,
			Args:    cfg.Music.Args,
			Track:   cfg.Music.Track,
		}, logger.Named("music"))
		if loadErr := player.Load(ctx); loadErr != nil {
			logger.Warn("Failed to preload music, playback will retry on demand", zap.Error(loadErr))
		} else {
			logger.Info("Music preloaded", zap.String("track", cfg.Music.Track))
		}
	} else {
		player = music.NewNoopPlayer(logger.Named("music"))
	}
	closers = append(closers, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if stopErr := player.Stop(stopCtx); stopErr != nil {
			logger.Warn("Failed to stop music", zap.Error(stopErr))
		}
	})

	// Controller
	var opts []people.Option
	if cfg.UI.SearchText != "" {
		opts = append(opts, people.WithSearchText(cfg.UI.SearchText))
	}
	controller := people.NewController(source, player, logger.Named("people"), opts...)
	closers = append(closers, controller.Close)

	// Bridge
	var bridgeSrv *bridge.Server
	if cfg.Bridge.Addr != "" {
		bridgeSrv = bridge.NewServer(controller, logger.Named("bridge"))
		closers = append(closers, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if shutdownErr := bridgeSrv.Shutdown(shutdownCtx); shutdownErr != nil {
				logger.Warn("Bridge shutdown incomplete", zap.Error(shutdownErr))
			}
		})
	}

	logger.Info("Application services assembled",
		zap.String("swapi", cfg.SWAPI.BaseURL),
		zap.Bool("cache", cached),
		zap.Bool("music", cfg.Music.Enabled),
		zap.String("bridge", cfg.Bridge.Addr),
	)

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Controller: controller,
		Bridge:     bridgeSrv,
		Music:      player,
		closers:    closers,
	}, nil
}

// Close releases everything Build created, in reverse order.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
