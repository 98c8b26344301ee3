package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kapu/cantina-go/internal/config"
	"go.uber.org/zap"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		SWAPI:   config.SWAPIConfig{BaseURL: baseURL, Timeout: time.Second, MaxAttempts: 1},
		Cache:   config.CacheConfig{TTL: time.Minute},
		Bridge:  config.BridgeConfig{Addr: "127.0.0.1:0"},
		UI:      config.UIConfig{SearchText: "luke"},
		Logging: config.LoggingConfig{Format: "console"},
	}
}

func TestBuildRejectsMissingDependencies(t *testing.T) {
	if _, err := Build(context.Background(), nil, zap.NewNop()); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := Build(context.Background(), testConfig("http://localhost"), nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}

func TestBuildWiresControllerToSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count": 2, "next": null, "results": [
			{"name": "Luke Skywalker", "url": "https://swapi.dev/api/people/1/"},
			{"name": "Leia Organa", "url": "https://swapi.dev/api/people/5/"}
		]}`))
	}))
	defer server.Close()

	container, err := Build(context.Background(), testConfig(server.URL), zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer container.Close()

	if container.Bridge == nil {
		t.Fatalf("expected bridge to be built when an address is configured")
	}

	container.Controller.Start(context.Background())
	container.Controller.Wait()

	state := container.Controller.Snapshot()
	if state.TotalLoaded != 2 || !state.ReachedEnd {
		t.Fatalf("unexpected state %+v", state)
	}
	if state.SearchText != "luke" || len(state.VisiblePeople) != 1 {
		t.Fatalf("expected initial search to filter, got %+v", state)
	}
	if !state.IsPlayingMusic {
		t.Fatalf("expected noop music to report playing after the last page")
	}
}

func TestBuildWithoutBridge(t *testing.T) {
	cfg := testConfig("http://localhost")
	cfg.Bridge.Addr = ""

	container, err := Build(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	container.Close()
	container.Close()

	if container.Bridge != nil {
		t.Fatalf("expected no bridge")
	}
}

func TestBuildToleratesUnreachableRedis(t *testing.T) {
	cfg := testConfig("http://localhost")
	cfg.Redis = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	container, err := Build(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("expected Build to fall back to uncached source, got %v", err)
	}
	container.Close()
}
