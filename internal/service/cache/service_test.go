package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
)

// Runs against a real Redis when CANTINA_TEST_REDIS_HOST is set.
func newIntegrationCache(t *testing.T) *CacheService {
	t.Helper()
	host := os.Getenv("CANTINA_TEST_REDIS_HOST")
	if host == "" {
		t.Skip("CANTINA_TEST_REDIS_HOST not set")
	}

	svc, err := NewCacheService(CacheConfig{Host: host, Port: 6379, DB: 15}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewCacheService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestCacheServiceRoundTrip(t *testing.T) {
	svc := newIntegrationCache(t)
	ctx := context.Background()
	key := "cantina:test:roundtrip"
	t.Cleanup(func() { _ = svc.Del(ctx, key) })

	type payload struct {
		Name string `json:"name"`
	}

	if err := svc.Set(ctx, key, payload{Name: "Yoda"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got payload
	found, err := svc.Get(ctx, key, &got)
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if got.Name != "Yoda" {
		t.Fatalf("expected Yoda, got %q", got.Name)
	}
}

func TestCacheServiceMissingKey(t *testing.T) {
	svc := newIntegrationCache(t)

	var dest map[string]any
	found, err := svc.Get(context.Background(), "cantina:test:missing", &dest)
	if err != nil || found {
		t.Fatalf("expected clean miss, got found=%v err=%v", found, err)
	}
}

func TestCacheServiceDelPattern(t *testing.T) {
	svc := newIntegrationCache(t)
	ctx := context.Background()

	for _, key := range []string{"cantina:test:p:1", "cantina:test:p:2"} {
		if err := svc.Set(ctx, key, 1, time.Minute); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	deleted, err := svc.DelPattern(ctx, "cantina:test:p:*")
	if err != nil {
		t.Fatalf("DelPattern: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deletions, got %d", deleted)
	}
}
