package swapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/kapu/cantina-go/internal/domain"
	"go.uber.org/zap"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return false, m.getErr
	}
	data, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	m.ttls[key] = ttl
	return nil
}

type countingSource struct {
	calls  int
	result *domain.PageResult
	err    error
}

func (s *countingSource) Fetch(context.Context, int) (*domain.PageResult, error) {
	s.calls++
	return s.result, s.err
}

func TestCachedSourceServesRepeatFromCache(t *testing.T) {
	nextURL := "https://swapi.dev/api/people/?page=2"
	upstream := &countingSource{result: &domain.PageResult{
		Next:    &nextURL,
		Results: []domain.Person{domain.LukeSkywalker()},
	}}
	cache := newMemoryCache()
	source := NewCachedSource(upstream, cache, time.Minute, zap.NewNop())

	first, err := source.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	second, err := source.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if upstream.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", upstream.calls)
	}
	if !second.HasNext() || !domain.PeoplesEqual(first.Results, second.Results) {
		t.Fatalf("expected cached page to round-trip, got %+v", second)
	}
	if cache.ttls[PageCacheKey(1)] != time.Minute {
		t.Fatalf("expected ttl to be applied, got %v", cache.ttls[PageCacheKey(1)])
	}
}

func TestCachedSourceFallsThroughOnCacheErrors(t *testing.T) {
	upstream := &countingSource{result: &domain.PageResult{Results: []domain.Person{domain.LeiaOrgana()}}}
	cache := newMemoryCache()
	cache.getErr = stderrors.New("redis down")
	cache.setErr = stderrors.New("redis down")
	source := NewCachedSource(upstream, cache, 0, zap.NewNop())

	result, err := source.Fetch(context.Background(), 3)
	if err != nil {
		t.Fatalf("expected cache failures to be tolerated, got %v", err)
	}
	if len(result.Results) != 1 || upstream.calls != 1 {
		t.Fatalf("expected upstream result, got %+v (calls=%d)", result, upstream.calls)
	}
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	upstream := &countingSource{err: stderrors.New("timeout")}
	cache := newMemoryCache()
	source := NewCachedSource(upstream, cache, time.Minute, zap.NewNop())

	if _, err := source.Fetch(context.Background(), 1); err == nil {
		t.Fatalf("expected upstream error")
	}
	if len(cache.entries) != 0 {
		t.Fatalf("expected nothing cached after a failure")
	}
}

func TestPageCacheKey(t *testing.T) {
	if got := PageCacheKey(4); got != "swapi:people:page:4" {
		t.Fatalf("PageCacheKey = %q", got)
	}
}
