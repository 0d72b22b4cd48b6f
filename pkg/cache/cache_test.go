package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	data    map[string]string
	getErr  error
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	default:
		f.data[key] = fmt.Sprint(v)
	}
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
		f.deleted = append(f.deleted, key)
	}
	return nil
}

func (f *fakeStore) CacheKey(name string) string {
	return "wy:cache:" + name
}

type pack struct {
	Name string `json:"name"`
}

func TestRememberLoadsOnceThenServesCache(t *testing.T) {
	store := newFakeStore()
	c, err := New(store, time.Minute, nil)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	calls := 0
	load := func(context.Context) ([]pack, error) {
		calls++
		return []pack{{Name: "Starter"}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Remember(context.Background(), c, KeyPacksActive, load)
		if err != nil {
			t.Fatalf("remember: %v", err)
		}
		if len(got) != 1 || got[0].Name != "Starter" {
			t.Fatalf("unexpected value %+v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single load, got %d", calls)
	}

	c.Invalidate(context.Background(), KeyPacksActive)
	if _, ok := store.data["wy:cache:packs:active"]; ok {
		t.Fatal("expected entry to be invalidated")
	}
	if _, err := Remember(context.Background(), c, KeyPacksActive, load); err != nil {
		t.Fatalf("remember after invalidate: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected reload after invalidate, got %d loads", calls)
	}
}

func TestRememberFallsThroughOnStoreError(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	c, _ := New(store, time.Minute, nil)

	got, err := Remember(context.Background(), c, KeyServicesActive, func(context.Context) (int, error) {
		return 7, nil
	})
	if err != nil || got != 7 {
		t.Fatalf("expected load result, got %d err=%v", got, err)
	}
}

func TestRememberPropagatesLoadError(t *testing.T) {
	c, _ := New(newFakeStore(), time.Minute, nil)
	boom := errors.New("db down")
	if _, err := Remember(context.Background(), c, KeyProjectsActive, func(context.Context) (int, error) {
		return 0, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestNilCacheAlwaysLoads(t *testing.T) {
	var c *Cache
	got, err := Remember(context.Background(), c, KeyDiscountsActive, func(context.Context) (string, error) {
		return "fresh", nil
	})
	if err != nil || got != "fresh" {
		t.Fatalf("unexpected %q err=%v", got, err)
	}
	c.Invalidate(context.Background(), KeyDiscountsActive)
}

func TestNewValidates(t *testing.T) {
	if _, err := New(nil, time.Minute, nil); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := New(newFakeStore(), 0, nil); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
