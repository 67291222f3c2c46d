package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/neomorfeo/rentiq/internal/adapter/redis"
)

func newCache(t *testing.T) (*redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.Connect(context.Background(), mr.Addr(), "", "", 0)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return redis.NewCache(client, "rentiq:"), mr
}

func TestCache_SetGet(t *testing.T) {
	cache, mr := newCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "dashboard:2025-03", []byte(`{"rooms":3}`), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := cache.Get(ctx, "dashboard:2025-03")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || string(got) != `{"rooms":3}` {
		t.Errorf("Get = %q, %v", got, ok)
	}
	if !mr.Exists("rentiq:dashboard:2025-03") {
		t.Error("expected key stored with prefix")
	}
}

func TestCache_Miss(t *testing.T) {
	cache, _ := newCache(t)

	_, ok, err := cache.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected miss")
	}
}

func TestCache_Expiry(t *testing.T) {
	cache, mr := newCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", []byte("v"), 30*time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	mr.FastForward(31 * time.Second)

	if _, ok, err := cache.Get(ctx, "k"); err != nil || ok {
		t.Errorf("Get after expiry = %v, %v; want miss", ok, err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := redis.Connect(context.Background(), addr, "", "", 0); err == nil {
		t.Fatal("expected error for closed server")
	}
}
