package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestKVStore(t *testing.T, prefix string, ttl time.Duration) (*RedisKVStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisKVStore(client, prefix, ttl), mr
}

func TestKVStoreRoundTrip(t *testing.T) {
	store, _ := setupTestKVStore(t, "app", 0)
	ctx := context.Background()

	if err := store.SetValue(ctx, "setup:u1", `{"dismissed":true}`); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	value, found, err := store.GetValue(ctx, "setup:u1")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if !found {
		t.Fatal("Expected key to be found")
	}
	if value != `{"dismissed":true}` {
		t.Errorf("Unexpected value %q", value)
	}
}

func TestKVStoreMissingKey(t *testing.T) {
	store, _ := setupTestKVStore(t, "app", 0)

	_, found, err := store.GetValue(context.Background(), "setup:none")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if found {
		t.Error("Expected missing key to report not found")
	}
}

func TestKVStorePrefixing(t *testing.T) {
	store, mr := setupTestKVStore(t, "app", 0)

	if err := store.SetValue(context.Background(), "k", "v"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	if got, err := mr.Get("app:k"); err != nil || got != "v" {
		t.Errorf("Expected prefixed key app:k = v, got %q (%v)", got, err)
	}
}

func TestKVStoreDelete(t *testing.T) {
	store, _ := setupTestKVStore(t, "", 0)
	ctx := context.Background()

	if err := store.SetValue(ctx, "k", "v"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := store.DeleteValue(ctx, "k"); err != nil {
		t.Fatalf("DeleteValue failed: %v", err)
	}

	_, found, err := store.GetValue(ctx, "k")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if found {
		t.Error("Expected key to be gone after delete")
	}
}

func TestKVStoreTTL(t *testing.T) {
	store, mr := setupTestKVStore(t, "", time.Minute)
	ctx := context.Background()

	if err := store.SetValue(ctx, "k", "v"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	_, found, err := store.GetValue(ctx, "k")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if found {
		t.Error("Expected key to expire")
	}
}
