package idempotency

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	m, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("redis close: %v", cerr)
		}
	})
	return NewRedisStore(client, time.Minute), m, client
}

func TestRedisStoreClaimLifecycle(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	id, claimed, err := store.Claim(ctx, "user", "k1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !claimed || id != "" {
		t.Fatalf("expected fresh claim, got claimed=%v id=%q", claimed, id)
	}

	id, claimed, err = store.Claim(ctx, "user", "k1")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if claimed || id != "" {
		t.Fatalf("expected in-flight duplicate, got claimed=%v id=%q", claimed, id)
	}

	if err := store.Complete(ctx, "user", "k1", "task-1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	id, claimed, err = store.Claim(ctx, "user", "k1")
	if err != nil {
		t.Fatalf("third claim: %v", err)
	}
	if claimed || id != "task-1" {
		t.Fatalf("expected completed duplicate, got claimed=%v id=%q", claimed, id)
	}
}

func TestRedisStoreRelease(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	if _, _, err := store.Claim(ctx, "user", "k1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := store.Release(ctx, "user", "k1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	_, claimed, err := store.Claim(ctx, "user", "k1")
	if err != nil {
		t.Fatalf("claim after release: %v", err)
	}
	if !claimed {
		t.Fatalf("expected key to be claimable after release")
	}
}

func TestRedisStoreKeyNamespacingAndTTL(t *testing.T) {
	store, m, client := newTestStore(t)
	ctx := context.Background()

	if _, _, err := store.Claim(ctx, "user-a", "k1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	_, claimed, err := store.Claim(ctx, "user-b", "k1")
	if err != nil {
		t.Fatalf("claim other scope: %v", err)
	}
	if !claimed {
		t.Fatalf("keys must be scoped per user")
	}

	exists, err := client.Exists(ctx, "user-a:"+keyPrefix+":k1").Result()
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists != 1 {
		t.Fatalf("expected namespaced key to exist")
	}

	m.FastForward(2 * time.Minute)
	_, claimed, err = store.Claim(ctx, "user-a", "k1")
	if err != nil {
		t.Fatalf("claim after ttl: %v", err)
	}
	if !claimed {
		t.Fatalf("expected key to expire after ttl")
	}
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	if _, err := NewRedisClient("://nope"); err == nil {
		t.Fatalf("expected parse error")
	}
}
