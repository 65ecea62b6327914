package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a miniredis-backed client
func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, func() {
		client.Close()
		mr.Close()
	}
}

func TestLock_AcquireRelease(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	lock := NewLock(client)
	ctx := context.Background()

	acquired, err := lock.Acquire(ctx, "publish-due", 30*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Fatal("expected lock to be acquired")
	}

	// Second acquire of a held lock fails
	acquired, err = lock.Acquire(ctx, "publish-due", 30*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected second acquire to fail while lock is held")
	}

	if err := lock.Release(ctx, "publish-due"); err != nil {
		t.Fatalf("unexpected error releasing lock: %v", err)
	}

	acquired, err = lock.Acquire(ctx, "publish-due", 30*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected acquire to succeed after release")
	}
}

func TestLock_Release_NotOwner(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	acquired, err := lock1.Acquire(ctx, "job", 30*time.Second)
	if err != nil || !acquired {
		t.Fatalf("failed to acquire lock: acquired=%v err=%v", acquired, err)
	}

	// Release by a non-owner is a no-op
	if err := lock2.Release(ctx, "job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	acquired, err = lock2.Acquire(ctx, "job", 30*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected lock to still be held by the owner")
	}
}

func TestLock_Extend(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	lock := NewLock(client)
	ctx := context.Background()

	acquired, err := lock.Acquire(ctx, "job", 30*time.Second)
	if err != nil || !acquired {
		t.Fatalf("failed to acquire lock: acquired=%v err=%v", acquired, err)
	}

	if err := lock.Extend(ctx, "job", 60*time.Second); err != nil {
		t.Errorf("unexpected error extending held lock: %v", err)
	}
}

func TestLock_Extend_NotHeld(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	lock := NewLock(client)
	ctx := context.Background()

	if err := lock.Extend(ctx, "never-acquired", 60*time.Second); err == nil {
		t.Error("expected error extending a lock that is not held")
	}
}

func TestLock_TTL_Expiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	acquired, err := lock1.Acquire(ctx, "job", 10*time.Second)
	if err != nil || !acquired {
		t.Fatalf("failed to acquire lock: acquired=%v err=%v", acquired, err)
	}

	mr.FastForward(11 * time.Second)

	acquired, err = lock2.Acquire(ctx, "job", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected lock to be acquirable after TTL expiry")
	}
}

func TestLock_OwnerID_Unique(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)

	if lock1.OwnerID() == lock2.OwnerID() {
		t.Error("expected distinct owner IDs per instance")
	}
}
