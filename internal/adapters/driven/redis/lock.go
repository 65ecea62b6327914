package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.DistributedLock = (*Lock)(nil)

const lockPrefix = "creatorsync:lock:"

// Release and extend must check ownership atomically, otherwise an
// instance whose lock expired could delete a lock another instance
// re-acquired in the meantime.
var (
	releaseScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		end
		return 0
	`)

	extendScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		end
		return 0
	`)
)

// Lock is a SETNX-based distributed lock. The scheduler uses it for
// leader election so only one instance sweeps due content per cycle.
// Each Lock value carries its own owner ID; locks it did not acquire
// cannot be released or extended through it.
type Lock struct {
	client  *redis.Client
	ownerID string
}

// NewLock creates a lock bound to this process instance.
func NewLock(client *redis.Client) *Lock {
	host, _ := os.Hostname()
	nonce := make([]byte, 8)
	_, _ = rand.Read(nonce)

	return &Lock{
		client:  client,
		ownerID: fmt.Sprintf("%s:%d:%s", host, os.Getpid(), hex.EncodeToString(nonce)),
	}
}

// Acquire takes the named lock for ttl. Returns false without error
// when another instance holds it.
func (l *Lock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockPrefix+name, l.ownerID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	return ok, nil
}

// Release drops the named lock if this instance holds it. Releasing a
// lock that expired or was never acquired is not an error.
func (l *Lock) Release(ctx context.Context, name string) error {
	_, err := releaseScript.Run(ctx, l.client, []string{lockPrefix + name}, l.ownerID).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}

// Extend pushes out the TTL of a held lock. Errors if the lock is not
// held by this instance, so a scheduler that lost its lease finds out.
func (l *Lock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	result, err := extendScript.Run(ctx, l.client, []string{lockPrefix + name}, l.ownerID, ttl.Milliseconds()).Result()
	if err != nil {
		return fmt.Errorf("extend lock %s: %w", name, err)
	}
	if result.(int64) == 0 {
		return fmt.Errorf("lock %s not held by this instance", name)
	}
	return nil
}

// Ping checks if the Redis backend is healthy.
func (l *Lock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// OwnerID returns the identifier this instance stamps on its locks.
func (l *Lock) OwnerID() string {
	return l.ownerID
}
