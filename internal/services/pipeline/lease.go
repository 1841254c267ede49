package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLeaseHeld signals that another run already owns the record
var ErrLeaseHeld = errors.New("pipeline run already in progress for this record")

// Lease serializes pipeline runs per media record. At most one holder per
// key; leases expire after a TTL so a crashed worker cannot wedge a record
// forever.
type Lease interface {
	// Acquire returns true when the caller now holds the lease for key
	Acquire(ctx context.Context, key string) (bool, error)
	// Release gives the lease back; releasing a lease you do not hold is a no-op
	Release(ctx context.Context, key string) error
}

type memoryEntry struct {
	owner   string
	expires time.Time
}

// MemoryLease is an in-process lease for single-node deployments and tests
type MemoryLease struct {
	ttl  time.Duration
	mu   sync.Mutex
	held map[string]memoryEntry
}

// NewMemoryLease creates an in-process lease with the given TTL
func NewMemoryLease(ttl time.Duration) *MemoryLease {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryLease{
		ttl:  ttl,
		held: make(map[string]memoryEntry),
	}
}

// Acquire takes the lease for key if it is free or expired
func (l *MemoryLease) Acquire(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.held[key]; ok && time.Now().Before(entry.expires) {
		return false, nil
	}
	l.held[key] = memoryEntry{
		owner:   uuid.NewString(),
		expires: time.Now().Add(l.ttl),
	}
	return true, nil
}

// Release frees the lease for key
func (l *MemoryLease) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

// RedisLease coordinates pipeline runs across worker processes using SET NX
// with an owner token, so only the holder can release.
type RedisLease struct {
	client *redis.Client
	ttl    time.Duration
	prefix string

	mu     sync.Mutex
	owners map[string]string
}

// NewRedisLease creates a distributed lease backed by the given redis client
func NewRedisLease(client *redis.Client, ttl time.Duration) *RedisLease {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisLease{
		client: client,
		ttl:    ttl,
		prefix: "clipforge:pipeline:lease:",
		owners: make(map[string]string),
	}
}

func (l *RedisLease) Acquire(ctx context.Context, key string) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.prefix+key, owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquiring lease for %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	l.mu.Lock()
	l.owners[key] = owner
	l.mu.Unlock()
	return true, nil
}

func (l *RedisLease) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	owner, ok := l.owners[key]
	delete(l.owners, key)
	l.mu.Unlock()
	if !ok {
		return nil
	}

	current, err := l.client.Get(ctx, l.prefix+key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("releasing lease for %s: %w", key, err)
	}
	if current != owner {
		// Lease expired and someone else took it; leave theirs alone
		log.Printf("[WARNING] Lease for %s now owned by another holder, skipping release", key)
		return nil
	}
	return l.client.Del(ctx, l.prefix+key).Err()
}
